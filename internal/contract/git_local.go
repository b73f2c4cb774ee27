package contract

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its stdout.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("%w: git command failed in %q: %s. If this is not a Git repository, verify the path or run 'git init'", ErrHistoryUnavailable, repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("%w: git command failed: %w. Ensure Git is installed and available on your PATH", ErrHistoryUnavailable, err)
	}
	return out, nil
}

// ChangedPaths implements the HistoryReader interface.
func (c *LocalGitClient) ChangedPaths(ctx context.Context, repoRoot, scope string, since, until time.Time) ([]string, error) {
	args := []string{
		"-c", "core.quotepath=off",
		"log",
		"--name-only",
		"--pretty=format:",
	}
	if !since.IsZero() {
		args = append(args, fmt.Sprintf("--since=%s", since.Format(DateTimeFormat)))
	}
	if !until.IsZero() {
		args = append(args, fmt.Sprintf("--until=%s", until.Format(DateTimeFormat)))
	}
	if scope == "" {
		scope = "."
	}
	args = append(args, "--", scope)

	out, err := c.Run(ctx, repoRoot, args...)
	if err != nil {
		return nil, err
	}
	return parseNameOnlyLog(out), nil
}

// GetRepoRoot implements the GitClient interface.
func (c *LocalGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	out, err := c.Run(ctx, contextPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GetRepoHash implements the GitClient interface.
func (c *LocalGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// parseNameOnlyLog splits 'git log --name-only' output into paths.
// Commits are separated by blank lines, which carry no information here.
func parseNameOnlyLog(out []byte) []string {
	var paths []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		paths = append(paths, line)
	}
	return paths
}
