package gitclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/huangsam/debtspot/internal/contract"
)

// NativeClient reads history in-process with go-git, without a git binary.
type NativeClient struct{}

var _ GitClient = &NativeClient{} // Compile-time check

// NewNativeClient creates a new go-git backed client.
func NewNativeClient() *NativeClient {
	return &NativeClient{}
}

func openRepo(path string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: not a git repository %q: %w", contract.ErrHistoryUnavailable, path, err)
	}
	return repo, nil
}

// GetRepoRoot implements the GitClient interface.
func (c *NativeClient) GetRepoRoot(_ context.Context, contextPath string) (string, error) {
	repo, err := openRepo(contextPath)
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("%w: get worktree: %w", contract.ErrHistoryUnavailable, err)
	}
	return wt.Filesystem.Root(), nil
}

// GetRepoHash implements the GitClient interface.
func (c *NativeClient) GetRepoHash(_ context.Context, repoPath string) (string, error) {
	repo, err := openRepo(repoPath)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("%w: get HEAD: %w", contract.ErrHistoryUnavailable, err)
	}
	return head.Hash().String(), nil
}

// ChangedPaths implements the HistoryReader interface.
// Merge commits are skipped and renames report only the new path, like 'git log --name-only'.
func (c *NativeClient) ChangedPaths(ctx context.Context, repoRoot, scope string, since, until time.Time) ([]string, error) {
	repo, err := openRepo(repoRoot)
	if err != nil {
		return nil, err
	}
	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, fmt.Errorf("%w: repository %q has no commits yet", contract.ErrHistoryUnavailable, repoRoot)
		}
		return nil, fmt.Errorf("%w: get HEAD: %w", contract.ErrHistoryUnavailable, err)
	}

	opts := &git.LogOptions{From: head.Hash(), Order: git.LogOrderCommitterTime}
	if !since.IsZero() {
		opts.Since = &since
	}
	if !until.IsZero() {
		opts.Until = &until
	}
	iter, err := repo.Log(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: get log: %w", contract.ErrHistoryUnavailable, err)
	}
	defer iter.Close()

	prefix := ""
	if scope != "" {
		prefix = strings.TrimSuffix(scope, "/") + "/"
	}

	var paths []string
	err = iter.ForEach(func(commit *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if commit.NumParents() > 1 {
			return nil
		}
		names, err := commitPaths(ctx, commit)
		if err != nil {
			return err
		}
		for _, name := range names {
			if prefix == "" || strings.HasPrefix(name, prefix) {
				paths = append(paths, name)
			}
		}
		return nil
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, fmt.Errorf("%w: walk history: %w", contract.ErrHistoryUnavailable, err)
	}
	return paths, nil
}

// commitPaths lists the paths a commit touched relative to its first parent.
func commitPaths(ctx context.Context, commit *object.Commit) ([]string, error) {
	tree, err := commit.Tree()
	if err != nil {
		return nil, err
	}
	parentTree := &object.Tree{}
	if commit.NumParents() == 1 {
		parent, err := commit.Parent(0)
		if err != nil {
			return nil, err
		}
		if parentTree, err = parent.Tree(); err != nil {
			return nil, err
		}
	}

	changes, err := object.DiffTreeWithOptions(ctx, parentTree, tree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(changes))
	for _, change := range changes {
		name := change.To.Name
		if name == "" {
			name = change.From.Name
		}
		names = append(names, name)
	}
	return names, nil
}
