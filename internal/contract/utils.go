package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/debtspot/schema"
)

// Color variables for console output.
var (
	GradeAColor = color.New(color.FgGreen)           // healthy code
	GradeBColor = color.New(color.FgYellow)          // moderately maintainable
	GradeCColor = color.New(color.FgRed, color.Bold) // hard to maintain
	PathColor   = color.New(color.FgCyan)            // package rows
)

// GetColorGrade returns the maintainability grade colored for console output.
func GetColorGrade(mi float64) string {
	text := schema.GetGrade(mi)
	switch text {
	case "A":
		return GradeAColor.Sprint(text)
	case "B":
		return GradeBColor.Sprint(text)
	default:
		return GradeCColor.Sprint(text)
	}
}

// SelectOutputFile returns the file handle for output, falling back to os.Stdout
// when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ShouldIgnore returns true if the given slash-separated path matches any of the
// exclude patterns. Patterns with wildcard characters (*, ?, [ ]) are globs, matched
// against the path and its base name. Patterns ending with '/' match that directory
// at any depth. Patterns starting with '.' without a slash are suffix matches. Any
// other pattern matches the path itself or anything below it.
// Users provide patterns like "venv/", "tests/fixtures", "*_pb2.py".
func ShouldIgnore(path string, excludes []string) bool {
	for _, ex := range excludes {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}

		if strings.ContainsAny(ex, "*?[") {
			pat := strings.ReplaceAll(ex, "**", "*")
			if ok, err := filepath.Match(pat, path); err == nil && ok {
				return true
			}
			if ok, err := filepath.Match(pat, filepath.Base(path)); err == nil && ok {
				return true
			}
			continue
		}

		ex = strings.TrimPrefix(ex, "./")
		switch {
		case strings.HasSuffix(ex, "/"):
			if strings.HasPrefix(path, ex) || strings.Contains("/"+path, "/"+ex) {
				return true
			}
		case strings.HasPrefix(ex, ".") && !strings.Contains(ex, "/"):
			if strings.HasSuffix(path, ex) {
				return true
			}
		case path == ex || strings.HasPrefix(path, ex+"/"):
			return true
		}
	}
	return false
}

// LogFatal logs an error and exits the program with the code mapped from err.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "❌ %s: %v\n", msg, err)
	os.Exit(ExitCode(err))
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "⚠️  %s: %v\n", msg, err)
}

// LogInfo logs a progress message to stderr, keeping stdout for the report.
func LogInfo(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// GetDBFilePath returns the path to the SQLite DB file for cache storage.
func GetDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".debtspot_cache.db"
	}
	return filepath.Join(homeDir, ".debtspot_cache.db")
}

// ToSlashRel returns target relative to base using forward slashes.
// The base itself becomes ".".
func ToSlashRel(base, target string) (string, error) {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to leave room for the "..." prefix.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
