// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/debtspot/schema"
)

// HistoryReader reads change history from version control.
// This allows the collection logic to be tested without needing a real repository.
type HistoryReader interface {
	// ChangedPaths returns one slash-separated path, relative to repoRoot, for every
	// (commit, file) pair touched under scope within the optional time window.
	// Merge commits contribute nothing, matching the defaults of 'git log'.
	ChangedPaths(ctx context.Context, repoRoot, scope string, since, until time.Time) ([]string, error)
}

// GitClient defines the git operations needed to resolve and read a repository.
type GitClient interface {
	HistoryReader

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// GetRepoHash returns the current HEAD commit hash of the repository.
	GetRepoHash(ctx context.Context, repoPath string) (string, error)
}

// MetricsAnalyzer computes the software metrics of one source module.
type MetricsAnalyzer interface {
	// Analyze parses source and returns its metrics. An unparseable file
	// yields an error wrapping ErrMetricsUnavailable.
	Analyze(ctx context.Context, path string, source []byte) (schema.MetricSet, error)

	// Version changes whenever the metric definitions change, invalidating cached values.
	Version() int
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetMetricStore() CacheStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}
