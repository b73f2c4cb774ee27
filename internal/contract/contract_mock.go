package contract

import (
	"context"
	"time"

	"github.com/huangsam/debtspot/schema"
	"github.com/stretchr/testify/mock"
)

// MockGitClient is a mock implementation of GitClient for testing.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// ChangedPaths implements the HistoryReader interface.
func (m *MockGitClient) ChangedPaths(ctx context.Context, repoRoot, scope string, since, until time.Time) ([]string, error) {
	ret := m.Called(ctx, repoRoot, scope, since, until)
	paths, _ := ret.Get(0).([]string)
	return paths, ret.Error(1)
}

// GetRepoRoot implements the GitClient interface.
func (m *MockGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	ret := m.Called(ctx, contextPath)
	root, _ := ret.Get(0).(string)
	return root, ret.Error(1)
}

// GetRepoHash implements the GitClient interface.
func (m *MockGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	hash, _ := ret.Get(0).(string)
	return hash, ret.Error(1)
}

// MockMetricsAnalyzer is a mock implementation of MetricsAnalyzer for testing.
type MockMetricsAnalyzer struct {
	mock.Mock
}

var _ MetricsAnalyzer = &MockMetricsAnalyzer{} // Compile-time check

// Analyze implements the MetricsAnalyzer interface.
func (m *MockMetricsAnalyzer) Analyze(ctx context.Context, path string, source []byte) (schema.MetricSet, error) {
	ret := m.Called(ctx, path, source)
	ms, _ := ret.Get(0).(schema.MetricSet)
	return ms, ret.Error(1)
}

// Version implements the MetricsAnalyzer interface.
func (m *MockMetricsAnalyzer) Version() int {
	ret := m.Called()
	return ret.Int(0)
}
