// Package gitclient selects and provides the git history readers.
package gitclient

import (
	"github.com/huangsam/debtspot/internal/contract"
	"github.com/huangsam/debtspot/schema"
)

// GitClient defines the git operations needed to resolve and read a repository.
type GitClient = contract.GitClient

// New returns the client for the configured history backend.
func New(backend schema.HistoryBackend) GitClient {
	if backend == schema.NativeHistory {
		return NewNativeClient()
	}
	return contract.NewLocalGitClient()
}
