// Package iocache is the optional metric cache backed by SQL databases.
package iocache

import (
	"sync"

	"github.com/huangsam/debtspot/internal/contract"
)

// CacheStoreManager holds the CacheStore instances used by a run.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	metrics      contract.CacheStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetMetricStore returns the metric CacheStore, or nil when caching is disabled.
func (mgr *CacheStoreManager) GetMetricStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.metrics
}
