package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/huangsam/debtspot/internal/contract"
	"github.com/huangsam/debtspot/schema"
)

// cachedAnalyze returns the metrics of source, reusing a cached MetricSet when one was
// stored for the same content by the same analyzer version.
func cachedAnalyze(ctx context.Context, analyzer contract.MetricsAnalyzer, store contract.CacheStore, path string, source []byte) (schema.MetricSet, error) {
	if store == nil {
		return analyzer.Analyze(ctx, path, source)
	}

	key := generateCacheKey(source)
	version := analyzer.Version()
	if ms, ok := checkCacheHit(store, key, version); ok {
		return ms, nil
	}

	ms, err := analyzer.Analyze(ctx, path, source)
	if err != nil {
		return ms, err
	}
	if data, err := json.Marshal(ms); err == nil {
		if err := store.Set(key, data, version, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to cache metrics for "+path, err)
		}
	}
	return ms, nil
}

// checkCacheHit attempts to retrieve and validate a cached metric set.
func checkCacheHit(store contract.CacheStore, key string, version int) (schema.MetricSet, bool) {
	data, storedVersion, _, err := store.Get(key)
	if err != nil || storedVersion != version {
		return schema.MetricSet{}, false
	}
	var ms schema.MetricSet
	if err := json.Unmarshal(data, &ms); err != nil {
		return schema.MetricSet{}, false
	}
	return ms, true
}

// generateCacheKey identifies a module by content alone.
func generateCacheKey(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}
