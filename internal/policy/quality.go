// Package policy holds site-wide quality configuration read from the
// settings table. The cached value is shared across requests and tolerates
// staleness; admin updates call Invalidate so the next read goes back to
// the store.
package policy

import (
	"context"
	"strconv"
	"sync"

	"bookwish/internal/constants"
	"bookwish/internal/store"
)

type QualityConfig struct {
	mu     sync.RWMutex
	loaded bool
	value  bool
}

func NewQualityConfig() *QualityConfig {
	return &QualityConfig{}
}

// AutoDownloadEnabled reports whether requests may start acquisition
// automatically. The read goes through the caller's store handle so it is
// consistent within whatever transaction the caller holds.
func (q *QualityConfig) AutoDownloadEnabled(ctx context.Context, db *store.DB) (bool, error) {
	q.mu.RLock()
	if q.loaded {
		v := q.value
		q.mu.RUnlock()
		return v, nil
	}
	q.mu.RUnlock()

	raw, err := db.GetSetting(ctx, constants.SettingAutoDownload)
	if err != nil {
		return false, err
	}
	enabled, _ := strconv.ParseBool(raw)

	q.mu.Lock()
	q.loaded = true
	q.value = enabled
	q.mu.Unlock()
	return enabled, nil
}

// SetAutoDownload persists the flag and refreshes the cache in one step.
func (q *QualityConfig) SetAutoDownload(ctx context.Context, db *store.DB, enabled bool) error {
	if err := db.SetSetting(ctx, constants.SettingAutoDownload, strconv.FormatBool(enabled)); err != nil {
		return err
	}
	q.mu.Lock()
	q.loaded = true
	q.value = enabled
	q.mu.Unlock()
	return nil
}

// Invalidate drops the cached value so the next read hits the store.
func (q *QualityConfig) Invalidate() {
	q.mu.Lock()
	q.loaded = false
	q.mu.Unlock()
}
