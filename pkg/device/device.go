// Package device provides the stable per-installation identifier attached
// to every outbound backend request.
package device

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/a2b-grocery/storefront/pkg/storage"
)

type Identity struct {
	store  storage.Store
	logger *zap.Logger

	mu sync.Mutex
	id string
}

func NewIdentity(store storage.Store, logger *zap.Logger) *Identity {
	return &Identity{store: store, logger: logger}
}

// ID returns the persisted identifier, generating and persisting a v4 UUID on
// first use. It is never regenerated while a stored value exists. When the
// store cannot be read, a temporary id is returned and the next call retries.
func (d *Identity) ID(ctx context.Context) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.id != "" {
		return d.id
	}

	raw, err := d.store.Get(ctx, storage.KeyDeviceID)
	switch {
	case err == nil && len(raw) > 0:
		d.id = string(raw)
		return d.id
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		d.logger.Warn("device id lookup failed, using a temporary id", zap.Error(err))
		return uuid.NewString()
	}

	id := uuid.NewString()
	if err := d.store.Set(ctx, storage.KeyDeviceID, []byte(id)); err != nil {
		d.logger.Warn("failed to persist device id", zap.Error(err))
	}
	d.id = id
	return d.id
}
