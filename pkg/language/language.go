package language

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/a2b-grocery/storefront/pkg/storage"
)

const (
	English = "en"
	Arabic  = "ar"
)

var ErrUnsupportedLanguage = errors.New("unsupported language")

// Preference is the UI language, persisted under the "language" key. It
// feeds the Accept-Language header of every backend request.
type Preference struct {
	store    storage.Store
	fallback string

	mu      sync.RWMutex
	current string
}

// Load reads the stored preference. Unknown stored values and read failures
// leave the fallback in place.
func Load(ctx context.Context, store storage.Store, fallback string, logger *zap.Logger) *Preference {
	if !Supported(fallback) {
		fallback = English
	}
	p := &Preference{store: store, fallback: fallback, current: fallback}

	raw, err := store.Get(ctx, storage.KeyLanguage)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		logger.Warn("failed to read language preference", zap.Error(err), zap.String("fallback", fallback))
	case !Supported(string(raw)):
		logger.Warn("ignoring unsupported stored language", zap.String("value", string(raw)))
	default:
		p.current = string(raw)
	}
	return p
}

func Supported(lang string) bool {
	return lang == English || lang == Arabic
}

func (p *Preference) Language() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == "" {
		return p.fallback
	}
	return p.current
}

func (p *Preference) Set(ctx context.Context, lang string) error {
	if !Supported(lang) {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	if err := p.store.Set(ctx, storage.KeyLanguage, []byte(lang)); err != nil {
		return err
	}
	p.mu.Lock()
	p.current = lang
	p.mu.Unlock()
	return nil
}

func (p *Preference) IsRTL() bool {
	return p.Language() == Arabic
}
