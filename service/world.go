package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-warden/config"
	"github.com/beka-birhanu/vinom-warden/game"
	"github.com/beka-birhanu/vinom-warden/game/session"
	"github.com/beka-birhanu/vinom-warden/service/i"
	"github.com/cespare/xxhash/v2"
)

const defaultPreviewTTL = time.Hour

var _ i.WorldPreviewer = &WorldService{}

// WorldService composes worlds for preview and caches them by scenario fingerprint.
type WorldService struct {
	cache  i.WorldCache
	ttl    time.Duration
	logger game.Logger
}

// WorldServiceConfig holds the WorldService collaborators.
type WorldServiceConfig struct {
	Cache  i.WorldCache
	TTL    time.Duration
	Logger game.Logger
}

// NewWorldService creates a WorldService. A zero TTL keeps previews for an hour.
func NewWorldService(c *WorldServiceConfig) (*WorldService, error) {
	if c.Cache == nil || c.Logger == nil {
		return nil, ErrMissingDependency
	}
	ttl := c.TTL
	if ttl == 0 {
		ttl = defaultPreviewTTL
	}
	return &WorldService{cache: c.Cache, ttl: ttl, logger: c.Logger}, nil
}

// Fingerprint identifies the world a scenario composes. Scenarios that differ only in
// guard or intruder settings still differ here.
func Fingerprint(sc *config.Scenario) (string, error) {
	data, err := sc.Marshal()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data)), nil
}

// Preview returns the world a scenario composes. Concurrent previews of one scenario compose it once.
func (w *WorldService) Preview(ctx context.Context, sc *config.Scenario) (*i.WorldView, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	key, err := Fingerprint(sc)
	if err != nil {
		return nil, err
	}

	if view, ok := w.cached(ctx, key); ok {
		return view, nil
	}

	unlock, err := w.cache.Lock(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("locking preview %s: %w", key, err)
	}
	defer func() {
		if err := unlock(); err != nil {
			w.logger.Warning(fmt.Sprintf("unlocking preview %s: %v", key, err))
		}
	}()

	if view, ok := w.cached(ctx, key); ok {
		return view, nil
	}

	wld, err := session.Compose(sc)
	if err != nil {
		return nil, err
	}

	view := &i.WorldView{
		Width:     wld.Width,
		Height:    wld.Height,
		Rows:      wld.Layout(),
		Courtyard: len(wld.CourtyardTiles()),
	}
	if p, ok := wld.Finish(); ok {
		view.Finish = &p
	}

	data, err := json.Marshal(view)
	if err != nil {
		return nil, err
	}
	if err := w.cache.Set(ctx, key, data, w.ttl); err != nil {
		w.logger.Warning(fmt.Sprintf("caching preview %s: %v", key, err))
	}
	w.logger.Info(fmt.Sprintf("composed preview %s (%dx%d)", key, view.Width, view.Height))
	return view, nil
}

// cached reads a preview from the cache. Cache failures are logged and treated as a miss.
func (w *WorldService) cached(ctx context.Context, key string) (*i.WorldView, bool) {
	data, ok, err := w.cache.Get(ctx, key)
	if err != nil {
		w.logger.Warning(fmt.Sprintf("reading preview %s: %v", key, err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var view i.WorldView
	if err := json.Unmarshal(data, &view); err != nil {
		w.logger.Warning(fmt.Sprintf("decoding preview %s: %v", key, err))
		return nil, false
	}
	view.Cached = true
	return &view, true
}
