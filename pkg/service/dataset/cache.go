package dataset

import (
	"context"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/phenodash/pkg/domain/interfaces"
	"github.com/secmon-lab/phenodash/pkg/domain/model"
	"github.com/secmon-lab/phenodash/pkg/service/metrics"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes the dataset snapshot of a source, keyed on the source
// version. A snapshot is never mutated; a version change replaces it.
type Cache struct {
	source  interfaces.DatasetSource
	metrics *metrics.Metrics

	mu      sync.RWMutex
	current *model.Dataset
	group   singleflight.Group
}

// Option configures a Cache
type Option func(*Cache)

// WithMetrics records loads on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// NewCache creates a new dataset cache
func NewCache(source interfaces.DatasetSource, opts ...Option) *Cache {
	c := &Cache{source: source}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the snapshot matching the current source version, loading it
// when nothing is cached or the source changed. Concurrent callers share one
// load. A failed load leaves nothing cached.
func (c *Cache) Get(ctx context.Context) (*model.Dataset, error) {
	version, err := c.source.Stat(ctx)
	if err != nil {
		c.Invalidate()
		return nil, goerr.Wrap(err, "dataset source unavailable", goerr.T(model.ErrTagDataLoad))
	}

	if ds := c.snapshot(); ds != nil && ds.Version.Equal(version) {
		return ds, nil
	}

	v, err, _ := c.group.Do("load", func() (any, error) {
		if ds := c.snapshot(); ds != nil && ds.Version.Equal(version) {
			return ds, nil
		}

		ctxlog.From(ctx).Debug("Loading dataset", "path", version.Path)
		ds, err := c.source.Load(ctx)
		if err != nil {
			c.Invalidate()
			c.metrics.ObserveLoad(0, err)
			return nil, err
		}

		c.mu.Lock()
		c.current = ds
		c.mu.Unlock()
		c.metrics.ObserveLoad(ds.Len(), nil)
		return ds, nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load dataset", goerr.T(model.ErrTagDataLoad))
	}

	return v.(*model.Dataset), nil
}

// Current returns the cached snapshot without touching the source
func (c *Cache) Current() (*model.Dataset, error) {
	ds := c.snapshot()
	if ds == nil {
		return nil, model.ErrDatasetNotLoaded
	}
	return ds, nil
}

// Invalidate drops the cached snapshot so the next Get reloads
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
}

func (c *Cache) snapshot() *model.Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

var _ interfaces.DatasetProvider = (*Cache)(nil)
