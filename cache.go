package clusteracl

import "github.com/dgraph-io/ristretto"

// ACLCache memoizes resolved ACLs per node path. Resolution is a pure function
// of the rule set and the path, so entries never need invalidation while the
// provider lives; the cache only short-circuits repeated regex evaluation on
// hot paths.
type ACLCache struct {
	cache *ristretto.Cache
}

// NewACLCache builds a ristretto-backed cache with the given sizing. Cost is
// counted in ACL entries.
func NewACLCache(numCounters, maxCost, bufferItems int64) (*ACLCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: bufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &ACLCache{cache: c}, nil
}

func (c *ACLCache) Get(path string) ([]Entry, bool) {
	v, ok := c.cache.Get(path)
	if !ok {
		return nil, false
	}
	entries, ok := v.([]Entry)
	return entries, ok
}

func (c *ACLCache) Set(path string, entries []Entry) {
	c.cache.Set(path, entries, int64(len(entries))+1)
}

// Wait blocks until buffered writes have been applied. Mainly useful in tests;
// admission is asynchronous.
func (c *ACLCache) Wait() { c.cache.Wait() }

// WithACLCache installs a resolution cache on the Engine.
func WithACLCache(cache *ACLCache) EngineOption {
	return func(e *Engine) error {
		e.aclCache = cache
		return nil
	}
}

// ConfigureACLCache builds and installs a ristretto cache with the given
// sizing on an existing engine.
func (e *Engine) ConfigureACLCache(numCounters, maxCost, bufferItems int64) error {
	c, err := NewACLCache(numCounters, maxCost, bufferItems)
	if err != nil {
		return err
	}
	e.aclCache = c
	return nil
}
