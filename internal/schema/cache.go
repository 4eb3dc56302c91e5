package schema

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/hanpama/fieldgraph/internal/field"
	"github.com/hanpama/fieldgraph/internal/types"
)

// FieldCache memoizes merged field lists per type record. Concurrent first
// requests for one record share a single computation.
type FieldCache struct {
	resolve func(*types.TypeRecord) ([]*field.Field, error)

	mu     sync.RWMutex
	fields map[*types.TypeRecord][]*field.Field
	group  singleflight.Group
}

// NewFieldCache returns a cache computing field lists with resolve, or with
// types.ResolveFields when resolve is nil.
func NewFieldCache(resolve func(*types.TypeRecord) ([]*field.Field, error)) *FieldCache {
	if resolve == nil {
		resolve = types.ResolveFields
	}
	return &FieldCache{resolve: resolve, fields: map[*types.TypeRecord][]*field.Field{}}
}

// Fields returns the merged fields of rec. The returned slice is shared and
// must not be modified. Failures are not cached.
func (c *FieldCache) Fields(rec *types.TypeRecord) ([]*field.Field, error) {
	if fs, ok := c.lookup(rec); ok {
		return fs, nil
	}
	v, err, _ := c.group.Do(fmt.Sprintf("%p", rec), func() (any, error) {
		if fs, ok := c.lookup(rec); ok {
			return fs, nil
		}
		fs, err := c.resolve(rec)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.fields[rec] = fs
		c.mu.Unlock()
		return fs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*field.Field), nil
}

func (c *FieldCache) lookup(rec *types.TypeRecord) ([]*field.Field, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fs, ok := c.fields[rec]
	return fs, ok
}

// Len returns the number of cached records.
func (c *FieldCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.fields)
}
