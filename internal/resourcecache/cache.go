// Package resourcecache shares per-node auxiliary resources between
// runtimes. Entries are keyed by (node, type, name) and reference counted;
// the last Release removes the entry and tells the caller to destroy the
// resource.
package resourcecache

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/specialistvlad/livegraph/internal/blobcodec"
	"github.com/specialistvlad/livegraph/internal/ctxlog"
	"github.com/specialistvlad/livegraph/internal/graphmodel"
)

var (
	// ErrNotCached is returned when releasing a resource the cache does not
	// hold.
	ErrNotCached = errors.New("resource is not cached")
	// ErrUnknownType is returned when acquiring a resource type that was
	// never registered.
	ErrUnknownType = errors.New("unknown resource type")
	// ErrNotPointer is returned when a factory yields something other than
	// a non-nil pointer.
	ErrNotPointer = errors.New("resource factory must return a non-nil pointer")
)

// BlobSource supplies the stored blob of a node's resource.
type BlobSource interface {
	Resource(id graphmodel.NodeID, name string) ([]byte, bool)
}

// Key identifies one cached resource.
type Key struct {
	Node graphmodel.NodeID
	Type string
	Name string
}

// Factory returns a pointer to a default-constructed resource. Stored blobs
// are decoded into it.
type Factory func() any

type entry struct {
	key  Key
	res  any
	refs int
}

// Cache is a reference-counted resource cache. It is not safe for
// concurrent use.
type Cache struct {
	source    BlobSource
	factories map[string]Factory
	byKey     map[Key]*entry
	// byRes is the reverse index used by Release. Resources are pointers,
	// so identity is pointer equality.
	byRes map[any]*entry
}

// New creates a cache reading blobs from source. source may be nil, in
// which case every resource starts default-constructed.
func New(source BlobSource) *Cache {
	return &Cache{
		source:    source,
		factories: make(map[string]Factory),
		byKey:     make(map[Key]*entry),
		byRes:     make(map[any]*entry),
	}
}

// SetSource replaces the blob source, typically after a new model is
// loaded. Cached entries are kept.
func (c *Cache) SetSource(source BlobSource) {
	c.source = source
}

// RegisterType declares how a resource type is constructed.
func (c *Cache) RegisterType(resourceType string, f Factory) {
	if _, exists := c.factories[resourceType]; exists {
		panic(fmt.Sprintf("resource type '%s' already registered", resourceType))
	}
	c.factories[resourceType] = f
}

// Acquire returns the shared resource for (id, type, name), creating it on
// first use. A stored blob is decoded into the fresh resource; without one
// the resource stays default-constructed.
func (c *Cache) Acquire(ctx context.Context, id graphmodel.NodeID, resourceType, name string) (any, error) {
	logger := ctxlog.FromContext(ctx)
	key := Key{Node: id, Type: resourceType, Name: name}

	if e, ok := c.byKey[key]; ok {
		e.refs++
		logger.Debug("Resource cache hit.", "node_id", id, "type", resourceType, "name", name, "refs", e.refs)
		return e.res, nil
	}

	factory, ok := c.factories[resourceType]
	if !ok {
		return nil, fmt.Errorf("acquire %s %q for node %d: %w", resourceType, name, id, ErrUnknownType)
	}
	res := factory()
	if !isPointer(res) {
		return nil, fmt.Errorf("acquire %s %q for node %d: %w (got %T)", resourceType, name, id, ErrNotPointer, res)
	}

	if c.source != nil {
		if blob, ok := c.source.Resource(id, name); ok && len(blob) > 0 {
			if err := blobcodec.Decode(blob, res); err != nil {
				return nil, fmt.Errorf("acquire %s %q for node %d: %w", resourceType, name, id, err)
			}
		}
	}

	e := &entry{key: key, res: res, refs: 1}
	c.byKey[key] = e
	c.byRes[res] = e
	logger.Debug("Resource cache miss; resource created.", "node_id", id, "type", resourceType, "name", name)
	return res, nil
}

// Release drops one reference. It reports true when the last reference is
// gone and the caller must destroy the resource.
func (c *Cache) Release(ctx context.Context, res any) (bool, error) {
	if !isPointer(res) {
		return false, ErrNotCached
	}
	e, ok := c.byRes[res]
	if !ok {
		return false, ErrNotCached
	}
	e.refs--
	if e.refs > 0 {
		return false, nil
	}
	delete(c.byRes, res)
	delete(c.byKey, e.key)
	ctxlog.FromContext(ctx).Debug("Resource evicted.", "node_id", e.key.Node, "type", e.key.Type, "name", e.key.Name)
	return true, nil
}

func isPointer(res any) bool {
	v := reflect.ValueOf(res)
	return v.Kind() == reflect.Pointer && !v.IsNil()
}

// Len returns the number of cached resources.
func (c *Cache) Len() int {
	return len(c.byKey)
}

// Refs returns the reference count of a cached resource, or 0.
func (c *Cache) Refs(key Key) int {
	if e, ok := c.byKey[key]; ok {
		return e.refs
	}
	return 0
}
