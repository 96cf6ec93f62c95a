package main

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// AssemblyCache memoizes descriptors by module identity around a Factory.
// The core rebuilds descriptors on every discovery; a driver assembling many
// root modules over one unchanged symbol table wraps the factory in a cache
// instead. Concurrent requests for the same module collapse into a single
// build.
type AssemblyCache struct {
	factory *Factory
	cache   *lru.Cache[TypeRef, *ModuleDescriptor]
	group   singleflight.Group
}

// NewAssemblyCache creates a cache holding up to size descriptors.
func NewAssemblyCache(f *Factory, size int) (*AssemblyCache, error) {
	c, err := lru.New[TypeRef, *ModuleDescriptor](size)
	if err != nil {
		return nil, err
	}
	return &AssemblyCache{factory: f, cache: c}, nil
}

// Assemble returns the cached descriptor for a module, building it at most
// once per key. Failed builds are not cached.
func (c *AssemblyCache) Assemble(module TypeRef) (*ModuleDescriptor, error) {
	if d, ok := c.cache.Get(module); ok {
		return d, nil
	}
	v, err, _ := c.group.Do(module.String(), func() (any, error) {
		if d, ok := c.cache.Get(module); ok {
			return d, nil
		}
		d, err := c.factory.Assemble(module)
		if err != nil {
			return nil, err
		}
		c.cache.Add(module, d)
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ModuleDescriptor), nil
}
