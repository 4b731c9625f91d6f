package metadata

import "sync"

// Catalog is the set of type descriptions available for discovery
type Catalog struct {
	mu    sync.Mutex
	types []*TypeInfo
}

// NewCatalog creates a new empty Catalog
func NewCatalog() *Catalog {
	return &Catalog{}
}

// DefaultCatalog receives types registered at package init
var DefaultCatalog = NewCatalog()

// Add appends types in registration order
func (c *Catalog) Add(types ...*TypeInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types = append(c.types, types...)
}

// Types returns a snapshot of the registered types
func (c *Catalog) Types() []*TypeInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*TypeInfo(nil), c.types...)
}

// Len returns the number of registered types
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.types)
}
