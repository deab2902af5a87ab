package products

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Catalog caches the product master in memory.
type Catalog struct {
	mu     sync.RWMutex
	byCode map[string]Product
}

// NewCatalog builds an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{byCode: make(map[string]Product)}
}

// NormalizeCode canonicalises a product code for lookups.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Upsert inserts or replaces one product.
func (c *Catalog) Upsert(p Product) (Product, error) {
	code := NormalizeCode(p.Code)
	if code == "" {
		return Product{}, fmt.Errorf("products: empty code")
	}
	p.Code = code
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byCode[code] = p
	return p, nil
}

// Get looks up one product by code.
func (c *Catalog) Get(code string) (Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byCode[NormalizeCode(code)]
	if !ok {
		return Product{}, fmt.Errorf("%w: %s", ErrUnknownProduct, code)
	}
	return p, nil
}

// List returns all products sorted by code.
func (c *Catalog) List() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Product, 0, len(c.byCode))
	for _, p := range c.byCode {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Replace swaps the whole catalog, used by snapshot restore.
func (c *Catalog) Replace(list []Product) {
	byCode := make(map[string]Product, len(list))
	for _, p := range list {
		p.Code = NormalizeCode(p.Code)
		byCode[p.Code] = p
	}
	c.mu.Lock()
	c.byCode = byCode
	c.mu.Unlock()
}

// Rename re-keys one product. The caller is responsible for cascading the
// rename into dependent records; see Service.Rename.
func (c *Catalog) Rename(oldCode, newCode string) (Product, error) {
	oldCode = NormalizeCode(oldCode)
	newCode = NormalizeCode(newCode)
	if newCode == "" {
		return Product{}, fmt.Errorf("products: empty new code")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.byCode[oldCode]
	if !ok {
		return Product{}, fmt.Errorf("%w: %s", ErrUnknownProduct, oldCode)
	}
	if _, taken := c.byCode[newCode]; taken {
		return Product{}, fmt.Errorf("%w: %s", ErrDuplicateProduct, newCode)
	}
	delete(c.byCode, oldCode)
	p.Code = newCode
	c.byCode[newCode] = p
	return p, nil
}
