// Package catalog maps GTINs to product records. The resolver consults a
// Catalog when running in mock mode; a live deployment may back one with
// network I/O.
package catalog

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/tracefirst/digilink/internal/product"
)

// ErrNotFound is returned by Lookup when the GTIN has no record.
var ErrNotFound = errors.New("catalog: gtin not found")

// Catalog resolves a GTIN to its product record.
type Catalog interface {
	// Lookup returns the record for gtin, or ErrNotFound.
	Lookup(ctx context.Context, gtin string) (*product.ProductData, error)
	// List returns all records ordered by GTIN. Used for the quick-select
	// listing; catalogs backed by remote registries may return an empty
	// slice.
	List(ctx context.Context) ([]*product.ProductData, error)
}

// Memory is an in-memory Catalog.
type Memory struct {
	mu       sync.RWMutex
	products map[string]*product.ProductData
}

// NewMemory creates an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{products: make(map[string]*product.ProductData)}
}

// NewDemo creates an in-memory catalog seeded with the demo products.
func NewDemo() *Memory {
	m := NewMemory()
	for _, p := range DemoProducts() {
		// Demo data is static and known-valid.
		_ = m.Put(p)
	}
	return m
}

// Put validates and stores a record, replacing any existing entry for the
// same GTIN.
func (m *Memory) Put(p *product.ProductData) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.GTIN] = p
	return nil
}

func (m *Memory) Lookup(ctx context.Context, gtin string) (*product.ProductData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[gtin]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *Memory) List(ctx context.Context) ([]*product.ProductData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*product.ProductData, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GTIN < out[j].GTIN })
	return out, nil
}
