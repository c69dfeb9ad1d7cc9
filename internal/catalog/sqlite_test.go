package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	cat, err := OpenSQLite(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer cat.Close()

	if err := cat.Seed(ctx, DemoProducts()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	p, err := cat.Lookup(ctx, "9506000134352")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if p.Brand != "Verde Gustooooo" {
		t.Errorf("Brand = %q", p.Brand)
	}
	if p.Sustainability.Recyclability != 98 {
		t.Errorf("Recyclability = %d, want 98", p.Sustainability.Recyclability)
	}

	if _, err := cat.Lookup(ctx, "0000000000000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Lookup(miss) error = %v, want ErrNotFound", err)
	}

	// Seeding twice must upsert, not duplicate.
	if err := cat.Seed(ctx, DemoProducts()); err != nil {
		t.Fatalf("second Seed() error = %v", err)
	}
	products, err := cat.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("List() returned %d products after reseed, want 2", len(products))
	}
}
