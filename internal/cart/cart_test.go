package cart_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/balt0r/entrega-backend/internal/cart"
	"github.com/balt0r/entrega-backend/internal/docstore"
)

func newProducts(t *testing.T, c docstore.Collection) *docstore.Store {
	t.Helper()

	s, err := docstore.Open(context.Background(), filepath.Join(t.TempDir(), "products.json"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.PersistAll(context.Background(), c); err != nil {
		t.Fatalf("persist: %v", err)
	}
	return s
}

func TestAdd_MergesRepeatedProduct(t *testing.T) {
	products := newProducts(t, docstore.Collection{
		{"id": "p1", "title": "Keyboard"},
		{"id": "p2", "title": "Mouse"},
	})
	c := cart.New(products)
	ctx := context.Background()

	if _, err := c.Add(ctx, "p1"); err != nil {
		t.Fatalf("add p1: %v", err)
	}
	if _, err := c.Add(ctx, "p2"); err != nil {
		t.Fatalf("add p2: %v", err)
	}
	got, err := c.Add(ctx, "p1")
	if err != nil {
		t.Fatalf("add p1 again: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("want 2 entries, got %d: %+v", len(got), got)
	}
	if got[0].Product.ID() != "p1" || got[0].Quantity != 2 {
		t.Fatalf("entry0=%+v", got[0])
	}
	if got[1].Product.ID() != "p2" || got[1].Quantity != 1 {
		t.Fatalf("entry1=%+v", got[1])
	}
}

func TestAdd_Validation(t *testing.T) {
	c := cart.New(newProducts(t, docstore.Collection{{"id": "p1"}}))
	ctx := context.Background()

	for _, id := range []string{"", "   "} {
		if _, err := c.Add(ctx, id); !errors.Is(err, docstore.ErrValidation) {
			t.Fatalf("add(%q): want validation error, got %v", id, err)
		}
	}

	if _, err := c.Add(ctx, "nonexistent"); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
	if n := len(c.Items()); n != 0 {
		t.Fatalf("failed adds changed the cart: %d entries", n)
	}
}

type brokenLookup struct{}

func (brokenLookup) Get(context.Context, string) (docstore.Record, bool, error) {
	return nil, false, &docstore.Error{Kind: docstore.KindStorageRead, Msg: "corrupt"}
}

func TestAdd_PropagatesLookupFailure(t *testing.T) {
	_, err := cart.New(brokenLookup{}).Add(context.Background(), "p1")
	if !errors.Is(err, docstore.ErrStorageRead) {
		t.Fatalf("want storage read error, got %v", err)
	}
	if errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("storage failure reported as not found")
	}
}

func TestAdd_ConcurrentSameProduct(t *testing.T) {
	c := cart.New(newProducts(t, docstore.Collection{{"id": "p1"}, {"id": "p2"}}))
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := "p1"
			if i%5 == 0 {
				id = "p2"
			}
			if _, err := c.Add(ctx, id); err != nil {
				t.Errorf("add: %v", err)
			}
		}(i)
	}
	wg.Wait()

	items := c.Items()
	if len(items) != 2 {
		t.Fatalf("want 2 entries, got %d", len(items))
	}
	total := 0
	for _, e := range items {
		total += e.Quantity
		if e.Quantity < 1 {
			t.Fatalf("quantity %d", e.Quantity)
		}
	}
	if total != n {
		t.Fatalf("total quantity=%d want %d", total, n)
	}
}

func TestItems_ReturnsSnapshot(t *testing.T) {
	c := cart.New(newProducts(t, docstore.Collection{{"id": "p1", "title": "Keyboard"}}))
	var lines []int
	c.OnChange(func(n int) { lines = append(lines, n) })

	got, err := c.Add(context.Background(), "p1")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	got[0].Quantity = 99
	got[0].Product["title"] = "tampered"

	items := c.Items()
	if items[0].Quantity != 1 || items[0].Product["title"] != "Keyboard" {
		t.Fatalf("cart state leaked: %+v", items[0])
	}
	if len(lines) != 1 || lines[0] != 1 {
		t.Fatalf("onChange calls=%v", lines)
	}
}
