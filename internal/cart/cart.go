// Package cart keeps an in-process shopping cart built from product lookups.
// The cart lives only in memory and is lost on restart.
package cart

import (
	"context"
	"strings"
	"sync"

	"github.com/balt0r/entrega-backend/internal/docstore"
)

// Lookup is satisfied by *docstore.Store and by CatalogClient.
type Lookup interface {
	Get(ctx context.Context, id string) (docstore.Record, bool, error)
}

type Entry struct {
	Product  docstore.Record `json:"product"`
	Quantity int             `json:"quantity"`
}

// Cart holds at most one entry per product id. All mutations go through mu.
type Cart struct {
	lookup Lookup

	mu      sync.Mutex
	entries []Entry
	index   map[string]int

	onChange func(lines int)
}

func New(lookup Lookup) *Cart {
	return &Cart{
		lookup: lookup,
		index:  make(map[string]int),
	}
}

// OnChange registers fn to receive the number of distinct entries after
// every successful Add.
func (c *Cart) OnChange(fn func(lines int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Add looks up productID and either appends a new entry with quantity 1 or
// increments the existing one. It returns the whole cart after the change.
func (c *Cart) Add(ctx context.Context, productID string) ([]Entry, error) {
	const op = "cart.add"

	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, docstore.NewValidationError(op, "product id is required")
	}

	p, ok, err := c.lookup.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &docstore.Error{Kind: docstore.KindNotFound, Op: op, ID: productID, Msg: "product not found"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if i, exists := c.index[productID]; exists {
		c.entries[i].Quantity++
	} else {
		c.index[productID] = len(c.entries)
		c.entries = append(c.entries, Entry{Product: p.Clone(), Quantity: 1})
	}

	if c.onChange != nil {
		c.onChange(len(c.entries))
	}
	return c.snapshot(), nil
}

func (c *Cart) Items() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Cart) snapshot() []Entry {
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = Entry{Product: e.Product.Clone(), Quantity: e.Quantity}
	}
	return out
}
