// Package seed fills a collection with synthetic records for demos and tests.
package seed

import (
	"context"
	"fmt"
	"math"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"

	"github.com/balt0r/entrega-backend/internal/docstore"
)

var Categories = []string{"ninguna", "celulares", "computadoras", "accesorios"}

const (
	minPrice = 10
	maxPrice = 500
	maxStock = 1000
)

type Creator interface {
	CreateMany(ctx context.Context, fields []docstore.Record) ([]docstore.Record, error)
}

// Generator builds the caller fields of one synthetic record. Ids are
// assigned by the store.
type Generator func(f *gofakeit.Faker) docstore.Record

type Option func(*Seeder)

func WithFaker(f *gofakeit.Faker) Option {
	return func(s *Seeder) { s.faker = f }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Seeder) {
		if log != nil {
			s.log = log
		}
	}
}

type Seeder struct {
	dst   Creator
	gen   Generator
	faker *gofakeit.Faker
	log   *zap.Logger
}

func New(dst Creator, gen Generator, opts ...Option) *Seeder {
	s := &Seeder{
		dst: dst,
		gen: gen,
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.faker == nil {
		s.faker = gofakeit.New(0)
	}
	return s
}

// Seed generates count records and appends them in one store cycle.
func (s *Seeder) Seed(ctx context.Context, count int) ([]docstore.Record, error) {
	if count <= 0 {
		return []docstore.Record{}, nil
	}

	fields := make([]docstore.Record, 0, count)
	for i := 0; i < count; i++ {
		fields = append(fields, s.gen(s.faker))
	}

	out, err := s.dst.CreateMany(ctx, fields)
	if err != nil {
		return nil, fmt.Errorf("seed %d records: %w", count, err)
	}

	s.log.Info("collection seeded", zap.Int("records", len(out)))
	return out, nil
}

// Product generates a catalog product.
func Product(f *gofakeit.Faker) docstore.Record {
	price := math.Round(f.Price(minPrice, maxPrice)*100) / 100

	return docstore.Record{
		"title":    f.ProductName(),
		"price":    price,
		"stock":    f.IntRange(0, maxStock),
		"photo":    fmt.Sprintf("https://picsum.photos/seed/%s/640/480", f.LetterN(10)),
		"category": f.RandomString(Categories),
	}
}
