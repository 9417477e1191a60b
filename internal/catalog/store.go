package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/balt0r/entrega-backend/internal/docstore"
)

type Store interface {
	Ping(ctx context.Context) error
	List(ctx context.Context, filters ...docstore.Filter) ([]docstore.Record, error)
	Get(ctx context.Context, id string) (docstore.Record, bool, error)
	Create(ctx context.Context, fields docstore.Record) (docstore.Record, error)
	Update(ctx context.Context, id string, patch docstore.Record) (docstore.Record, error)
	Delete(ctx context.Context, id string) (docstore.Record, error)
}

// Product is the typed view of the known product fields. Records may carry
// extra fields; only these are checked.
type Product struct {
	Title    *string  `json:"title"`
	Price    *float64 `json:"price" validate:"omitempty,gte=0"`
	Stock    *int     `json:"stock" validate:"omitempty,gte=0"`
	Photo    *string  `json:"photo"`
	Category *string  `json:"category"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func checkProduct(fields docstore.Record, create bool) error {
	const op = "catalog.check"

	raw, err := json.Marshal(fields)
	if err != nil {
		return docstore.NewValidationError(op, "invalid product")
	}

	var p Product
	if err := json.Unmarshal(raw, &p); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			return docstore.NewValidationError(op, fmt.Sprintf("%s has the wrong type", te.Field))
		}
		return docstore.NewValidationError(op, "invalid product")
	}

	if create && p.Title == nil {
		return docstore.NewValidationError(op, "title is required")
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return docstore.NewValidationError(op, "title must not be empty")
	}

	if err := validate.Struct(p); err != nil {
		return docstore.NewValidationError(op, describe(err))
	}
	return nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid product"
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
