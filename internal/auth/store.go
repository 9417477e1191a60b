package auth

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/balt0r/entrega-backend/internal/docstore"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	fieldEmail    = "email"
	fieldPassword = "password"
	fieldAge      = "age"
	fieldRole     = "role"

	defaultRole = "user"
)

// Store is the part of *docstore.Store the users API needs.
type Store interface {
	Ping(ctx context.Context) error
	List(ctx context.Context, filters ...docstore.Filter) ([]docstore.Record, error)
	Create(ctx context.Context, fields docstore.Record) (docstore.Record, error)
	Delete(ctx context.Context, id string) (docstore.Record, error)
}

// User is the public view of a user record. The password hash never leaves
// the store through it.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Age   int    `json:"age"`
	Role  string `json:"role"`
}

func userFromRecord(r docstore.Record) User {
	email, _ := r[fieldEmail].(string)
	role, _ := r[fieldRole].(string)
	return User{
		ID:    r.ID(),
		Email: email,
		Age:   intField(r[fieldAge]),
		Role:  role,
	}
}

// Stored records come back from JSON as float64; fresh ones still hold an int.
func intField(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(math.Round(n))
	default:
		return 0
	}
}

type registration struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
	Age      int    `json:"age" validate:"required,gte=18"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

var registrationMessages = map[string]string{
	"email.required":    "Type email!",
	"email.email":       "Invalid email!",
	"password.required": "Type password!",
	"password.max":      "Password too long!",
	"age.required":      "Type age!",
	"age.gte":           "At least 18!",
}

func (r *registration) normalize() {
	r.Email = normalizeEmail(r.Email)
	r.Password = strings.TrimSpace(r.Password)
}

func (r registration) check() error {
	const op = "users.register"

	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if msg, ok := registrationMessages[fe.Field()+"."+fe.Tag()]; ok {
			return docstore.NewValidationError(op, msg)
		}
	}
	return docstore.NewValidationError(op, "invalid user")
}

func (r registration) record(cost int) (docstore.Record, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), cost)
	if err != nil {
		return nil, err
	}
	return docstore.Record{
		fieldEmail:    r.Email,
		fieldPassword: string(hash),
		fieldAge:      r.Age,
		fieldRole:     defaultRole,
	}, nil
}

// verify scans every user registered under email; duplicates are allowed, so
// the first whose hash matches wins.
func verify(ctx context.Context, users Store, email, password string) (User, error) {
	recs, err := users.List(ctx, docstore.Eq(fieldEmail, normalizeEmail(email)))
	if err != nil {
		return User{}, err
	}

	for _, r := range recs {
		hash, _ := r[fieldPassword].(string)
		if hash == "" {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil {
			return userFromRecord(r), nil
		}
	}
	return User{}, ErrInvalidCredentials
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
