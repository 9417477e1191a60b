package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/balt0r/entrega-backend/pkg/kit"
)

const defaultTokenTTL = 15 * time.Minute

type Server struct {
	Log   *zap.Logger
	Users Store
	JWT   *TokenMaker

	TokenTTL time.Duration
	// bcrypt cost; zero means bcrypt.DefaultCost
	HashCost int

	// nil disables the limit
	LoginLimiter    *kit.IPRateLimiter
	RegisterLimiter *kit.IPRateLimiter
}

// Routes is mounted under /api/users.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.With(limited(s.RegisterLimiter)...).Post("/", s.handleRegister)
	r.Get("/", s.handleList)
	r.Delete("/{uid}", s.handleDelete)

	r.With(limited(s.LoginLimiter)...).Post("/login", s.handleLogin)
	r.Get("/me", s.handleMe)

	return r
}

func limited(l *kit.IPRateLimiter) []func(http.Handler) http.Handler {
	if l == nil {
		return nil
	}
	return []func(http.Handler) http.Handler{l.Middleware}
}

func (s *Server) tokenTTL() time.Duration {
	if s.TokenTTL <= 0 {
		return defaultTokenTTL
	}
	return s.TokenTTL
}
