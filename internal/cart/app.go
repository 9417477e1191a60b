package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Server struct {
	Cart *Cart
	Log  *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.ListHandler())
	r.Post("/", s.AddHandler())

	return r
}
