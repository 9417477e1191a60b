package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/balt0r/entrega-backend/internal/docstore"
	"github.com/balt0r/entrega-backend/internal/httperr"
	"github.com/balt0r/entrega-backend/pkg/kit"
)

type Server struct {
	Store Store
	Log   *zap.Logger
}

// Routes is mounted under /api/products.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.list)
	r.Post("/", s.create)
	r.Get("/{pid}", s.get)
	r.Put("/{pid}", s.update)
	r.Delete("/{pid}", s.destroy)

	return r
}

// list treats every query parameter as an equality filter, e.g. ?category=celulares.
func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	var filters []docstore.Filter
	for field, values := range r.URL.Query() {
		if field == "" || len(values) == 0 {
			continue
		}
		filters = append(filters, docstore.Eq(field, values[0]))
	}

	products, err := s.Store.List(r.Context(), filters...)
	if err != nil {
		httperr.Write(w, r, s.Log, err)
		return
	}
	if len(products) == 0 {
		kit.WriteError(w, r, http.StatusNotFound, "not found", nil)
		return
	}
	kit.WriteResponse(w, http.StatusOK, products)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "pid")

	p, ok, err := s.Store.Get(r.Context(), id)
	if err != nil {
		httperr.Write(w, r, s.Log, err)
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteResponse(w, http.StatusOK, p)
}
