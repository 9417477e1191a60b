package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/balt0r/entrega-backend/internal/docstore"
	"github.com/balt0r/entrega-backend/internal/httperr"
	"github.com/balt0r/entrega-backend/pkg/kit"
)

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}
	if err := checkProduct(fields, true); err != nil {
		httperr.Write(w, r, s.Log, err)
		return
	}

	p, err := s.Store.Create(r.Context(), fields)
	if err != nil {
		httperr.Write(w, r, s.Log, err)
		return
	}

	if s.Log != nil {
		s.Log.Info("product created", zap.String("id", p.ID()))
	}
	kit.WriteResponse(w, http.StatusCreated, p)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "pid")

	patch, ok := decodeFields(w, r)
	if !ok {
		return
	}
	if err := checkProduct(patch, false); err != nil {
		httperr.Write(w, r, s.Log, err)
		return
	}

	p, err := s.Store.Update(r.Context(), id, patch)
	if err != nil {
		httperr.Write(w, r, s.Log, err)
		return
	}
	kit.WriteResponse(w, http.StatusOK, p)
}

func (s *Server) destroy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "pid")

	p, err := s.Store.Delete(r.Context(), id)
	if err != nil {
		httperr.Write(w, r, s.Log, err)
		return
	}

	if s.Log != nil {
		s.Log.Info("product deleted", zap.String("id", id))
	}
	kit.WriteResponse(w, http.StatusOK, p)
}

func decodeFields(w http.ResponseWriter, r *http.Request) (docstore.Record, bool) {
	var fields docstore.Record
	if err := kit.DecodeJSON(w, r, &fields); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return nil, false
	}
	if fields == nil {
		fields = docstore.Record{}
	}
	return fields, true
}
