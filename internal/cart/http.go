package cart

import (
	"net/http"

	"github.com/balt0r/entrega-backend/internal/httperr"
	"github.com/balt0r/entrega-backend/pkg/kit"
)

type addReq struct {
	ProductID string `json:"productId"`
}

type addResp struct {
	Message string  `json:"message"`
	Cart    []Entry `json:"cart"`
}

func (s *Server) AddHandler() http.HandlerFunc  { return s.add }
func (s *Server) ListHandler() http.HandlerFunc { return s.list }

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	var req addReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	entries, err := s.Cart.Add(r.Context(), req.ProductID)
	if err != nil {
		httperr.Write(w, r, s.Log, err)
		return
	}

	kit.WriteJSON(w, http.StatusOK, addResp{Message: "product added to cart", Cart: entries})
}

func (s *Server) list(w http.ResponseWriter, _ *http.Request) {
	kit.WriteResponse(w, http.StatusOK, s.Cart.Items())
}
