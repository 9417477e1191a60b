package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/balt0r/entrega-backend/internal/httperr"
	"github.com/balt0r/entrega-backend/pkg/kit"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registration
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	req.normalize()
	if err := req.check(); err != nil {
		httperr.Write(w, r, s.Log, err)
		return
	}

	cost := s.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	rec, err := req.record(cost)
	if err != nil {
		s.Log.Error("password hash", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	created, err := s.Users.Create(r.Context(), rec)
	if err != nil {
		httperr.Write(w, r, s.Log, err)
		return
	}

	u := userFromRecord(created)
	s.Log.Info("user registered", zap.String("id", u.ID))
	kit.WriteResponse(w, http.StatusCreated, u)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	recs, err := s.Users.List(r.Context())
	if err != nil {
		httperr.Write(w, r, s.Log, err)
		return
	}

	users := make([]User, 0, len(recs))
	for _, rec := range recs {
		users = append(users, userFromRecord(rec))
	}
	kit.WriteResponse(w, http.StatusOK, users)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uid")

	rec, err := s.Users.Delete(r.Context(), id)
	if err != nil {
		httperr.Write(w, r, s.Log, err)
		return
	}

	s.Log.Info("user deleted", zap.String("id", id))
	kit.WriteResponse(w, http.StatusOK, userFromRecord(rec))
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	AccessToken string `json:"access_token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	req.Email = normalizeEmail(req.Email)
	req.Password = strings.TrimSpace(req.Password)

	if req.Email == "" || req.Password == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "email/password required", nil)
		return
	}

	u, err := verify(r.Context(), s.Users, req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	if err != nil {
		httperr.Write(w, r, s.Log, err)
		return
	}

	tok, err := s.JWT.New(u, s.tokenTTL())
	if err != nil {
		s.Log.Error("token issue", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, loginResp{AccessToken: tok})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
		return
	}

	claims, err := s.JWT.Parse(tok)
	if err != nil {
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"user_id": claims.UserID,
		"email":   claims.Email,
		"role":    claims.Role,
	})
}
