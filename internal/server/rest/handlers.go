package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/motek/internal/common"
	"github.com/go-chi/render"
)

const healthTimeout = 2 * time.Second

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if !s.admit(w, r, s.registerLimiter) {
		return
	}

	var req registerRequest
	if !s.decode(w, r, &req) {
		return
	}

	u, err := s.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, registerResponse{ID: u.ID, Email: u.Email})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if !s.admit(w, r, s.loginLimiter) {
		return
	}

	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}

	pair, err := s.users.Login(r.Context(), req.Email, req.Password, req.Platform)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	render.JSON(w, r, loginResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !s.decode(w, r, &req) {
		return
	}

	access, err := s.users.Refresh(r.Context(), req.RefreshToken, req.Platform)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	render.JSON(w, r, refreshResponse{AccessToken: access})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req logoutRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.users.Logout(r.Context(), userID, req.RefreshToken); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) logoutAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	if _, err := s.users.LogoutAll(r.Context(), userID); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := s.storage.Ping(ctx); err != nil {
		s.logger.Warn(r.Context(), "storage ping failed", "error", err.Error())
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]string{"status": "unavailable"})
		return
	}
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) publicIP(w http.ResponseWriter, r *http.Request) {
	ip, ok := clientIP(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "cannot determine client address")
		return
	}
	render.JSON(w, r, map[string]string{"ip": ip.String()})
}

type meResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Platform  string    `json:"platform"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	platform, _ := PlatformFromContext(r.Context())

	u, err := s.users.GetUser(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	render.JSON(w, r, meResponse{ID: u.ID, Email: u.Email, Platform: platform, CreatedAt: u.CreatedAt})
}

func (s *Server) protected(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	render.JSON(w, r, map[string]string{
		"message":  "welcome",
		"user_id":  userID,
		"platform": common.PlatformWeb,
	})
}
