package api

import (
	"errors"
	"net/http"

	"github.com/taskchat/taskchat/internal/auth"
	"github.com/taskchat/taskchat/internal/logging"
	"github.com/taskchat/taskchat/internal/tasks"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// authPayload is the data half of a successful auth response.
type authPayload struct {
	User  *auth.User      `json:"user"`
	Token *auth.TokenPair `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, tasks.Fail(tasks.ErrCodeValidation, "Invalid JSON body"))
		return
	}

	user, pair, err := s.deps.Auth().Register(r.Context(), req.Email, req.Password, req.Name)
	switch {
	case errors.Is(err, auth.ErrInvalidEmail):
		writeEnvelope(w, http.StatusBadRequest, tasks.Fail(tasks.ErrCodeValidation, "A valid email address is required"))
		return
	case errors.Is(err, auth.ErrWeakPassword):
		writeEnvelope(w, http.StatusBadRequest, tasks.Fail(tasks.ErrCodeValidation, "Password must be at least 8 characters"))
		return
	case errors.Is(err, auth.ErrEmailTaken):
		writeEnvelope(w, http.StatusConflict, tasks.Fail(tasks.ErrCodeValidation, "Email is already registered"))
		return
	case err != nil:
		s.deps.Logger().Error("registration failed", logging.Err(err))
		writeEnvelope(w, http.StatusInternalServerError, tasks.Fail(tasks.ErrCodeInternal, "Registration failed. Please try again."))
		return
	}

	writeEnvelope(w, http.StatusCreated, tasks.OK(&authPayload{User: user, Token: pair}, "Account created"))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, tasks.Fail(tasks.ErrCodeValidation, "Invalid JSON body"))
		return
	}

	user, pair, err := s.deps.Auth().Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeEnvelope(w, http.StatusUnauthorized, tasks.Fail(errCodeUnauthorized, "Invalid email or password"))
		return
	case err != nil:
		s.deps.Logger().Error("login failed", logging.Err(err))
		writeEnvelope(w, http.StatusInternalServerError, tasks.Fail(tasks.ErrCodeInternal, "Login failed. Please try again."))
		return
	}

	writeEnvelope(w, http.StatusOK, tasks.OK(&authPayload{User: user, Token: pair}, "Logged in"))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeBody(r, &req); err != nil || req.RefreshToken == "" {
		writeEnvelope(w, http.StatusBadRequest, tasks.Fail(tasks.ErrCodeValidation, "refresh_token is required"))
		return
	}

	pair, err := s.deps.Auth().Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeEnvelope(w, http.StatusUnauthorized, tasks.Fail(errCodeUnauthorized, "Invalid or expired refresh token"))
		return
	}

	writeEnvelope(w, http.StatusOK, tasks.OK(&authPayload{Token: pair}, "Token refreshed"))
}
