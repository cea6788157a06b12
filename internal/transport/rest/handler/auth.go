package handler

import (
	"encoding/json"
	"net/http"

	"cyberqa/internal/apperr"
	"cyberqa/internal/logger"
	"cyberqa/internal/model"
	"cyberqa/internal/service"
	"cyberqa/internal/transport/rest/middleware"
)

// AuthHandler handles registration, login, and session endpoints
type AuthHandler struct {
	authSvc *service.AuthService
	log     *logger.Logger
}

func NewAuthHandler(authSvc *service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, log: log}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.authSvc.Register(r.Context(), &req)
	if err != nil {
		h.writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully",
		"token":   session.Token,
		"user":    model.NewSessionUser(session.Account),
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   session.Token,
		"user":    model.NewSessionUser(session.Account),
	})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	account := middleware.Principal(r.Context())
	writeJSON(w, http.StatusOK, model.NewSessionUser(account))
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authSvc.Logout(r.Context(), middleware.BearerToken(r)); err != nil {
		h.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// Helper functions shared by all handlers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func (h *AuthHandler) writeAppError(w http.ResponseWriter, err error) {
	writeAppError(w, h.log, err)
}

// writeAppError translates a service error into its HTTP shape; server
// faults are logged with their cause, which never reaches the client.
func writeAppError(w http.ResponseWriter, log *logger.Logger, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.WithField("error", err.Error()).Error("request failed")
	}
	writeError(w, status, apperr.Message(err))
}
