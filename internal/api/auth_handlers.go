package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/example/stock-ledger/internal/api/middleware"
	"github.com/example/stock-ledger/internal/auth"
	"github.com/example/stock-ledger/internal/session"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	authenticator *auth.Authenticator
	jwtService    *auth.JWTService
	sessions      *session.Registry
	logger        *zap.Logger
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(authenticator *auth.Authenticator, jwtService *auth.JWTService, sessions *session.Registry, logger *zap.Logger) *AuthHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandlers{
		authenticator: authenticator,
		jwtService:    jwtService,
		sessions:      sessions,
		logger:        logger,
	}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"access_token,omitempty"`
	Message     string       `json:"message,omitempty"`
}

// UserResponse represents user data in responses
type UserResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Login handles user login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	principal, err := h.authenticator.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Info("login rejected", zap.String("client_ip", r.RemoteAddr))
			respondJSONError(w, "Invalid username or password", http.StatusUnauthorized)
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		respondJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	s := h.sessions.Open(principal.Username, principal.Role)
	token, expiresAt, err := h.jwtService.GenerateAccessToken(s.ID, principal.Username, string(principal.Role))
	if err != nil {
		h.sessions.Drop(s.ID)
		h.logger.Error("failed to issue access token", zap.Error(err))
		respondJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	s.ExpireAt(expiresAt)

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	h.logger.Info("user logged in", zap.String("username", principal.Username), zap.String("role", string(principal.Role)))

	respondJSON(w, http.StatusOK, AuthResponse{
		User:        UserResponse{Username: principal.Username, Role: string(principal.Role)},
		AccessToken: token,
		Message:     "Login successful",
	})
}

// Logout ends the session, discarding its draft carts
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if s, ok := middleware.GetSessionFromContext(r.Context()); ok {
		h.sessions.Drop(s.ID)
		h.logger.Info("user logged out", zap.String("username", s.Username))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Logout successful",
	})
}

// Me returns the current authenticated user's information
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	respondJSON(w, http.StatusOK, UserResponse{
		Username: claims.Username,
		Role:     claims.Role,
	})
}
