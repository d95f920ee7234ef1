package api

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/example/stock-ledger/internal/api/middleware"
	"github.com/example/stock-ledger/internal/auth"
	"github.com/example/stock-ledger/internal/infrastructure/store"
	"github.com/example/stock-ledger/internal/session"
)

type RouterConfig struct {
	Handlers     *Handlers
	AuthHandlers *AuthHandlers
	JWTService   *auth.JWTService
	Sessions     *session.Registry
	Logger       *zap.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	handlers := cfg.Handlers

	authenticated := middleware.AuthMiddleware(cfg.JWTService, cfg.Sessions)
	anyRole := func(h http.HandlerFunc) http.Handler {
		return authenticated(h)
	}
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return authenticated(middleware.RequireRole(string(store.RoleAdmin))(h))
	}
	userOnly := func(h http.HandlerFunc) http.Handler {
		return authenticated(middleware.RequireRole(string(store.RoleUser))(h))
	}

	mux.HandleFunc("/healthz", handlers.Health)

	// Auth
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			cfg.AuthHandlers.Login(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.Handle("/auth/logout", anyRole(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			cfg.AuthHandlers.Logout(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	mux.Handle("/me", anyRole(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			cfg.AuthHandlers.Me(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// Items
	mux.Handle("/items", anyRole(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetItems(w, r)
		case http.MethodPost:
			if !isAdmin(r) {
				respondJSONError(w, "forbidden", http.StatusForbidden)
				return
			}
			handlers.CreateItem(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// Pending requests
	mux.Handle("/requests", adminOnly(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetRequests(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	mux.Handle("/requests/approve", adminOnly(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handlers.ApproveRequests(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// History
	mux.Handle("/history", adminOnly(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetHistory(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	mux.Handle("/events", anyRole(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetEventTags(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// Drafts: /drafts/{in|out}, /drafts/{in|out}/{n}, /drafts/{in|out}/submit
	mux.Handle("/drafts/", userOnly(func(w http.ResponseWriter, r *http.Request) {
		reqType, rest, ok := parseDraftPath(extractPathParam(r.URL.Path, "/drafts/"))
		if !ok {
			respondJSONError(w, "Not found", http.StatusNotFound)
			return
		}

		switch {
		case rest == "" && r.Method == http.MethodGet:
			handlers.GetDrafts(w, r, reqType)
		case rest == "" && r.Method == http.MethodPost:
			handlers.AddDraftLine(w, r, reqType)
		case rest == "submit" && r.Method == http.MethodPost:
			handlers.SubmitDrafts(w, r, reqType)
		case rest != "" && rest != "submit" && r.Method == http.MethodDelete:
			handlers.RemoveDraftLine(w, r, reqType, rest)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// Reports
	mux.Handle("/reports/inventory", adminOnly(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.DownloadInventoryReport(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	return middleware.Recoverer(cfg.Logger)(middleware.RequestLogger(cfg.Logger)(mux))
}

// parseDraftPath splits "in/3" into the request type and the remainder
func parseDraftPath(path string) (store.RequestType, string, bool) {
	kind, rest, _ := strings.Cut(strings.Trim(path, "/"), "/")
	switch kind {
	case "in":
		return store.RequestIn, rest, true
	case "out":
		return store.RequestOut, rest, true
	default:
		return "", "", false
	}
}

// isAdmin checks if the current user has admin role
func isAdmin(r *http.Request) bool {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		return false
	}
	return claims.Role == string(store.RoleAdmin)
}
