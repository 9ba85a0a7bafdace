package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/renteazy/renteazy-server/internal/auth"
	"github.com/renteazy/renteazy-server/internal/chat"
	"github.com/renteazy/renteazy-server/internal/config"
	"github.com/renteazy/renteazy-server/internal/models"
	"github.com/renteazy/renteazy-server/internal/realtime"
	"github.com/renteazy/renteazy-server/internal/session"
	"github.com/renteazy/renteazy-server/internal/storage"
	"github.com/renteazy/renteazy-server/internal/validation"
)

// contextKey is a private type for request context values
type contextKey string

// claimsKey is the context key the auth middleware stores claims under
const claimsKey contextKey = "claims"

// RESTServer represents the REST API server
type RESTServer struct {
	config    *config.Config
	store     storage.Store
	auth      *auth.JWTManager
	validator *validation.Validator
	session   *session.Resolver
	rooms     *chat.Registry
	hub       *realtime.Hub
	router    chi.Router
	server    *http.Server
}

// NewRESTServer creates a new REST API server
func NewRESTServer(cfg *config.Config, store storage.Store, hub *realtime.Hub, rooms *chat.Registry) *RESTServer {
	s := &RESTServer{
		config:    cfg,
		store:     store,
		auth:      auth.NewJWTManager(&cfg.JWT),
		validator: validation.NewValidator(),
		session:   session.NewResolver(roleStoreAdapter{store: store}),
		rooms:     rooms,
		hub:       hub,
		router:    chi.NewRouter(),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // the SSE stream holds its connection open
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all routes
func (s *RESTServer) setupRoutes() {
	// Middleware
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		s.setupAPIRoutes(r)
	})
}

// ListenAndServe starts the server
func (s *RESTServer) ListenAndServe(addr string) error {
	s.server.Addr = addr
	log.Info().Str("addr", addr).Msg("Starting REST API server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *RESTServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// authMiddleware is the authentication middleware
func (s *RESTServer) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			s.respondError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			s.respondError(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}

		claims, err := s.auth.ValidateToken(parts[1])
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole returns middleware that rejects requests whose token does
// not carry one of the given roles
func (s *RESTServer) requireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFromContext(r.Context())
			if claims == nil {
				s.respondError(w, http.StatusUnauthorized, "missing token")
				return
			}

			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			s.respondError(w, http.StatusForbidden, "insufficient role")
		})
	}
}

// claimsFromContext extracts claims stored by authMiddleware
func claimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// roleStoreAdapter exposes the role slice of storage.Store to the
// session resolver, translating opaque uids to UUID keys
type roleStoreAdapter struct {
	store storage.Store
}

func (a roleStoreAdapter) GetRole(ctx context.Context, uid string) (models.Role, error) {
	id, err := uuid.Parse(uid)
	if err != nil {
		return "", storage.ErrNotFound
	}

	role, err := a.store.GetUserRole(ctx, id)
	if err != nil {
		return "", err
	}

	return role.Role, nil
}

func (a roleStoreAdapter) AssignRole(ctx context.Context, uid string, role models.Role, assignedBy string) error {
	id, err := uuid.Parse(uid)
	if err != nil {
		return fmt.Errorf("invalid uid %q", uid)
	}

	return a.store.UpsertUserRole(ctx, &models.UserRole{
		UserID:     id,
		Role:       role,
		AssignedBy: assignedBy,
	})
}
