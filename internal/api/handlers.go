package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/renteazy/renteazy-server/internal/models"
	"github.com/renteazy/renteazy-server/internal/realtime"
	"github.com/renteazy/renteazy-server/internal/session"
	"github.com/renteazy/renteazy-server/internal/storage"
	"github.com/renteazy/renteazy-server/pkg/crypto"
)

// ========== Auth handlers ==========

// HandleSignup registers a new user and provisions its role
func (s *RESTServer) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name" validate:"required,min=2,max=100"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
		Phone    string `json:"phone"`
		Address  string `json:"address"`
		Role     string `json:"role" validate:"omitempty,oneof=tenant owner"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "signup failed")
		return
	}

	role := models.Role(req.Role)
	if role == "" {
		role = models.RoleTenant
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Address:      req.Address,
	}

	// Profile and role rows are written together so login never sees
	// half a signup.
	tx, err := s.store.BeginTx(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "signup failed")
		return
	}

	if err := tx.CreateUser(r.Context(), user); err != nil {
		tx.Rollback()
		if errors.Is(err, storage.ErrDuplicateKey) {
			s.respondError(w, http.StatusConflict, "user with this email already exists")
			return
		}
		log.Error().Err(err).Msg("Signup failed")
		s.respondError(w, http.StatusInternalServerError, "signup failed")
		return
	}

	if err := tx.UpsertUserRole(r.Context(), &models.UserRole{
		UserID:     user.ID,
		Role:       role,
		AssignedBy: "signup",
	}); err != nil {
		tx.Rollback()
		log.Error().Err(err).Msg("Signup failed")
		s.respondError(w, http.StatusInternalServerError, "signup failed")
		return
	}

	if err := tx.Commit(); err != nil {
		s.respondError(w, http.StatusInternalServerError, "signup failed")
		return
	}

	sessUser, err := s.session.Resolve(r.Context(), profileFromUser(user))
	if err != nil {
		log.Error().Err(err).Msg("Signup failed")
		s.respondError(w, http.StatusInternalServerError, "signup failed")
		return
	}

	s.hub.Publish("users", realtime.ActionCreated, user.ID.String())
	s.respondSession(w, http.StatusCreated, user, sessUser)
}

// HandleLogin handles user login
func (s *RESTServer) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		log.Error().Err(err).Msg("Login failed")
		s.respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	if !s.auth.VerifyPassword(req.Password, user.PasswordHash) {
		s.respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.store.UpdateUser(r.Context(), user); err != nil {
		log.Error().Err(err).Msg("Failed to update last login")
	}

	sessUser, err := s.session.Resolve(r.Context(), profileFromUser(user))
	if err != nil {
		log.Error().Err(err).Msg("Login failed")
		s.respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	s.respondSession(w, http.StatusOK, user, sessUser)
}

// HandleRefresh handles token refresh
func (s *RESTServer) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, err := s.auth.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	sessUser, err := s.session.Resolve(r.Context(), profileFromUser(user))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	s.respondSession(w, http.StatusOK, user, sessUser)
}

// HandleGetCurrentUser returns the session user for the caller's token
func (s *RESTServer) HandleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		s.respondError(w, http.StatusUnauthorized, "missing token")
		return
	}

	user, err := s.store.GetUser(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "user not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sessUser, err := s.session.Resolve(r.Context(), profileFromUser(user))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, sessUser)
}

// ========== User handlers ==========

// HandleListUsers lists users
func (s *RESTServer) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	users, total, err := s.store.ListUsers(r.Context(), limit, offset)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"total": total,
	})
}

// HandleGetUser gets a user
func (s *RESTServer) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "user not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	user.PasswordHash = ""
	s.respondJSON(w, http.StatusOK, user)
}

// HandleUpdateUser updates a user's profile
func (s *RESTServer) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	claims := claimsFromContext(r.Context())
	if claims.Role != models.RoleAdmin && claims.UserID != id {
		s.respondError(w, http.StatusForbidden, "cannot modify another user")
		return
	}

	var req struct {
		Name    string `json:"name" validate:"omitempty,min=2,max=100"`
		Email   string `json:"email" validate:"omitempty,email"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "user not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Address != "" {
		user.Address = req.Address
	}

	if err := s.store.UpdateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			s.respondError(w, http.StatusConflict, "email already in use")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("users", realtime.ActionUpdated, user.ID.String())

	user.PasswordHash = ""
	s.respondJSON(w, http.StatusOK, user)
}

// HandleDeleteUser deletes a user
func (s *RESTServer) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := s.store.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "user not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("users", realtime.ActionDeleted, id.String())
	w.WriteHeader(http.StatusNoContent)
}

// ========== User role handlers ==========

// HandleGetUserRole returns a user's role record. A user without one
// gets the default tenant role provisioned on the spot, so repeated
// lookups agree.
func (s *RESTServer) HandleGetUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	role, err := s.store.GetUserRole(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		role = &models.UserRole{
			UserID:     id,
			Role:       models.RoleTenant,
			AssignedBy: "auto-provision",
		}
		if err := s.store.UpsertUserRole(r.Context(), role); err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		log.Warn().Str("userId", id.String()).Msg("No role record found, provisioned default tenant role")
	} else if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, role)
}

// HandleUpsertUserRole creates or replaces a user's role
func (s *RESTServer) HandleUpsertUserRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId" validate:"required,uuid"`
		Role   string `json:"role" validate:"required,oneof=tenant owner admin"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	claims := claimsFromContext(r.Context())

	role := &models.UserRole{
		UserID:     uuid.MustParse(req.UserID),
		Role:       models.Role(req.Role),
		AssignedBy: claims.UserID.String(),
	}

	if err := s.store.UpsertUserRole(r.Context(), role); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("user-roles", realtime.ActionUpdated, role.UserID.String())
	s.respondJSON(w, http.StatusOK, role)
}

// ========== Helper methods ==========

// HandleHealth health check
func (s *RESTServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now(),
	})
}

// HandleRoot root handler
func (s *RESTServer) HandleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": s.config.Server.Name,
		"version": s.config.Server.Version,
		"health":  "/api/v1/health",
	})
}

// respondJSON responds with JSON
func (s *RESTServer) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

// respondError responds with error
func (s *RESTServer) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondSession responds with a session user and a fresh token pair
func (s *RESTServer) respondSession(w http.ResponseWriter, status int, user *models.User, sessUser *session.User) {
	accessToken, refreshToken, err := s.auth.GenerateTokenPair(user, sessUser.Role)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}

	s.respondJSON(w, status, map[string]interface{}{
		"user":          sessUser,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_in":    int(s.config.JWT.AccessTokenTTL.Seconds()),
		"token_type":    "Bearer",
	})
}

// profileFromUser adapts a stored user record into a raw profile for
// session resolution
func profileFromUser(user *models.User) session.Profile {
	return session.Profile{
		UID:         user.ID.String(),
		Name:        user.Name,
		Email:       user.Email,
		Phone:       user.Phone,
		Address:     user.Address,
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}

// parsePagination reads limit/offset query parameters
func parsePagination(r *http.Request) (int, int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
