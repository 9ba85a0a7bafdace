package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/renteazy/renteazy-server/internal/models"
	"github.com/renteazy/renteazy-server/internal/realtime"
	"github.com/renteazy/renteazy-server/internal/storage"
)

// HandleListProperties lists properties with optional filters
func (s *RESTServer) HandleListProperties(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	var filters storage.PropertyFilters

	if v := r.URL.Query().Get("ownerId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid ownerId")
			return
		}
		filters.OwnerID = &id
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := models.PropertyStatus(v)
		filters.Status = &status
	}
	if v := r.URL.Query().Get("location"); v != "" {
		filters.Location = &v
	}

	properties, total, err := s.store.ListProperties(r.Context(), filters, limit, offset)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"properties": properties,
		"total":      total,
	})
}

// HandleCreateProperty creates a property owned by the caller
func (s *RESTServer) HandleCreateProperty(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string   `json:"title" validate:"required,min=2,max=200"`
		Description string   `json:"description"`
		RentPrice   float64  `json:"rentPrice" validate:"required,gt=0"`
		Location    string   `json:"location" validate:"required"`
		Amenities   []string `json:"amenities"`
		Images      []string `json:"images"`
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

	property := &models.Property{
		OwnerID:     claims.UserID,
		Title:       req.Title,
		Description: req.Description,
		RentPrice:   req.RentPrice,
		Location:    req.Location,
		Amenities:   req.Amenities,
		Images:      req.Images,
		Status:      models.PropertyStatusActive,
	}

	if err := s.store.CreateProperty(r.Context(), property); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("properties", realtime.ActionCreated, property.ID.String())
	s.respondJSON(w, http.StatusCreated, property)
}

// HandleGetProperty gets a property
func (s *RESTServer) HandleGetProperty(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid property id")
		return
	}

	property, err := s.store.GetProperty(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "property not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, property)
}

// HandleUpdateProperty updates a property. Only the owner or an admin
// may modify a listing.
func (s *RESTServer) HandleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid property id")
		return
	}

	property, err := s.store.GetProperty(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "property not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	claims := claimsFromContext(r.Context())
	if claims.Role != models.RoleAdmin && property.OwnerID != claims.UserID {
		s.respondError(w, http.StatusForbidden, "not the property owner")
		return
	}

	var req struct {
		Title       *string  `json:"title" validate:"omitempty,min=2,max=200"`
		Description *string  `json:"description"`
		RentPrice   *float64 `json:"rentPrice" validate:"omitempty,gt=0"`
		Location    *string  `json:"location"`
		Amenities   []string `json:"amenities"`
		Images      []string `json:"images"`
		Status      *string  `json:"status" validate:"omitempty,oneof=active inactive"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Title != nil {
		property.Title = *req.Title
	}
	if req.Description != nil {
		property.Description = *req.Description
	}
	if req.RentPrice != nil {
		property.RentPrice = *req.RentPrice
	}
	if req.Location != nil {
		property.Location = *req.Location
	}
	if req.Amenities != nil {
		property.Amenities = req.Amenities
	}
	if req.Images != nil {
		property.Images = req.Images
	}
	if req.Status != nil {
		property.Status = models.PropertyStatus(*req.Status)
	}

	if err := s.store.UpdateProperty(r.Context(), property); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("properties", realtime.ActionUpdated, property.ID.String())
	s.respondJSON(w, http.StatusOK, property)
}

// HandleDeleteProperty deletes a property. Bookings against it are
// left alone; they reference the property by id only.
func (s *RESTServer) HandleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid property id")
		return
	}

	property, err := s.store.GetProperty(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "property not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	claims := claimsFromContext(r.Context())
	if claims.Role != models.RoleAdmin && property.OwnerID != claims.UserID {
		s.respondError(w, http.StatusForbidden, "not the property owner")
		return
	}

	if err := s.store.DeleteProperty(r.Context(), id); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("properties", realtime.ActionDeleted, id.String())
	w.WriteHeader(http.StatusNoContent)
}
