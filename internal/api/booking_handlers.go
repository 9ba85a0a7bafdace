package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/renteazy/renteazy-server/internal/models"
	"github.com/renteazy/renteazy-server/internal/realtime"
	"github.com/renteazy/renteazy-server/internal/storage"
)

// HandleListBookings lists bookings with optional filters. Tenants see
// only their own bookings.
func (s *RESTServer) HandleListBookings(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	var filters storage.BookingFilters

	claims := claimsFromContext(r.Context())
	if claims.Role == models.RoleTenant {
		filters.TenantID = &claims.UserID
	} else if v := r.URL.Query().Get("tenantId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid tenantId")
			return
		}
		filters.TenantID = &id
	}
	if v := r.URL.Query().Get("propertyId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid propertyId")
			return
		}
		filters.PropertyID = &id
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := models.BookingStatus(v)
		filters.Status = &status
	}

	bookings, total, err := s.store.ListBookings(r.Context(), filters, limit, offset)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"bookings": bookings,
		"total":    total,
	})
}

// HandleCreateBooking creates a booking for the caller. The period is
// validated here; clients cannot book an end date at or before the
// start date. A zero amount is filled from the property's rent price.
func (s *RESTServer) HandleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PropertyID string    `json:"propertyId" validate:"required,uuid"`
		StartDate  time.Time `json:"startDate" validate:"required"`
		EndDate    time.Time `json:"endDate" validate:"required"`
		Amount     float64   `json:"amount" validate:"omitempty,gte=0"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !req.EndDate.After(req.StartDate) {
		s.respondError(w, http.StatusBadRequest, "end date must be after start date")
		return
	}

	propertyID := uuid.MustParse(req.PropertyID)

	property, err := s.store.GetProperty(r.Context(), propertyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "property not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	claims := claimsFromContext(r.Context())

	amount := req.Amount
	if amount == 0 {
		amount = models.BookingAmount(property.RentPrice, req.StartDate, req.EndDate)
	}

	booking := &models.Booking{
		TenantID:   claims.UserID,
		PropertyID: propertyID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Amount:     amount,
		Status:     models.BookingStatusPending,
	}

	if err := s.store.CreateBooking(r.Context(), booking); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("bookings", realtime.ActionCreated, booking.ID.String())
	s.respondJSON(w, http.StatusCreated, booking)
}

// HandleGetBooking gets a booking
func (s *RESTServer) HandleGetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	booking, err := s.store.GetBooking(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "booking not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	claims := claimsFromContext(r.Context())
	if claims.Role == models.RoleTenant && booking.TenantID != claims.UserID {
		s.respondError(w, http.StatusForbidden, "not your booking")
		return
	}

	s.respondJSON(w, http.StatusOK, booking)
}

// HandleUpdateBooking updates booking dates or status
func (s *RESTServer) HandleUpdateBooking(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	booking, err := s.store.GetBooking(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "booking not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	claims := claimsFromContext(r.Context())
	if claims.Role == models.RoleTenant && booking.TenantID != claims.UserID {
		s.respondError(w, http.StatusForbidden, "not your booking")
		return
	}

	var req struct {
		StartDate *time.Time `json:"startDate"`
		EndDate   *time.Time `json:"endDate"`
		Status    *string    `json:"status" validate:"omitempty,oneof=pending confirmed cancelled"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.StartDate != nil {
		booking.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		booking.EndDate = *req.EndDate
	}
	if !booking.EndDate.After(booking.StartDate) {
		s.respondError(w, http.StatusBadRequest, "end date must be after start date")
		return
	}
	if req.Status != nil {
		booking.Status = models.BookingStatus(*req.Status)
	}

	if err := s.store.UpdateBooking(r.Context(), booking); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("bookings", realtime.ActionUpdated, booking.ID.String())
	s.respondJSON(w, http.StatusOK, booking)
}

// HandleDeleteBooking deletes a booking
func (s *RESTServer) HandleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	booking, err := s.store.GetBooking(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "booking not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	claims := claimsFromContext(r.Context())
	if claims.Role == models.RoleTenant && booking.TenantID != claims.UserID {
		s.respondError(w, http.StatusForbidden, "not your booking")
		return
	}

	if err := s.store.DeleteBooking(r.Context(), id); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("bookings", realtime.ActionDeleted, id.String())
	w.WriteHeader(http.StatusNoContent)
}
