package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/renteazy/renteazy-server/internal/models"
	"github.com/renteazy/renteazy-server/internal/realtime"
	"github.com/renteazy/renteazy-server/internal/storage"
	"github.com/renteazy/renteazy-server/pkg/crypto"
)

// orderIDAlphabet matches the gateway's order reference format
const orderIDAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// HandleListPayments lists payments with optional filters. Tenants see
// only their own payments.
func (s *RESTServer) HandleListPayments(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	var filters storage.PaymentFilters

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
	if v := r.URL.Query().Get("bookingId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid bookingId")
			return
		}
		filters.BookingID = &id
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := models.PaymentStatus(v)
		filters.Status = &status
	}

	payments, total, err := s.store.ListPayments(r.Context(), filters, limit, offset)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"payments": payments,
		"total":    total,
	})
}

// HandleCreatePayment records a payment directly, without going through
// the gateway order flow
func (s *RESTServer) HandleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PropertyID string           `json:"propertyId" validate:"required,uuid"`
		BookingID  string           `json:"bookingId" validate:"required,uuid"`
		Amount     float64          `json:"amount" validate:"required,gt=0"`
		Notes      models.Variables `json:"notes"`
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

	payment := &models.Payment{
		TenantID:   claims.UserID,
		PropertyID: uuid.MustParse(req.PropertyID),
		BookingID:  uuid.MustParse(req.BookingID),
		Amount:     req.Amount,
		Status:     models.PaymentStatusPending,
		Notes:      req.Notes,
	}

	if err := s.store.CreatePayment(r.Context(), payment); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("payments", realtime.ActionCreated, payment.ID.String())
	s.respondJSON(w, http.StatusCreated, payment)
}

// HandleCreateOrder creates a gateway order for a booking and records
// the pending payment carrying the order reference. The client takes
// the order id to the gateway checkout and comes back through
// verify-payment.
func (s *RESTServer) HandleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PropertyID string  `json:"propertyId" validate:"required,uuid"`
		BookingID  string  `json:"bookingId" validate:"required,uuid"`
		Amount     float64 `json:"amount" validate:"required,gt=0"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookingID := uuid.MustParse(req.BookingID)

	booking, err := s.store.GetBooking(r.Context(), bookingID)
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

	suffix, err := crypto.GenerateCode(orderIDAlphabet, 14)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to create order")
		return
	}
	orderID := fmt.Sprintf("order_%s", suffix)

	payment := &models.Payment{
		TenantID:   claims.UserID,
		PropertyID: uuid.MustParse(req.PropertyID),
		BookingID:  bookingID,
		Amount:     req.Amount,
		Status:     models.PaymentStatusPending,
		OrderID:    orderID,
	}

	if err := s.store.CreatePayment(r.Context(), payment); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("payments", realtime.ActionCreated, payment.ID.String())

	s.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"orderId":   orderID,
		"amount":    payment.Amount,
		"currency":  "INR",
		"keyId":     s.config.Payment.KeyID,
		"paymentId": payment.ID,
	})
}

// HandleVerifyPayment settles a pending payment from the gateway
// callback. The request carries no bearer token; the HMAC signature
// over the order and gateway payment ids is the authentication.
func (s *RESTServer) HandleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID   string `json:"razorpay_order_id" validate:"required"`
		PaymentID string `json:"razorpay_payment_id" validate:"required"`
		Signature string `json:"razorpay_signature" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	payment, err := s.store.GetPaymentByOrderID(r.Context(), req.OrderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "order not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	payment.GatewayPaymentID = req.PaymentID

	if !crypto.VerifyPaymentSignature(s.config.Payment.KeySecret, req.OrderID, req.PaymentID, req.Signature) {
		payment.Status = models.PaymentStatusFailed
		if err := s.store.UpdatePayment(r.Context(), payment); err != nil {
			log.Error().Err(err).Str("orderId", req.OrderID).Msg("Failed to record failed payment")
		}
		s.hub.Publish("payments", realtime.ActionUpdated, payment.ID.String())
		s.respondError(w, http.StatusBadRequest, "invalid payment signature")
		return
	}

	payment.Status = models.PaymentStatusCompleted
	if err := s.store.UpdatePayment(r.Context(), payment); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info().
		Str("orderId", req.OrderID).
		Str("paymentId", payment.ID.String()).
		Msg("Payment verified")

	s.hub.Publish("payments", realtime.ActionUpdated, payment.ID.String())
	s.respondJSON(w, http.StatusOK, payment)
}

// HandleGetPayment gets a payment
func (s *RESTServer) HandleGetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	payment, err := s.store.GetPayment(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "payment not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	claims := claimsFromContext(r.Context())
	if claims.Role == models.RoleTenant && payment.TenantID != claims.UserID {
		s.respondError(w, http.StatusForbidden, "not your payment")
		return
	}

	s.respondJSON(w, http.StatusOK, payment)
}

// HandleUpdatePayment updates a payment's status or notes
func (s *RESTServer) HandleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	payment, err := s.store.GetPayment(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "payment not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var req struct {
		Status *string          `json:"status" validate:"omitempty,oneof=pending completed failed"`
		Notes  models.Variables `json:"notes"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Status != nil {
		payment.Status = models.PaymentStatus(*req.Status)
	}
	if req.Notes != nil {
		payment.Notes = req.Notes
	}

	if err := s.store.UpdatePayment(r.Context(), payment); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("payments", realtime.ActionUpdated, payment.ID.String())
	s.respondJSON(w, http.StatusOK, payment)
}

// HandleDeletePayment deletes a payment record
func (s *RESTServer) HandleDeletePayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	if err := s.store.DeletePayment(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "payment not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("payments", realtime.ActionDeleted, id.String())
	w.WriteHeader(http.StatusNoContent)
}
