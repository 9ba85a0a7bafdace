package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renteazy/renteazy-server/internal/auth"
	"github.com/renteazy/renteazy-server/internal/chat"
	"github.com/renteazy/renteazy-server/internal/config"
	"github.com/renteazy/renteazy-server/internal/models"
	"github.com/renteazy/renteazy-server/internal/realtime"
	"github.com/renteazy/renteazy-server/internal/storage"
	"github.com/renteazy/renteazy-server/pkg/crypto"
)

// fakeStore stubs the slice of storage a test exercises. Calls to
// anything not stubbed panic through the embedded nil interface.
type fakeStore struct {
	storage.Store

	votePollErr error
	poll        *models.Poll

	property *models.Property
	bookings []*models.Booking

	payment         *models.Payment
	updatedPayments []*models.Payment

	rsvpErr error
	rsvps   []*models.EventRSVP

	user         *models.User
	updatedUsers []*models.User
}

func (f *fakeStore) VotePoll(ctx context.Context, pollID uuid.UUID, optionIndex int, userID string) error {
	return f.votePollErr
}

func (f *fakeStore) GetPoll(ctx context.Context, id uuid.UUID) (*models.Poll, error) {
	if f.poll == nil {
		return nil, storage.ErrNotFound
	}
	return f.poll, nil
}

func (f *fakeStore) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	if f.property == nil {
		return nil, storage.ErrNotFound
	}
	return f.property, nil
}

func (f *fakeStore) CreateBooking(ctx context.Context, booking *models.Booking) error {
	booking.ID = uuid.New()
	f.bookings = append(f.bookings, booking)
	return nil
}

func (f *fakeStore) GetPaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	if f.payment == nil || f.payment.OrderID != orderID {
		return nil, storage.ErrNotFound
	}
	return f.payment, nil
}

func (f *fakeStore) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	f.updatedPayments = append(f.updatedPayments, payment)
	return nil
}

func (f *fakeStore) SetEventRSVP(ctx context.Context, rsvp *models.EventRSVP) error {
	if f.rsvpErr != nil {
		return f.rsvpErr
	}
	for i, existing := range f.rsvps {
		if existing.EventID == rsvp.EventID && existing.UserID == rsvp.UserID {
			f.rsvps[i] = rsvp
			return nil
		}
	}
	f.rsvps = append(f.rsvps, rsvp)
	return nil
}

func (f *fakeStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, storage.ErrNotFound
	}
	return f.user, nil
}

func (f *fakeStore) UpdateUser(ctx context.Context, user *models.User) error {
	f.updatedUsers = append(f.updatedUsers, user)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:          "test-secret",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 24 * time.Hour,
		},
		Payment: config.PaymentConfig{
			KeyID:     "key_test",
			KeySecret: "gateway-secret",
		},
	}
}

func newTestServer(store *fakeStore) *RESTServer {
	cfg := testConfig()
	hub := realtime.NewHub(nil)
	rooms := chat.NewRegistry(store, time.Minute)
	return NewRESTServer(cfg, store, hub, rooms)
}

func bearerToken(t *testing.T, cfg *config.Config, userID uuid.UUID, role models.Role) string {
	t.Helper()
	user := &models.User{Email: "test@example.com"}
	user.ID = userID
	m := auth.NewJWTManager(&cfg.JWT)
	access, _, err := m.GenerateTokenPair(user, role)
	require.NoError(t, err)
	return "Bearer " + access
}

func doJSON(s *RESTServer, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(&fakeStore{})

	t.Run("missing token", func(t *testing.T) {
		rec := doJSON(s, http.MethodGet, "/api/v1/bookings", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		rec := doJSON(s, http.MethodGet, "/api/v1/bookings", "Token abc", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := doJSON(s, http.MethodGet, "/api/v1/bookings", "Bearer garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	s := newTestServer(&fakeStore{})
	token := bearerToken(t, s.config, uuid.New(), models.RoleTenant)

	rec := doJSON(s, http.MethodPost, "/api/v1/properties", token, map[string]interface{}{
		"title":     "2BHK near park",
		"rentPrice": 12000,
		"location":  "Pune",
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestVotePoll(t *testing.T) {
	pollID := uuid.New()
	poll := &models.Poll{
		Question: "repaint the lobby?",
		Options:  []string{"yes", "no"},
		Votes:    []int64{1, 0},
		Voters:   []string{"someone"},
	}
	poll.ID = pollID

	path := fmt.Sprintf("/api/v1/polls/%s/vote", pollID)
	body := map[string]interface{}{"optionIndex": 0}

	t.Run("success returns the poll", func(t *testing.T) {
		store := &fakeStore{poll: poll}
		s := newTestServer(store)
		token := bearerToken(t, s.config, uuid.New(), models.RoleTenant)

		rec := doJSON(s, http.MethodPost, path, token, body)
		require.Equal(t, http.StatusOK, rec.Code)

		var got models.Poll
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, poll.Question, got.Question)
	})

	t.Run("second vote conflicts", func(t *testing.T) {
		store := &fakeStore{poll: poll, votePollErr: storage.ErrAlreadyVoted}
		s := newTestServer(store)
		token := bearerToken(t, s.config, uuid.New(), models.RoleTenant)

		rec := doJSON(s, http.MethodPost, path, token, body)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("option out of range", func(t *testing.T) {
		store := &fakeStore{poll: poll, votePollErr: storage.ErrInvalidData}
		s := newTestServer(store)
		token := bearerToken(t, s.config, uuid.New(), models.RoleTenant)

		rec := doJSON(s, http.MethodPost, path, token, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown poll", func(t *testing.T) {
		store := &fakeStore{poll: poll, votePollErr: storage.ErrNotFound}
		s := newTestServer(store)
		token := bearerToken(t, s.config, uuid.New(), models.RoleTenant)

		rec := doJSON(s, http.MethodPost, path, token, body)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCreateBooking(t *testing.T) {
	property := &models.Property{
		Title:     "2BHK near park",
		RentPrice: 1000,
		Status:    models.PropertyStatusActive,
	}
	property.ID = uuid.New()

	t.Run("end date must follow start date", func(t *testing.T) {
		store := &fakeStore{property: property}
		s := newTestServer(store)
		token := bearerToken(t, s.config, uuid.New(), models.RoleTenant)

		rec := doJSON(s, http.MethodPost, "/api/v1/bookings", token, map[string]interface{}{
			"propertyId": property.ID,
			"startDate":  "2024-03-01T00:00:00Z",
			"endDate":    "2024-01-01T00:00:00Z",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, store.bookings)
	})

	t.Run("amount derived from rent price", func(t *testing.T) {
		store := &fakeStore{property: property}
		s := newTestServer(store)
		tenantID := uuid.New()
		token := bearerToken(t, s.config, tenantID, models.RoleTenant)

		rec := doJSON(s, http.MethodPost, "/api/v1/bookings", token, map[string]interface{}{
			"propertyId": property.ID,
			"startDate":  "2024-01-01T00:00:00Z",
			"endDate":    "2024-03-01T00:00:00Z",
		})

		require.Equal(t, http.StatusCreated, rec.Code)
		require.Len(t, store.bookings, 1)

		booking := store.bookings[0]
		assert.Equal(t, tenantID, booking.TenantID)
		assert.Equal(t, float64(2000), booking.Amount)
		assert.Equal(t, models.BookingStatusPending, booking.Status)
	})
}

func TestVerifyPayment(t *testing.T) {
	newPayment := func() *models.Payment {
		p := &models.Payment{
			OrderID: "order_test123",
			Amount:  2000,
			Status:  models.PaymentStatusPending,
		}
		p.ID = uuid.New()
		return p
	}

	t.Run("valid signature completes the payment", func(t *testing.T) {
		store := &fakeStore{payment: newPayment()}
		s := newTestServer(store)

		sig := crypto.PaymentSignature("gateway-secret", "order_test123", "pay_abc")
		rec := doJSON(s, http.MethodPost, "/api/v1/payments/verify-payment", "", map[string]string{
			"razorpay_order_id":   "order_test123",
			"razorpay_payment_id": "pay_abc",
			"razorpay_signature":  sig,
		})

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, store.updatedPayments, 1)
		assert.Equal(t, models.PaymentStatusCompleted, store.updatedPayments[0].Status)
		assert.Equal(t, "pay_abc", store.updatedPayments[0].GatewayPaymentID)
	})

	t.Run("bad signature fails the payment", func(t *testing.T) {
		store := &fakeStore{payment: newPayment()}
		s := newTestServer(store)

		rec := doJSON(s, http.MethodPost, "/api/v1/payments/verify-payment", "", map[string]string{
			"razorpay_order_id":   "order_test123",
			"razorpay_payment_id": "pay_abc",
			"razorpay_signature":  "forged",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.Len(t, store.updatedPayments, 1)
		assert.Equal(t, models.PaymentStatusFailed, store.updatedPayments[0].Status)
	})

	t.Run("unknown order", func(t *testing.T) {
		store := &fakeStore{}
		s := newTestServer(store)

		rec := doJSON(s, http.MethodPost, "/api/v1/payments/verify-payment", "", map[string]string{
			"razorpay_order_id":   "order_missing",
			"razorpay_payment_id": "pay_abc",
			"razorpay_signature":  "anything",
		})

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestEventRSVP(t *testing.T) {
	eventID := uuid.New()
	path := fmt.Sprintf("/api/v1/events/%s/rsvp", eventID)

	t.Run("rsvp recorded for the caller", func(t *testing.T) {
		store := &fakeStore{}
		s := newTestServer(store)
		userID := uuid.New()
		token := bearerToken(t, s.config, userID, models.RoleTenant)

		rec := doJSON(s, http.MethodPost, path, token, map[string]string{"status": "yes"})
		require.Equal(t, http.StatusOK, rec.Code)

		require.Len(t, store.rsvps, 1)
		assert.Equal(t, eventID, store.rsvps[0].EventID)
		assert.Equal(t, userID, store.rsvps[0].UserID)
		assert.Equal(t, models.RSVPYes, store.rsvps[0].Status)
	})

	t.Run("repeated rsvp overwrites rather than duplicates", func(t *testing.T) {
		store := &fakeStore{}
		s := newTestServer(store)
		userID := uuid.New()
		token := bearerToken(t, s.config, userID, models.RoleTenant)

		rec := doJSON(s, http.MethodPost, path, token, map[string]string{"status": "yes"})
		require.Equal(t, http.StatusOK, rec.Code)
		rec = doJSON(s, http.MethodPost, path, token, map[string]string{"status": "no"})
		require.Equal(t, http.StatusOK, rec.Code)

		require.Len(t, store.rsvps, 1)
		assert.Equal(t, models.RSVPNo, store.rsvps[0].Status)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		store := &fakeStore{}
		s := newTestServer(store)
		token := bearerToken(t, s.config, uuid.New(), models.RoleTenant)

		rec := doJSON(s, http.MethodPost, path, token, map[string]string{"status": "maybe"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, store.rsvps)
	})

	t.Run("unknown event", func(t *testing.T) {
		store := &fakeStore{rsvpErr: storage.ErrNotFound}
		s := newTestServer(store)
		token := bearerToken(t, s.config, uuid.New(), models.RoleTenant)

		rec := doJSON(s, http.MethodPost, path, token, map[string]string{"status": "yes"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUpdateUserAuthorization(t *testing.T) {
	target := &models.User{Name: "Asha", Email: "asha@example.com"}
	target.ID = uuid.New()
	path := fmt.Sprintf("/api/v1/users/%s", target.ID)
	body := map[string]string{"name": "Asha R"}

	t.Run("another user is forbidden", func(t *testing.T) {
		store := &fakeStore{user: target}
		s := newTestServer(store)
		token := bearerToken(t, s.config, uuid.New(), models.RoleTenant)

		rec := doJSON(s, http.MethodPut, path, token, body)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, store.updatedUsers)
	})

	t.Run("self update succeeds", func(t *testing.T) {
		store := &fakeStore{user: target}
		s := newTestServer(store)
		token := bearerToken(t, s.config, target.ID, models.RoleTenant)

		rec := doJSON(s, http.MethodPut, path, token, body)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, store.updatedUsers, 1)
		assert.Equal(t, "Asha R", store.updatedUsers[0].Name)
	})

	t.Run("admin may update anyone", func(t *testing.T) {
		store := &fakeStore{user: target}
		s := newTestServer(store)
		token := bearerToken(t, s.config, uuid.New(), models.RoleAdmin)

		rec := doJSON(s, http.MethodPut, path, token, body)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
