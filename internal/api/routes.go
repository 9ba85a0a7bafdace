package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/renteazy/renteazy-server/internal/models"
)

// setupAPIRoutes sets up API v1 routes
func (s *RESTServer) setupAPIRoutes(r chi.Router) {
	// Health check
	r.Get("/health", s.HandleHealth)
	r.Get("/", s.HandleRoot)

	// Auth routes (public)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", s.HandleSignup)
		r.Post("/login", s.HandleLogin)
		r.Post("/refresh", s.HandleRefresh)
	})

	// Payment gateway callback (public; authenticated by signature)
	r.Post("/payments/verify-payment", s.HandleVerifyPayment)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		// Change stream
		r.Get("/stream", s.HandleStream)

		// Users
		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.HandleListUsers)
			r.Get("/me", s.HandleGetCurrentUser)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetUser)
				r.Put("/", s.HandleUpdateUser)
				r.With(s.requireRole(models.RoleAdmin)).Delete("/", s.HandleDeleteUser)
			})
		})

		// User roles
		r.Route("/user-roles", func(r chi.Router) {
			r.Get("/{userId}", s.HandleGetUserRole)
			r.With(s.requireRole(models.RoleAdmin)).Post("/", s.HandleUpsertUserRole)
		})

		// Properties
		r.Route("/properties", func(r chi.Router) {
			r.Get("/", s.HandleListProperties)
			r.With(s.requireRole(models.RoleOwner, models.RoleAdmin)).Post("/", s.HandleCreateProperty)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetProperty)
				r.Put("/", s.HandleUpdateProperty)
				r.Delete("/", s.HandleDeleteProperty)
			})
		})

		// Bookings
		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", s.HandleListBookings)
			r.Post("/", s.HandleCreateBooking)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetBooking)
				r.Put("/", s.HandleUpdateBooking)
				r.Delete("/", s.HandleDeleteBooking)
			})
		})

		// Payments
		r.Route("/payments", func(r chi.Router) {
			r.Get("/", s.HandleListPayments)
			r.Post("/", s.HandleCreatePayment)
			r.Post("/create-order", s.HandleCreateOrder)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetPayment)
				r.Put("/", s.HandleUpdatePayment)
				r.Delete("/", s.HandleDeletePayment)
			})
		})

		// Issues
		r.Route("/issues", func(r chi.Router) {
			r.Get("/", s.HandleListIssues)
			r.Post("/", s.HandleCreateIssue)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetIssue)
				r.Put("/", s.HandleUpdateIssue)
				r.Delete("/", s.HandleDeleteIssue)
			})
		})

		// Announcements
		r.Route("/announcements", func(r chi.Router) {
			r.Get("/", s.HandleListAnnouncements)
			r.With(s.requireRole(models.RoleOwner, models.RoleAdmin)).Post("/", s.HandleCreateAnnouncement)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetAnnouncement)
				r.With(s.requireRole(models.RoleAdmin)).Delete("/", s.HandleDeleteAnnouncement)
			})
		})

		// Polls
		r.Route("/polls", func(r chi.Router) {
			r.Get("/", s.HandleListPolls)
			r.With(s.requireRole(models.RoleOwner, models.RoleAdmin)).Post("/", s.HandleCreatePoll)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetPoll)
				r.With(s.requireRole(models.RoleAdmin)).Delete("/", s.HandleDeletePoll)
				r.Post("/vote", s.HandleVotePoll)
			})
		})

		// Events
		r.Route("/events", func(r chi.Router) {
			r.Get("/", s.HandleListEvents)
			r.With(s.requireRole(models.RoleOwner, models.RoleAdmin)).Post("/", s.HandleCreateEvent)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetEvent)
				r.Put("/", s.HandleUpdateEvent)
				r.With(s.requireRole(models.RoleAdmin)).Delete("/", s.HandleDeleteEvent)
				r.Post("/rsvp", s.HandleEventRSVP)
			})
		})

		// Chat
		r.Route("/chat/rooms", func(r chi.Router) {
			r.Get("/", s.HandleListRooms)
			r.Post("/", s.HandleCreateRoom)
			r.Route("/{code}", func(r chi.Router) {
				r.Get("/", s.HandleGetRoom)
				r.Post("/join", s.HandleJoinRoom)
				r.Post("/leave", s.HandleLeaveRoom)
				r.Get("/messages", s.HandleListMessages)
				r.Post("/messages", s.HandlePostMessage)
			})
		})
	})
}
