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

// ========== Announcement handlers ==========

// HandleListAnnouncements lists announcements
func (s *RESTServer) HandleListAnnouncements(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	announcements, total, err := s.store.ListAnnouncements(r.Context(), limit, offset)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"announcements": announcements,
		"total":         total,
	})
}

// HandleCreateAnnouncement posts a community announcement
func (s *RESTServer) HandleCreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string    `json:"message" validate:"required,min=1,max=2000"`
		Type    string    `json:"type" validate:"required,oneof=festival maintenance event"`
		Date    time.Time `json:"date"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Date.IsZero() {
		req.Date = time.Now()
	}

	a := &models.Announcement{
		Message: req.Message,
		Type:    models.AnnouncementType(req.Type),
		Date:    req.Date,
	}

	if err := s.store.CreateAnnouncement(r.Context(), a); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("announcements", realtime.ActionCreated, a.ID.String())
	s.respondJSON(w, http.StatusCreated, a)
}

// HandleGetAnnouncement gets an announcement
func (s *RESTServer) HandleGetAnnouncement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid announcement id")
		return
	}

	a, err := s.store.GetAnnouncement(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "announcement not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, a)
}

// HandleDeleteAnnouncement deletes an announcement
func (s *RESTServer) HandleDeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid announcement id")
		return
	}

	if err := s.store.DeleteAnnouncement(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "announcement not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("announcements", realtime.ActionDeleted, id.String())
	w.WriteHeader(http.StatusNoContent)
}

// ========== Poll handlers ==========

// HandleListPolls lists polls. Each poll carries whether the caller has
// already voted on it.
func (s *RESTServer) HandleListPolls(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	polls, total, err := s.store.ListPolls(r.Context(), limit, offset)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	claims := claimsFromContext(r.Context())
	uid := claims.UserID.String()

	type pollView struct {
		*models.Poll
		HasVoted   bool  `json:"hasVoted"`
		TotalVotes int64 `json:"totalVotes"`
	}

	views := make([]pollView, 0, len(polls))
	for _, p := range polls {
		views = append(views, pollView{
			Poll:       p,
			HasVoted:   p.HasVoted(uid),
			TotalVotes: p.TotalVotes(),
		})
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"polls": views,
		"total": total,
	})
}

// HandleCreatePoll creates a poll with zeroed counters
func (s *RESTServer) HandleCreatePoll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string   `json:"question" validate:"required,min=1,max=500"`
		Options  []string `json:"options" validate:"required,min=2,dive,required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	poll := &models.Poll{
		Question: req.Question,
		Options:  req.Options,
		Votes:    make([]int64, len(req.Options)),
		Voters:   []string{},
	}

	if err := s.store.CreatePoll(r.Context(), poll); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("polls", realtime.ActionCreated, poll.ID.String())
	s.respondJSON(w, http.StatusCreated, poll)
}

// HandleGetPoll gets a poll
func (s *RESTServer) HandleGetPoll(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid poll id")
		return
	}

	poll, err := s.store.GetPoll(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "poll not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, poll)
}

// HandleVotePoll records the caller's vote. The storage layer applies
// the counter increment and voter append in one statement, so two
// concurrent votes from one user cannot both land.
func (s *RESTServer) HandleVotePoll(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid poll id")
		return
	}

	var req struct {
		OptionIndex *int `json:"optionIndex"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.OptionIndex == nil || *req.OptionIndex < 0 {
		s.respondError(w, http.StatusBadRequest, "optionIndex is required")
		return
	}

	claims := claimsFromContext(r.Context())

	err = s.store.VotePoll(r.Context(), id, *req.OptionIndex, claims.UserID.String())
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "poll not found")
		return
	case errors.Is(err, storage.ErrAlreadyVoted):
		s.respondError(w, http.StatusConflict, "already voted on this poll")
		return
	case errors.Is(err, storage.ErrInvalidData):
		s.respondError(w, http.StatusBadRequest, "option index out of range")
		return
	case err != nil:
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	poll, err := s.store.GetPoll(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("polls", realtime.ActionUpdated, id.String())
	s.respondJSON(w, http.StatusOK, poll)
}

// HandleDeletePoll deletes a poll
func (s *RESTServer) HandleDeletePoll(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid poll id")
		return
	}

	if err := s.store.DeletePoll(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "poll not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("polls", realtime.ActionDeleted, id.String())
	w.WriteHeader(http.StatusNoContent)
}

// ========== Event handlers ==========

// HandleListEvents lists events with their RSVPs
func (s *RESTServer) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	events, total, err := s.store.ListEvents(r.Context(), limit, offset)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type eventView struct {
		*models.Event
		Attendees int `json:"attendees"`
	}

	views := make([]eventView, 0, len(events))
	for _, e := range events {
		views = append(views, eventView{
			Event:     e,
			Attendees: e.AttendeeCount(),
		})
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"events": views,
		"total":  total,
	})
}

// HandleCreateEvent creates a community event
func (s *RESTServer) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string    `json:"title" validate:"required,min=1,max=200"`
		Description string    `json:"description"`
		Date        time.Time `json:"date" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	event := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
	}

	if err := s.store.CreateEvent(r.Context(), event); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("events", realtime.ActionCreated, event.ID.String())
	s.respondJSON(w, http.StatusCreated, event)
}

// HandleGetEvent gets an event with its RSVPs
func (s *RESTServer) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	event, err := s.store.GetEvent(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "event not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"event":     event,
		"attendees": event.AttendeeCount(),
	})
}

// HandleUpdateEvent updates an event
func (s *RESTServer) HandleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	event, err := s.store.GetEvent(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "event not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var req struct {
		Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
		Description *string    `json:"description"`
		Date        *time.Time `json:"date"`
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
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Date != nil {
		event.Date = *req.Date
	}

	if err := s.store.UpdateEvent(r.Context(), event); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("events", realtime.ActionUpdated, event.ID.String())
	s.respondJSON(w, http.StatusOK, event)
}

// HandleDeleteEvent deletes an event and its RSVPs
func (s *RESTServer) HandleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	if err := s.store.DeleteEvent(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "event not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("events", realtime.ActionDeleted, id.String())
	w.WriteHeader(http.StatusNoContent)
}

// HandleEventRSVP records or overwrites the caller's RSVP. Repeating
// the call with a different status flips the previous answer.
func (s *RESTServer) HandleEventRSVP(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=yes no"`
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

	rsvp := &models.EventRSVP{
		EventID: id,
		UserID:  claims.UserID,
		Status:  models.RSVPStatus(req.Status),
	}

	if err := s.store.SetEventRSVP(r.Context(), rsvp); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "event not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("events", realtime.ActionUpdated, id.String())
	s.respondJSON(w, http.StatusOK, rsvp)
}
