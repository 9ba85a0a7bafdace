package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/renteazy/renteazy-server/internal/models"
	"github.com/renteazy/renteazy-server/internal/realtime"
	"github.com/renteazy/renteazy-server/internal/storage"
)

// HandleListRooms lists chat rooms
func (s *RESTServer) HandleListRooms(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	rooms, total, err := s.store.ListRooms(r.Context(), limit, offset)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"rooms": rooms,
		"total": total,
	})
}

// HandleCreateRoom creates a room with a fresh invite code. The caller
// becomes the first member.
func (s *RESTServer) HandleCreateRoom(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	room, err := s.rooms.CreateRoom(r.Context(), claims.UserID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("chat-rooms", realtime.ActionCreated, room.Code)
	s.respondJSON(w, http.StatusCreated, room)
}

// HandleGetRoom gets a room by invite code
func (s *RESTServer) HandleGetRoom(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))

	room, err := s.store.GetRoom(r.Context(), code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "room not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, room)
}

// HandleJoinRoom joins the caller to a room by invite code. Joining a
// room the caller is already in succeeds without side effects.
func (s *RESTServer) HandleJoinRoom(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))
	claims := claimsFromContext(r.Context())

	ok, err := s.rooms.Join(r.Context(), code, claims.UserID.String())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		s.respondError(w, http.StatusNotFound, "room not found")
		return
	}

	room, err := s.store.GetRoom(r.Context(), code)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("chat-rooms", realtime.ActionUpdated, code)
	s.respondJSON(w, http.StatusOK, room)
}

// HandleLeaveRoom removes the caller from a room
func (s *RESTServer) HandleLeaveRoom(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))
	claims := claimsFromContext(r.Context())

	if err := s.rooms.Leave(r.Context(), code, claims.UserID.String()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "room not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("chat-rooms", realtime.ActionUpdated, code)
	w.WriteHeader(http.StatusNoContent)
}

// HandleListMessages lists a room's messages in send order
func (s *RESTServer) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))
	limit, offset := parsePagination(r)

	room, err := s.store.GetRoom(r.Context(), code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "room not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	claims := claimsFromContext(r.Context())
	if !room.HasMember(claims.UserID.String()) {
		s.respondError(w, http.StatusForbidden, "not a room member")
		return
	}

	messages, total, err := s.store.ListMessages(r.Context(), code, limit, offset)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"total":    total,
	})
}

// HandlePostMessage appends a message to a room's log. Only members may
// post.
func (s *RESTServer) HandlePostMessage(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))

	var req struct {
		Body string `json:"body" validate:"required,min=1,max=4000"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	room, err := s.store.GetRoom(r.Context(), code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "room not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	claims := claimsFromContext(r.Context())
	if !room.HasMember(claims.UserID.String()) {
		s.respondError(w, http.StatusForbidden, "not a room member")
		return
	}

	msg := &models.ChatMessage{
		RoomCode: code,
		UserID:   claims.UserID,
		Body:     req.Body,
	}

	if err := s.store.CreateMessage(r.Context(), msg); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "room not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("chat-messages", realtime.ActionCreated, msg.ID.String())
	s.respondJSON(w, http.StatusCreated, msg)
}
