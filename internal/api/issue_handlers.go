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

// HandleListIssues lists issues with optional filters. Tenants see only
// their own reports.
func (s *RESTServer) HandleListIssues(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	var filters storage.IssueFilters

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
		status := models.IssueStatus(v)
		filters.Status = &status
	}

	issues, total, err := s.store.ListIssues(r.Context(), filters, limit, offset)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"issues": issues,
		"total":  total,
	})
}

// HandleCreateIssue reports a new issue for a property
func (s *RESTServer) HandleCreateIssue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PropertyID  string   `json:"propertyId" validate:"required,uuid"`
		Title       string   `json:"title" validate:"required,min=2,max=200"`
		Description string   `json:"description"`
		Attachments []string `json:"attachments"`
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

	issue := &models.Issue{
		TenantID:    claims.UserID,
		PropertyID:  uuid.MustParse(req.PropertyID),
		Title:       req.Title,
		Description: req.Description,
		Status:      models.IssueStatusReported,
		Attachments: req.Attachments,
	}

	if err := s.store.CreateIssue(r.Context(), issue); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("issues", realtime.ActionCreated, issue.ID.String())
	s.respondJSON(w, http.StatusCreated, issue)
}

// HandleGetIssue gets an issue
func (s *RESTServer) HandleGetIssue(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid issue id")
		return
	}

	issue, err := s.store.GetIssue(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "issue not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, issue)
}

// HandleUpdateIssue updates an issue's status or description
func (s *RESTServer) HandleUpdateIssue(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid issue id")
		return
	}

	issue, err := s.store.GetIssue(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "issue not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var req struct {
		Title       *string  `json:"title" validate:"omitempty,min=2,max=200"`
		Description *string  `json:"description"`
		Status      *string  `json:"status" validate:"omitempty,oneof=reported investigating resolved closed"`
		Attachments []string `json:"attachments"`
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
		issue.Title = *req.Title
	}
	if req.Description != nil {
		issue.Description = *req.Description
	}
	if req.Status != nil {
		issue.Status = models.IssueStatus(*req.Status)
	}
	if req.Attachments != nil {
		issue.Attachments = req.Attachments
	}

	if err := s.store.UpdateIssue(r.Context(), issue); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("issues", realtime.ActionUpdated, issue.ID.String())
	s.respondJSON(w, http.StatusOK, issue)
}

// HandleDeleteIssue deletes an issue
func (s *RESTServer) HandleDeleteIssue(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid issue id")
		return
	}

	if err := s.store.DeleteIssue(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "issue not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Publish("issues", realtime.ActionDeleted, id.String())
	w.WriteHeader(http.StatusNoContent)
}
