package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/enrolld/enrolld/pkg/domain"
)

// CreateParticipantRequest represents a participant creation request
type CreateParticipantRequest struct {
	ID      string `json:"id" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Address string `json:"address" binding:"required"`
}

// CreateActivityRequest represents an activity creation request. Capacity is
// a pointer because zero is a legal value the required binding would reject.
type CreateActivityRequest struct {
	Title    string `json:"title" binding:"required"`
	Capacity *int   `json:"capacity" binding:"required"`
}

// AddPrerequisiteRequest records that Prerequisite must be completed before
// Dependent.
type AddPrerequisiteRequest struct {
	Prerequisite string `json:"prerequisite" binding:"required"`
	Dependent    string `json:"dependent" binding:"required"`
}

// RegisterRequest represents a registration request. An absent priority is
// zero, the most urgent value.
type RegisterRequest struct {
	ParticipantID string `json:"participant_id" binding:"required"`
	Priority      int    `json:"priority"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"checks": gin.H{
			"registrar": "ok",
		},
	})
}

func (s *Server) handleCreateParticipant(c *gin.Context) {
	var req CreateParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeBindError(c, err)
		return
	}

	p, err := s.manager.CreateParticipant(c.Request.Context(), req.ID, req.Name, req.Address)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (s *Server) handleListParticipants(c *gin.Context) {
	participants, err := s.manager.ListParticipants(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"participants": participants,
		"total":        len(participants),
	})
}

func (s *Server) handleGetParticipant(c *gin.Context) {
	p, err := s.manager.GetParticipant(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (s *Server) handleCreateActivity(c *gin.Context) {
	var req CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeBindError(c, err)
		return
	}

	a, err := s.manager.CreateActivity(c.Request.Context(), req.Title, *req.Capacity)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"title":    a.Title,
		"capacity": a.Capacity,
	})
}

func (s *Server) handleListActivities(c *gin.Context) {
	activities, err := s.manager.ListActivities(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activities": activities,
		"total":      len(activities),
	})
}

func (s *Server) handleGetActivity(c *gin.Context) {
	detail, err := s.manager.ActivityDetail(c.Request.Context(), c.Param("title"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (s *Server) handleListPrerequisites(c *gin.Context) {
	title := c.Param("title")
	prerequisites, err := s.manager.Prerequisites(c.Request.Context(), title)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if prerequisites == nil {
		prerequisites = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"activity":      title,
		"prerequisites": prerequisites,
	})
}

func (s *Server) handleAddPrerequisite(c *gin.Context) {
	var req AddPrerequisiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeBindError(c, err)
		return
	}

	if err := s.manager.AddPrerequisite(c.Request.Context(), req.Prerequisite, req.Dependent); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"prerequisite": req.Prerequisite,
		"dependent":    req.Dependent,
	})
}

func (s *Server) handleRegister(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeBindError(c, err)
		return
	}

	result, err := s.manager.Register(c.Request.Context(), req.ParticipantID, c.Param("title"), req.Priority)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (s *Server) handleDeregister(c *gin.Context) {
	result, err := s.manager.Deregister(c.Request.Context(), c.Param("id"), c.Param("title"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetSchedule(c *gin.Context) {
	schedule := s.manager.GetSchedule(c.Request.Context())
	if schedule.Order == nil {
		schedule.Order = []string{}
	}

	c.JSON(http.StatusOK, schedule)
}

func (s *Server) handleUndo(c *gin.Context) {
	result, err := s.manager.Undo(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleRecentEvents returns the newest journaled events. The limit query
// parameter defaults to 50 and is capped at 500.
func (s *Server) handleRecentEvents(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: ErrorDetail{
					Code:    "INVALID_REQUEST",
					Message: "limit must be a positive integer",
				},
			})
			return
		}
		limit = n
	}
	if limit > 500 {
		limit = 500
	}

	events, err := s.journal.Recent(c.Request.Context(), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if events == nil {
		events = []domain.Event{}
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"total":  len(events),
	})
}

func (s *Server) writeBindError(c *gin.Context, err error) {
	s.logger.Error("invalid request", zap.Error(err))
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		},
	})
}

// writeError maps core errors onto HTTP statuses.
func (s *Server) writeError(c *gin.Context, err error) {
	status, code := classifyError(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	c.JSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: err.Error(),
		},
	})
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, domain.ErrParticipantNotFound):
		return http.StatusNotFound, "PARTICIPANT_NOT_FOUND"
	case errors.Is(err, domain.ErrActivityNotFound):
		return http.StatusNotFound, "ACTIVITY_NOT_FOUND"
	case errors.Is(err, domain.ErrDuplicateRegistration):
		return http.StatusConflict, "DUPLICATE_REGISTRATION"
	case errors.Is(err, domain.ErrPrerequisiteUnmet):
		return http.StatusUnprocessableEntity, "PREREQUISITE_UNMET"
	case errors.Is(err, domain.ErrEmptyUndoLog):
		return http.StatusConflict, "EMPTY_UNDO_LOG"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
