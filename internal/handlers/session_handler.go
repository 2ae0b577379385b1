package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/scoring-service/internal/models"
	"github.com/SAP-F-2025/scoring-service/internal/services"
	"github.com/SAP-F-2025/scoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	BaseHandler
	scoringService services.ScoringService
}

func NewSessionHandler(scoringService services.ScoringService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		scoringService: scoringService,
	}
}

// CreateSession opens a processing session for an uploaded document
// @Summary Create session
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body services.CreateSessionRequest true "Document metadata"
// @Success 201 {object} SuccessResponse{data=models.ProcessingSession}
// @Failure 400 {object} ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req services.CreateSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	session, err := h.scoringService.CreateSession(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Session created successfully", session, "session_id", session.ID)
}

// GetSession returns a session with its pages and students
// @Summary Get session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SuccessResponse{data=models.ProcessingSession}
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	session, err := h.scoringService.GetSession(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Session retrieved successfully", session)
}

// UpdateSession merges the given fields into a session
// @Summary Update session
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body models.SessionUpdate true "Fields to change"
// @Success 200 {object} SuccessResponse{data=models.ProcessingSession}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [patch]
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var update models.SessionUpdate
	if !h.bindJSON(c, &update) {
		return
	}

	session, err := h.scoringService.UpdateSession(c.Request.Context(), id, &update)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Session updated successfully", session)
}

// AddStudent files an extracted answer sheet under its page
// @Summary Add student to session
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body models.StudentAnswerSheet true "Answer sheet"
// @Success 200 {object} SuccessResponse{data=models.ProcessingSession}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/students [post]
func (h *SessionHandler) AddStudent(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var student models.StudentAnswerSheet
	if !h.bindJSON(c, &student) {
		return
	}

	session, err := h.scoringService.AddStudent(c.Request.Context(), id, &student)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Student added successfully", session, "student_id", student.StudentID)
}

// ScoreSession scores every student collected in the session
// @Summary Score session
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body services.SessionScoreRequest true "Answer key and areas"
// @Success 200 {object} SuccessResponse{data=services.ScoreResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /sessions/{id}/score [post]
func (h *SessionHandler) ScoreSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.SessionScoreRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Scoring session", "session_id", id)

	resp, err := h.scoringService.ScoreSession(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Session scored successfully", resp, "run_id", resp.RunID)
}
