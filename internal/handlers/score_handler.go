package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/SAP-F-2025/scoring-service/internal/models"
	"github.com/SAP-F-2025/scoring-service/internal/repositories"
	"github.com/SAP-F-2025/scoring-service/internal/services"
	"github.com/SAP-F-2025/scoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ScoreHandler struct {
	BaseHandler
	scoringService services.ScoringService
}

func NewScoreHandler(scoringService services.ScoringService, logger utils.Logger) *ScoreHandler {
	return &ScoreHandler{
		BaseHandler:    NewBaseHandler(logger),
		scoringService: scoringService,
	}
}

// ComputeScores scores a batch of answer sheets
// @Summary Compute TCT scores
// @Description Scores every student against the answer key, per area when areas or a preset are given
// @Tags scores
// @Accept json
// @Produce json
// @Param request body services.ScoreRequest true "Answer sheets and key"
// @Success 200 {object} SuccessResponse{data=services.ScoreResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /scores [post]
func (h *ScoreHandler) ComputeScores(c *gin.Context) {
	var req services.ScoreRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Computing scores", "students", len(req.Students), "questions", len(req.AnswerKey))

	resp, err := h.scoringService.Score(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Scores computed successfully", resp, "run_id", resp.RunID)
}

// QuestionStats reports hit rates per question
// @Summary Question statistics
// @Tags scores
// @Accept json
// @Produce json
// @Param request body services.QuestionStatsRequest true "Answer sheets, key and question range"
// @Success 200 {object} SuccessResponse{data=[]models.QuestionStat}
// @Failure 400 {object} ErrorResponse
// @Router /scores/question-stats [post]
func (h *ScoreHandler) QuestionStats(c *gin.Context) {
	var req services.QuestionStatsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	stats, err := h.scoringService.QuestionStats(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Question statistics computed successfully", stats)
}

// ExportExcel renders scores and statistics as an xlsx workbook
// @Summary Export scores to Excel
// @Tags scores
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param request body services.ExportRequest true "Answer sheets and key"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Router /scores/export [post]
func (h *ScoreHandler) ExportExcel(c *gin.Context) {
	var req services.ExportRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Exporting scores", "students", len(req.Students))

	data, err := h.scoringService.ExportExcel(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("resultados_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// GetRun returns an archived scoring run
// @Summary Get score run
// @Tags scores
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} SuccessResponse{data=models.ScoreRun}
// @Failure 404 {object} ErrorResponse
// @Failure 501 {object} ErrorResponse
// @Router /scores/runs/{id} [get]
func (h *ScoreHandler) GetRun(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	run, err := h.scoringService.GetRun(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Score run retrieved successfully", run)
}

// ListRuns pages through archived runs, newest first unless sort_order=asc.
func (h *ScoreHandler) ListRuns(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return
	}

	filters := repositories.ScoreRunFilters{
		Limit:     limit,
		Offset:    offset,
		SortOrder: strings.ToLower(c.Query("sort_order")),
	}
	if sessionID := c.Query("session_id"); sessionID != "" {
		filters.SessionID = &sessionID
	}
	if mode := c.Query("mode"); mode != "" {
		m := models.ScoringMode(mode)
		if m != models.ScoringModeArea && m != models.ScoringModeWholeKey {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid mode", nil, "must be one of: area, whole_key")
			return
		}
		filters.Mode = &m
	}
	for _, bound := range []struct {
		key  string
		dest **time.Time
	}{{"date_from", &filters.DateFrom}, {"date_to", &filters.DateTo}} {
		raw := c.Query(bound.key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid "+bound.key, err, "must be an RFC 3339 timestamp")
			return
		}
		*bound.dest = &t
	}

	runs, total, err := h.scoringService.ListRuns(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Score runs retrieved successfully", ListResponse{
		Items:  runs,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// ListPresets returns the known area presets
// @Summary List area presets
// @Tags presets
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]config.AreaPreset}
// @Router /presets [get]
func (h *ScoreHandler) ListPresets(c *gin.Context) {
	h.RespondWithSuccess(c, http.StatusOK, "Presets retrieved successfully", h.scoringService.Presets())
}
