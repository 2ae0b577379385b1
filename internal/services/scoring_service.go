package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/scoring-service/internal/cache"
	"github.com/SAP-F-2025/scoring-service/internal/config"
	"github.com/SAP-F-2025/scoring-service/internal/events"
	"github.com/SAP-F-2025/scoring-service/internal/models"
	"github.com/SAP-F-2025/scoring-service/internal/reports"
	"github.com/SAP-F-2025/scoring-service/internal/repositories"
	"github.com/SAP-F-2025/scoring-service/internal/scoring"
	"github.com/SAP-F-2025/scoring-service/internal/validator"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ScoringService scores answer sheets and manages the sessions they are
// collected in.
type ScoringService interface {
	// Scoring
	Score(ctx context.Context, req *ScoreRequest) (*ScoreResponse, error)
	ScoreSession(ctx context.Context, sessionID string, req *SessionScoreRequest) (*ScoreResponse, error)
	QuestionStats(ctx context.Context, req *QuestionStatsRequest) ([]models.QuestionStat, error)
	ExportExcel(ctx context.Context, req *ExportRequest) ([]byte, error)
	Presets() []config.AreaPreset

	// Sessions
	CreateSession(ctx context.Context, req *CreateSessionRequest) (*models.ProcessingSession, error)
	GetSession(ctx context.Context, id string) (*models.ProcessingSession, error)
	UpdateSession(ctx context.Context, id string, update *models.SessionUpdate) (*models.ProcessingSession, error)
	AddStudent(ctx context.Context, sessionID string, student *models.StudentAnswerSheet) (*models.ProcessingSession, error)

	// Archive
	GetRun(ctx context.Context, id string) (*models.ScoreRun, error)
	ListRuns(ctx context.Context, filters repositories.ScoreRunFilters) ([]*models.ScoreRun, int64, error)
}

// ===== REQUESTS AND RESPONSES =====

type ScoreRequest struct {
	Students          []models.StudentAnswerSheet `json:"students" validate:"required,min=1,dive"`
	AnswerKey         []string                    `json:"answer_key" validate:"required,min=1"`
	Areas             []models.AreaSegment        `json:"areas" validate:"omitempty,dive"`
	Preset            string                      `json:"preset" validate:"omitempty,area_preset"`
	PointsPerCorrect  *float64                    `json:"points_per_correct"`
	IncludeStatistics bool                        `json:"include_statistics"`
	PassingScore      *float64                    `json:"passing_score" validate:"omitempty,min=0,max=10"`
}

func (r *ScoreRequest) ScoringAreas() []models.AreaSegment { return r.Areas }
func (r *ScoreRequest) ScoringPoints() *float64            { return r.PointsPerCorrect }

// SessionScoreRequest scores every student collected in a session.
type SessionScoreRequest struct {
	AnswerKey         []string             `json:"answer_key" validate:"required,min=1"`
	Areas             []models.AreaSegment `json:"areas" validate:"omitempty,dive"`
	Preset            string               `json:"preset" validate:"omitempty,area_preset"`
	PointsPerCorrect  *float64             `json:"points_per_correct"`
	IncludeStatistics bool                 `json:"include_statistics"`
	PassingScore      *float64             `json:"passing_score" validate:"omitempty,min=0,max=10"`
}

func (r *SessionScoreRequest) ScoringAreas() []models.AreaSegment { return r.Areas }
func (r *SessionScoreRequest) ScoringPoints() *float64            { return r.PointsPerCorrect }

type QuestionStatsRequest struct {
	Students  []models.StudentAnswerSheet `json:"students" validate:"required,min=1,dive"`
	AnswerKey []string                    `json:"answer_key" validate:"required,min=1"`
	// Start and End select questions, 1-indexed and inclusive. Zero selects
	// the whole key.
	Start int `json:"start" validate:"min=0"`
	End   int `json:"end" validate:"min=0"`
}

type ExportRequest struct {
	Students         []models.StudentAnswerSheet `json:"students" validate:"required,min=1,dive"`
	AnswerKey        []string                    `json:"answer_key" validate:"required,min=1"`
	Areas            []models.AreaSegment        `json:"areas" validate:"omitempty,dive"`
	Preset           string                      `json:"preset" validate:"omitempty,area_preset"`
	PointsPerCorrect *float64                    `json:"points_per_correct"`
	PassingScore     *float64                    `json:"passing_score" validate:"omitempty,min=0,max=10"`
	QuestionContents []models.QuestionContent    `json:"question_contents" validate:"omitempty,dive"`
}

func (r *ExportRequest) ScoringAreas() []models.AreaSegment { return r.Areas }
func (r *ExportRequest) ScoringPoints() *float64            { return r.PointsPerCorrect }

type CreateSessionRequest struct {
	FileName   string `json:"file_name" validate:"required,max=255"`
	TotalPages int    `json:"total_pages" validate:"min=0"`
}

type ScoreResponse struct {
	RunID            string                 `json:"run_id,omitempty"`
	SessionID        string                 `json:"session_id,omitempty"`
	Mode             models.ScoringMode     `json:"mode"`
	PointsPerCorrect float64                `json:"points_per_correct"`
	Areas            []models.AreaSegment   `json:"areas,omitempty"`
	Results          []models.ScoreResult   `json:"results"`
	Statistics       *models.ExamStatistics `json:"statistics,omitempty"`
}

// ===== SERVICE =====

// ScoringServiceConfig holds request defaults. Nil values fall back to the
// scoring package defaults; zero is a valid setting for both.
type ScoringServiceConfig struct {
	PointsPerCorrect *float64
	PassingScore     *float64
	// CacheTTL bounds how long identical scoring requests are answered from cache.
	CacheTTL time.Duration
}

// Dependencies wires the service. Runs, Publisher and Cache are optional.
type Dependencies struct {
	Sessions  repositories.SessionRepository
	Runs      repositories.ScoreRunRepository
	Presets   config.Presets
	Publisher events.EventPublisher
	Cache     cache.CacheService
	Validator *validator.Validator
	Logger    *slog.Logger
}

type scoringService struct {
	sessions  repositories.SessionRepository
	runs      repositories.ScoreRunRepository
	presets   config.Presets
	publisher events.EventPublisher
	cache     cache.CacheService
	validator *validator.Validator
	logger    *ServiceLogger
	points       float64
	passingScore float64
	cacheTTL     time.Duration
}

func NewScoringService(deps Dependencies, cfg ScoringServiceConfig) ScoringService {
	if deps.Presets == nil {
		deps.Presets = config.DefaultPresets()
	}
	if deps.Validator == nil {
		deps.Validator = validator.New(deps.Presets.Names()...)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	points := scoring.DefaultPointsPerCorrect
	if cfg.PointsPerCorrect != nil {
		points = *cfg.PointsPerCorrect
	}
	passingScore := scoring.DefaultPassingScore
	if cfg.PassingScore != nil {
		passingScore = *cfg.PassingScore
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 10 * time.Minute
	}

	return &scoringService{
		sessions:  deps.Sessions,
		runs:      deps.Runs,
		presets:   deps.Presets,
		publisher: deps.Publisher,
		cache:     deps.Cache,
		validator: deps.Validator,
		logger: NewServiceLogger(deps.Logger, LogConfig{
			Service:   "scoring-service",
			Component: "scoring",
		}),
		points:       points,
		passingScore: passingScore,
		cacheTTL:     cfg.CacheTTL,
	}
}

// scoringJob is one resolved scoring batch.
type scoringJob struct {
	students     []models.StudentAnswerSheet
	answerKey    []string
	areas        []models.AreaSegment
	preset       string
	points       *float64
	passingScore *float64
	withStats    bool
	sessionID    string
	// persist archives the run, publishes the event and caches the response.
	persist bool
}

func (s *scoringService) Score(ctx context.Context, req *ScoreRequest) (resp *ScoreResponse, err error) {
	op := s.logger.WithOperation(ctx, "score")
	defer func() { op.LogResult(runID(resp), "score_run", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	return s.run(ctx, "score", scoringJob{
		students:     req.Students,
		answerKey:    req.AnswerKey,
		areas:        req.Areas,
		preset:       req.Preset,
		points:       req.PointsPerCorrect,
		passingScore: req.PassingScore,
		withStats:    req.IncludeStatistics,
		persist:      true,
	})
}

func (s *scoringService) ScoreSession(ctx context.Context, sessionID string, req *SessionScoreRequest) (resp *ScoreResponse, err error) {
	op := s.logger.WithOperation(ctx, "score_session")
	defer func() { op.LogResult(sessionID, "session", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	students := session.Students()
	if len(students) == 0 {
		return nil, NewBusinessRuleError("session_has_students", "session has no extracted students to score", map[string]interface{}{
			"session_id": sessionID,
			"status":     session.Status,
		})
	}

	resp, err = s.run(ctx, "score_session", scoringJob{
		students:     students,
		answerKey:    req.AnswerKey,
		areas:        req.Areas,
		preset:       req.Preset,
		points:       req.PointsPerCorrect,
		passingScore: req.PassingScore,
		withStats:    req.IncludeStatistics,
		sessionID:    sessionID,
		persist:      true,
	})
	if err != nil {
		return nil, err
	}

	status := models.SessionCompleted
	if _, err := s.sessions.Update(ctx, sessionID, models.SessionUpdate{Status: &status}); err != nil {
		return nil, fmt.Errorf("failed to complete session: %w", err)
	}
	s.publish(ctx, events.EventSessionCompleted, events.SessionCompletedEvent{
		SessionID:    sessionID,
		StudentCount: len(students),
	})

	return resp, nil
}

func (s *scoringService) QuestionStats(ctx context.Context, req *QuestionStatsRequest) (stats []models.QuestionStat, err error) {
	op := s.logger.WithOperation(ctx, "question_stats")
	defer func() { op.LogResult("", "question_stats", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.End != 0 && req.End < req.Start {
		return nil, ValidationErrors{*NewValidationError("end", "must be greater than or equal to start", req.End)}
	}

	return scoring.QuestionStats(req.Students, req.AnswerKey, req.Start, req.End)
}

func (s *scoringService) ExportExcel(ctx context.Context, req *ExportRequest) (data []byte, err error) {
	op := s.logger.WithOperation(ctx, "export_excel")
	defer func() { op.LogResult("", "report", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	resp, err := s.run(ctx, "export_excel", scoringJob{
		students:     req.Students,
		answerKey:    req.AnswerKey,
		areas:        req.Areas,
		preset:       req.Preset,
		points:       req.PointsPerCorrect,
		passingScore: req.PassingScore,
		withStats:    true,
	})
	if err != nil {
		return nil, err
	}

	return reports.RenderExcel(&reports.ExamReport{
		Students:         req.Students,
		AnswerKey:        req.AnswerKey,
		Areas:            resp.Areas,
		Results:          resp.Results,
		Statistics:       resp.Statistics,
		QuestionContents: req.QuestionContents,
	})
}

func (s *scoringService) Presets() []config.AreaPreset {
	return s.presets.List()
}

// run scores a validated job.
func (s *scoringService) run(ctx context.Context, operation string, job scoringJob) (*ScoreResponse, error) {
	areas, err := s.resolveAreas(job.areas, job.preset)
	if err != nil {
		return nil, err
	}

	points := s.points
	if job.points != nil {
		points = *job.points
	}
	passingScore := s.passingScore
	if job.passingScore != nil {
		passingScore = *job.passingScore
	}

	var cacheKey string
	if job.persist && s.cache != nil {
		cacheKey = scoreCacheKey(job, areas, points, passingScore)
		var cached ScoreResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	start := time.Now()
	calc := scoring.NewCalculator(scoring.WithPointsPerCorrect(points))
	results, err := calc.ComputeScores(job.students, job.answerKey, areas)
	if err != nil {
		return nil, fmt.Errorf("failed to compute scores: %w", err)
	}
	mode := scoring.SelectMode(areas)

	resp := &ScoreResponse{
		SessionID:        job.sessionID,
		Mode:             models.ScoringMode(mode.String()),
		PointsPerCorrect: points,
		Areas:            areas,
		Results:          results,
	}

	if job.withStats {
		resp.Statistics, err = scoring.BuildExamStatistics(job.students, job.answerKey, results, passingScore)
		if err != nil {
			return nil, fmt.Errorf("failed to build statistics: %w", err)
		}
	}
	s.logger.LogScoringMetrics(ctx, operation, mode.String(), len(job.students), len(job.answerKey), time.Since(start))

	if !job.persist {
		return resp, nil
	}

	if s.runs != nil {
		run, err := s.archive(ctx, job, resp)
		if err != nil {
			s.logger.Warn(ctx, "failed to archive score run", "error", err)
		} else {
			resp.RunID = run.ID
		}
	}

	s.publish(ctx, events.EventScoresComputed, events.ScoresComputedEvent{
		RunID:            resp.RunID,
		SessionID:        job.sessionID,
		Mode:             string(resp.Mode),
		StudentCount:     len(results),
		QuestionCount:    len(job.answerKey),
		PointsPerCorrect: points,
		AverageScore:     batchAverage(results),
	})

	if cacheKey != "" {
		if err := s.cache.Set(ctx, cacheKey, resp, s.cacheTTL); err != nil {
			s.logger.Warn(ctx, "failed to cache score response", "error", err)
		}
	}

	return resp, nil
}

// resolveAreas expands a preset name into its segments. A preset and an
// explicit area list are mutually exclusive.
func (s *scoringService) resolveAreas(areas []models.AreaSegment, preset string) ([]models.AreaSegment, error) {
	if preset == "" {
		return areas, nil
	}
	if len(areas) > 0 {
		return nil, ValidationErrors{*NewValidationError("preset", "cannot be combined with areas", preset)}
	}
	p, ok := s.presets.Lookup(preset)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, preset)
	}
	return p.Areas, nil
}

func (s *scoringService) archive(ctx context.Context, job scoringJob, resp *ScoreResponse) (*models.ScoreRun, error) {
	answerKey, err := json.Marshal(job.answerKey)
	if err != nil {
		return nil, err
	}
	areas, err := json.Marshal(resp.Areas)
	if err != nil {
		return nil, err
	}
	results, err := json.Marshal(resp.Results)
	if err != nil {
		return nil, err
	}

	run := &models.ScoreRun{
		ID:               uuid.NewString(),
		Mode:             resp.Mode,
		PointsPerCorrect: resp.PointsPerCorrect,
		StudentCount:     len(resp.Results),
		AnswerKey:        datatypes.JSON(answerKey),
		Areas:            datatypes.JSON(areas),
		Results:          datatypes.JSON(results),
		AverageScore:     batchAverage(resp.Results),
		CreatedAt:        time.Now().UTC(),
	}
	if job.sessionID != "" {
		sessionID := job.sessionID
		run.SessionID = &sessionID
	}

	if err := s.runs.Create(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *scoringService) publish(ctx context.Context, eventType events.EventType, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Warn(ctx, "failed to publish event", "event_type", eventType, "error", err)
	}
}

// ===== SESSIONS =====

func (s *scoringService) CreateSession(ctx context.Context, req *CreateSessionRequest) (session *models.ProcessingSession, err error) {
	op := s.logger.WithOperation(ctx, "create_session")
	defer func() {
		var id string
		if session != nil {
			id = session.ID
		}
		op.LogResult(id, "session", err)
	}()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	session, err = s.sessions.Create(ctx, req.FileName, req.TotalPages)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.publish(ctx, events.EventSessionCreated, events.SessionCreatedEvent{
		SessionID:  session.ID,
		FileName:   session.FileName,
		TotalPages: session.TotalPages,
	})
	return session, nil
}

func (s *scoringService) GetSession(ctx context.Context, id string) (*models.ProcessingSession, error) {
	return s.sessions.Get(ctx, id)
}

func (s *scoringService) UpdateSession(ctx context.Context, id string, update *models.SessionUpdate) (session *models.ProcessingSession, err error) {
	op := s.logger.WithOperation(ctx, "update_session")
	defer func() { op.LogResult(id, "session", err) }()

	if err := s.validator.Validate(update); err != nil {
		return nil, err
	}
	session, err = s.sessions.Update(ctx, id, *update)
	if err != nil {
		return nil, err
	}
	s.invalidateSessionScores(ctx, id)
	return session, nil
}

// AddStudent files a student under its page and returns the updated
// session. The store ignores unknown sessions, so the follow-up read is
// what reports them.
func (s *scoringService) AddStudent(ctx context.Context, sessionID string, student *models.StudentAnswerSheet) (session *models.ProcessingSession, err error) {
	op := s.logger.WithOperation(ctx, "add_student")
	defer func() { op.LogResult(sessionID, "session", err) }()

	if err := s.validator.Validate(student); err != nil {
		return nil, err
	}
	if err := s.sessions.AddStudent(ctx, sessionID, *student); err != nil {
		return nil, fmt.Errorf("failed to add student: %w", err)
	}
	session, err = s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.invalidateSessionScores(ctx, sessionID)
	return session, nil
}

// invalidateSessionScores drops cached score responses of a session whose
// students or pages changed.
func (s *scoringService) invalidateSessionScores(ctx context.Context, sessionID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, sessionCachePattern(sessionID)); err != nil {
		s.logger.Warn(ctx, "failed to invalidate cached session scores", "session_id", sessionID, "error", err)
	}
}

// ===== ARCHIVE =====

func (s *scoringService) GetRun(ctx context.Context, id string) (*models.ScoreRun, error) {
	if s.runs == nil {
		return nil, ErrArchiveDisabled
	}
	return s.runs.GetByID(ctx, id)
}

func (s *scoringService) ListRuns(ctx context.Context, filters repositories.ScoreRunFilters) ([]*models.ScoreRun, int64, error) {
	if s.runs == nil {
		return nil, 0, ErrArchiveDisabled
	}
	return s.runs.List(ctx, filters)
}

// ===== HELPERS =====

const scoreCachePrefix = "scoring:scores:"

func runID(resp *ScoreResponse) string {
	if resp == nil {
		return ""
	}
	return resp.RunID
}

// batchAverage is the mean AverageScore of a batch, rounded like the scores.
func batchAverage(results []models.ScoreResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.AverageScore
	}
	return scoring.RoundOneDecimal(sum / float64(len(results)))
}

func scoreCacheKey(job scoringJob, areas []models.AreaSegment, points, passingScore float64) string {
	payload, _ := json.Marshal(struct {
		Students     []models.StudentAnswerSheet `json:"s"`
		AnswerKey    []string                    `json:"k"`
		Areas        []models.AreaSegment        `json:"a"`
		Points       float64                     `json:"p"`
		PassingScore float64                     `json:"ps"`
		WithStats    bool                        `json:"st"`
		SessionID    string                      `json:"sid"`
	}{job.students, job.answerKey, areas, points, passingScore, job.withStats, job.sessionID})

	sum := sha256.Sum256(payload)
	digest := hex.EncodeToString(sum[:])
	if job.sessionID != "" {
		return scoreCachePrefix + "session:" + job.sessionID + ":" + digest
	}
	return scoreCachePrefix + digest
}

func sessionCachePattern(sessionID string) string {
	return scoreCachePrefix + "session:" + sessionID + ":*"
}
