package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/scoring-service/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrRunNotFound     = errors.New("score run not found")
)

// SessionRepository keeps processing sessions for the lifetime of the
// process (memory) or for a TTL (redis).
type SessionRepository interface {
	Create(ctx context.Context, fileName string, totalPages int) (*models.ProcessingSession, error)
	// Update merges the non-nil fields of update; ErrSessionNotFound when the id is unknown.
	Update(ctx context.Context, id string, update models.SessionUpdate) (*models.ProcessingSession, error)
	Get(ctx context.Context, id string) (*models.ProcessingSession, error)
	// AddStudent files the student under its page. Unknown sessions are ignored.
	AddStudent(ctx context.Context, sessionID string, student models.StudentAnswerSheet) error
}

// ScoreRunRepository archives scoring batches.
type ScoreRunRepository interface {
	Create(ctx context.Context, run *models.ScoreRun) error
	GetByID(ctx context.Context, id string) (*models.ScoreRun, error)
	List(ctx context.Context, filters ScoreRunFilters) ([]*models.ScoreRun, int64, error)
}

type ScoreRunFilters struct {
	SessionID *string             `json:"session_id"`
	Mode      *models.ScoringMode `json:"mode"`
	DateFrom  *time.Time          `json:"date_from"`
	DateTo    *time.Time          `json:"date_to"`
	Limit     int                 `json:"limit"`
	Offset    int                 `json:"offset"`
	SortOrder string              `json:"sort_order"` // "asc", "desc"
}
