package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kinds of events the scoring service emits
type EventType string

const (
	EventScoresComputed   EventType = "scores.computed"
	EventSessionCreated   EventType = "session.created"
	EventSessionCompleted EventType = "session.completed"
)

const (
	eventSource  = "scoring-service"
	eventVersion = "1.0"
)

// Event is the envelope for every published event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewEvent wraps data in an envelope with a fresh id and timestamp.
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

type ScoresComputedEvent struct {
	RunID            string  `json:"run_id,omitempty"`
	SessionID        string  `json:"session_id,omitempty"`
	Mode             string  `json:"mode"`
	StudentCount     int     `json:"student_count"`
	QuestionCount    int     `json:"question_count"`
	PointsPerCorrect float64 `json:"points_per_correct"`
	AverageScore     float64 `json:"average_score"`
}

type SessionCreatedEvent struct {
	SessionID  string `json:"session_id"`
	FileName   string `json:"file_name"`
	TotalPages int    `json:"total_pages"`
}

type SessionCompletedEvent struct {
	SessionID    string `json:"session_id"`
	StudentCount int    `json:"student_count"`
}
