// Package memory keeps sessions in a process-local map.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/SAP-F-2025/scoring-service/internal/models"
	"github.com/SAP-F-2025/scoring-service/internal/repositories"
	"github.com/google/uuid"
)

type SessionMemory struct {
	mu       sync.RWMutex
	sessions map[string]*models.ProcessingSession
	now      func() time.Time
}

func NewSessionMemory() *SessionMemory {
	return &SessionMemory{
		sessions: make(map[string]*models.ProcessingSession),
		now:      time.Now,
	}
}

var _ repositories.SessionRepository = (*SessionMemory)(nil)

func (m *SessionMemory) Create(ctx context.Context, fileName string, totalPages int) (*models.ProcessingSession, error) {
	session := &models.ProcessingSession{
		ID:         uuid.NewString(),
		FileName:   fileName,
		TotalPages: totalPages,
		Status:     models.SessionUploading,
		Pages:      []models.ProcessedPage{},
		CreatedAt:  m.now().UTC(),
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	return session.Clone(), nil
}

func (m *SessionMemory) Update(ctx context.Context, id string, update models.SessionUpdate) (*models.ProcessingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	updated := session.Clone()
	update.Apply(updated)
	m.sessions[id] = updated

	return updated.Clone(), nil
}

func (m *SessionMemory) Get(ctx context.Context, id string) (*models.ProcessingSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (m *SessionMemory) AddStudent(ctx context.Context, sessionID string, student models.StudentAnswerSheet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return nil
	}
	session.AddStudent(student)
	return nil
}
