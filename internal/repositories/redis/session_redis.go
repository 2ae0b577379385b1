// Package redis stores sessions as JSON documents in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/scoring-service/internal/models"
	"github.com/SAP-F-2025/scoring-service/internal/repositories"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "scoring:session:"
	maxRetries = 5
)

type SessionRedis struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewSessionRedis stores sessions with the given expiry; ttl <= 0 keeps them
// until deleted.
func NewSessionRedis(client *goredis.Client, ttl time.Duration) *SessionRedis {
	return &SessionRedis{client: client, ttl: ttl}
}

var _ repositories.SessionRepository = (*SessionRedis)(nil)

func sessionKey(id string) string {
	return keyPrefix + id
}

func (r *SessionRedis) Create(ctx context.Context, fileName string, totalPages int) (*models.ProcessingSession, error) {
	session := &models.ProcessingSession{
		ID:         uuid.NewString(),
		FileName:   fileName,
		TotalPages: totalPages,
		Status:     models.SessionUploading,
		Pages:      []models.ProcessedPage{},
		CreatedAt:  time.Now().UTC(),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(session.ID), data, r.ttl).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return session, nil
}

func (r *SessionRedis) Get(ctx context.Context, id string) (*models.ProcessingSession, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, repositories.ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	return decodeSession(data)
}

func (r *SessionRedis) Update(ctx context.Context, id string, update models.SessionUpdate) (*models.ProcessingSession, error) {
	var updated *models.ProcessingSession
	err := r.modify(ctx, id, func(session *models.ProcessingSession) error {
		update.Apply(session)
		updated = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *SessionRedis) AddStudent(ctx context.Context, sessionID string, student models.StudentAnswerSheet) error {
	err := r.modify(ctx, sessionID, func(session *models.ProcessingSession) error {
		session.AddStudent(student)
		return nil
	})
	if errors.Is(err, repositories.ErrSessionNotFound) {
		return nil
	}
	return err
}

// modify applies fn to the stored session under an optimistic WATCH
// transaction, retrying when another writer touched the key first.
func (r *SessionRedis) modify(ctx context.Context, id string, fn func(*models.ProcessingSession) error) error {
	key := sessionKey(id)

	txf := func(tx *goredis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				return repositories.ErrSessionNotFound
			}
			return err
		}

		session, err := decodeSession(data)
		if err != nil {
			return err
		}
		if err := fn(session); err != nil {
			return err
		}

		encoded, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, goredis.KeepTTL)
			return nil
		})
		return err
	}

	for i := 0; i < maxRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update session %s: too many concurrent writers", id)
}

func decodeSession(data []byte) (*models.ProcessingSession, error) {
	var session models.ProcessingSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if session.Pages == nil {
		session.Pages = []models.ProcessedPage{}
	}
	return &session, nil
}
