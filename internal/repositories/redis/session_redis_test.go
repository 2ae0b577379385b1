package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/SAP-F-2025/scoring-service/internal/models"
	"github.com/SAP-F-2025/scoring-service/internal/repositories"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient connects to TEST_REDIS_URL and skips the test when it is unset.
func newTestClient(t *testing.T) *goredis.Client {
	t.Helper()

	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opt, err := goredis.ParseURL(url)
	require.NoError(t, err)

	client := goredis.NewClient(opt)
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return client
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "scoring:session:abc", sessionKey("abc"))
}

func TestDecodeSession(t *testing.T) {
	session, err := decodeSession([]byte(`{"id":"x","file_name":"a.pdf","status":"uploading"}`))
	require.NoError(t, err)
	assert.Equal(t, "x", session.ID)
	assert.NotNil(t, session.Pages)

	_, err = decodeSession([]byte(`{`))
	assert.Error(t, err)
}

func TestSessionRedis_Lifecycle(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	repo := NewSessionRedis(client, time.Minute)

	session, err := repo.Create(ctx, "a.pdf", 2)
	require.NoError(t, err)
	t.Cleanup(func() { client.Del(ctx, sessionKey(session.ID)) })

	require.NoError(t, repo.AddStudent(ctx, session.ID, models.StudentAnswerSheet{StudentID: "s1", PageNumber: 1}))
	require.NoError(t, repo.AddStudent(ctx, session.ID, models.StudentAnswerSheet{StudentID: "s2", PageNumber: 1}))

	status := models.SessionCompleted
	updated, err := repo.Update(ctx, session.ID, models.SessionUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, updated.Status)
	require.Len(t, updated.Pages, 1)
	assert.Len(t, updated.Pages[0].Students, 2)

	ttl, err := client.TTL(ctx, sessionKey(session.ID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrSessionNotFound)
	assert.NoError(t, repo.AddStudent(ctx, "missing", models.StudentAnswerSheet{StudentID: "x"}))
}
