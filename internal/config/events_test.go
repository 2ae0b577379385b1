package config

import (
	"io"
	"log/slog"
	"testing"

	"github.com/SAP-F-2025/scoring-service/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEventPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	disabled := EventConfig{Enabled: false}
	publisher, err := disabled.CreateEventPublisher(logger)
	require.NoError(t, err)
	assert.Nil(t, publisher)

	mockCfg := EventConfig{Enabled: true, Publisher: "MOCK"}
	publisher, err = mockCfg.CreateEventPublisher(logger)
	require.NoError(t, err)
	assert.IsType(t, &events.MockEventPublisher{}, publisher)

	unknown := EventConfig{Enabled: true, Publisher: "nats"}
	publisher, err = unknown.CreateEventPublisher(logger)
	require.NoError(t, err)
	assert.IsType(t, &events.MockEventPublisher{}, publisher)
}

func TestGetKafkaBrokers(t *testing.T) {
	cfg := EventConfig{KafkaBrokers: "kafka-1:9092, kafka-2:9092,,"}
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.GetKafkaBrokers())
}
