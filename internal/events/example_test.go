package events_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/SAP-F-2025/scoring-service/internal/events"
)

// ExampleMockEventPublisher shows the publisher used for development and tests.
func ExampleMockEventPublisher() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := events.NewMockEventPublisher(logger)
	defer publisher.Close()

	event := events.NewEvent(events.EventScoresComputed, events.ScoresComputedEvent{
		Mode:          "area",
		StudentCount:  32,
		QuestionCount: 180,
		AverageScore:  6.4,
	})
	if err := publisher.Publish(context.Background(), event); err != nil {
		fmt.Println("publish failed:", err)
		return
	}

	for _, e := range publisher.GetPublishedEvents() {
		data := e.Data.(events.ScoresComputedEvent)
		fmt.Println(e.Type, e.Source, data.StudentCount)
	}
	// Output: scores.computed scoring-service 32
}

// ExampleToMessage shows the metadata consumers can route on.
func ExampleToMessage() {
	event := events.NewEvent(events.EventSessionCompleted, events.SessionCompletedEvent{
		SessionID:    "5f0c",
		StudentCount: 3,
	})

	msg, err := events.ToMessage(event)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(msg.UUID == event.ID, msg.Metadata.Get("event_type"))
	// Output: true session.completed
}
