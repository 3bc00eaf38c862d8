package notifier_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vreid/fairway/internal/pkg/notifier"
	"github.com/vreid/fairway/internal/pkg/wager"
)

type recordingPublisher struct {
	published []wager.Transition
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, t wager.Transition) error {
	p.published = append(p.published, t)

	return p.err
}

func transition(id string, to wager.Status) wager.Transition {
	return wager.Transition{
		WagerID:      id,
		TournamentID: "t-1",
		From:         wager.StatusActive,
		To:           to,
		WinnerID:     "alice",
		At:           time.Date(2026, 6, 14, 12, 0, 0, 0, time.UTC),
	}
}

func TestLogOnly(t *testing.T) {
	t.Parallel()

	logger, hook := test.NewNullLogger()

	source := make(chan wager.Transition, 2)
	service := &notifier.NotifierService{TransitionSource: source, Logger: logger}

	service.Start()

	source <- transition("w-1", wager.StatusCompleted)
	source <- transition("w-2", wager.StatusPushed)

	require.NoError(t, service.Shutdown())

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, logrus.InfoLevel, entries[0].Level)
	assert.Equal(t, "w-1", entries[0].Data["wager"])
	assert.Equal(t, "alice", entries[0].Data["winner"])
	assert.Equal(t, wager.StatusPushed, entries[1].Data["to"])
}

func TestPublish(t *testing.T) {
	t.Parallel()

	logger, hook := test.NewNullLogger()
	publisher := &recordingPublisher{}

	service := &notifier.NotifierService{Publisher: publisher, Logger: logger}
	service.Handle(context.Background(), transition("w-1", wager.StatusCompleted))

	require.Len(t, publisher.published, 1)
	assert.Equal(t, "w-1", publisher.published[0].WagerID)
	assert.Len(t, hook.AllEntries(), 1)

	publisher.err = errors.New("stream unavailable")
	service.Handle(context.Background(), transition("w-2", wager.StatusCompleted))

	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "failed to publish wager transition", hook.LastEntry().Message)
}

func TestStreamPublisherUnreachable(t *testing.T) {
	t.Parallel()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})

	t.Cleanup(func() {
		_ = client.Close()
	})

	publisher := notifier.NewStreamPublisher(client, notifier.TransitionsStream)

	err := publisher.Publish(context.Background(), transition("w-1", wager.StatusCompleted))
	require.Error(t, err)
}
