package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do/v2"
	"github.com/sirupsen/logrus"
	"github.com/vreid/fairway/internal/pkg/wager"
)

const (
	TransitionsStream = "wagers.transitions"

	publishTimeout = 5 * time.Second
)

type Publisher interface {
	Publish(ctx context.Context, t wager.Transition) error
}

// StreamPublisher appends transitions to a Redis stream.
type StreamPublisher struct {
	client *redis.Client
	stream string
}

func NewStreamPublisher(client *redis.Client, stream string) *StreamPublisher {
	return &StreamPublisher{
		client: client,
		stream: stream,
	}
}

func (p *StreamPublisher) Publish(ctx context.Context, t wager.Transition) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode transition: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"data":       string(data),
			"wager_id":   t.WagerID,
			"tournament": t.TournamentID,
			"status":     string(t.To),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish transition: %w", err)
	}

	return nil
}

// NotifierService drains wager transitions, logs each one and forwards it to
// the publisher if one is configured.
type NotifierService struct {
	TransitionSource <-chan wager.Transition

	Publisher Publisher
	Logger    *logrus.Logger

	client *redis.Client
	done   chan struct{}
	wg     sync.WaitGroup
}

func NewNotifierService(i do.Injector) (*NotifierService, error) {
	transitionSource := do.MustInvokeNamed[<-chan wager.Transition](i, "transition-source")
	redisURL := do.MustInvokeNamed[string](i, "redis-url")
	logger := do.MustInvoke[*logrus.Logger](i)

	result := &NotifierService{
		TransitionSource: transitionSource,

		Logger: logger,
	}

	if redisURL == "" {
		return result, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	result.client = redis.NewClient(opts)
	result.Publisher = NewStreamPublisher(result.client, TransitionsStream)

	return result, nil
}

func (s *NotifierService) Start() {
	s.done = make(chan struct{})

	s.wg.Add(1)

	go s.processTransitions()
}

func (s *NotifierService) processTransitions() {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			s.drain()

			return
		case t, ok := <-s.TransitionSource:
			if !ok {
				return
			}

			s.Handle(context.Background(), t)
		}
	}
}

// drain handles whatever is still buffered without waiting for more.
func (s *NotifierService) drain() {
	for {
		select {
		case t, ok := <-s.TransitionSource:
			if !ok {
				return
			}

			s.Handle(context.Background(), t)
		default:
			return
		}
	}
}

func (s *NotifierService) Handle(ctx context.Context, t wager.Transition) {
	entry := s.Logger.WithFields(logrus.Fields{
		"wager":      t.WagerID,
		"tournament": t.TournamentID,
		"from":       t.From,
		"to":         t.To,
	})

	if t.WinnerID != "" {
		entry = entry.WithField("winner", t.WinnerID)
	}

	if t.CounterID != "" {
		entry = entry.WithField("counter", t.CounterID)
	}

	entry.Info("wager transition")

	if s.Publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := s.Publisher.Publish(ctx, t)
	if err != nil {
		entry.WithError(err).Error("failed to publish wager transition")
	}
}

// Shutdown handles the transitions still buffered and closes the Redis
// client.
func (s *NotifierService) Shutdown() error {
	if s.done != nil {
		close(s.done)
		s.wg.Wait()
	}

	if s.client != nil {
		//nolint:wrapcheck
		return s.client.Close()
	}

	return nil
}
