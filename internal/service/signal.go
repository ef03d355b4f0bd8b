package service

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/queerlil/handles/internal/domain"
	"github.com/queerlil/handles/internal/usecase"
)

const DefaultReplyChannel = "handles:replies"

// SignalService fans reply notifications out over redis pub/sub.
type SignalService struct {
	rdb     *redis.Client
	channel string
}

func NewSignalService(redisClient *redis.Client, channel string) *SignalService {
	if channel == "" {
		channel = DefaultReplyChannel
	}
	return &SignalService{
		rdb:     redisClient,
		channel: channel,
	}
}

func (s *SignalService) PublishReply(ctx context.Context, event domain.ReplyEvent) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, s.channel, jsonstr).Err()
	if err != nil {
		return errors.Wrap(err, "failed to publish reply signal")
	}

	return nil
}

// Subscribe decodes reply events from channel until ctx is done.
func (s *SignalService) Subscribe(ctx context.Context, out chan<- domain.ReplyEvent) error {
	pubsub := s.rdb.Subscribe(ctx, s.channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event domain.ReplyEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			out <- event
		}
	}
}

var _ usecase.SignalPublisher = (*SignalService)(nil)
