package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"timed-quiz-service/internal/domain"
)

// AttemptCompletedChannel carries one JSON AttemptRecord per completed attempt.
const AttemptCompletedChannel = "quiz.attempt.completed"

// Publisher announces completed attempts over Redis pub/sub.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) PublishAttemptCompleted(ctx context.Context, rec domain.AttemptRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	if err := p.client.Publish(ctx, AttemptCompletedChannel, data).Err(); err != nil {
		return fmt.Errorf("publish attempt %s: %w", rec.ID, err)
	}
	return nil
}
