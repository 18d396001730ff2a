package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-session/internal/session"
)

type EventRepository interface {
	Publish(ctx context.Context, n session.Notification) error
}

type redisEvents struct {
	client *redis.Client
	prefix string
}

// NewEventRepository publishes notifications on one Redis channel per
// session, named by SessionChannel.
func NewEventRepository(client *redis.Client, prefix string) EventRepository {
	return &redisEvents{
		client: client,
		prefix: prefix,
	}
}

func (that *redisEvents) Publish(ctx context.Context, n session.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("could not marshal notification: %w", err)
	}

	if err = that.client.Publish(ctx, SessionChannel(that.prefix, n.SessionID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}

func SessionChannel(prefix, sessionID string) string {
	return prefix + ":session:" + sessionID
}
