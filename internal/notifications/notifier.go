// Package notifications provides real-time engagement event delivery.
package notifications

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"

	"github.com/redis/go-redis/v9"
)

const (
	// BroadcastChannel carries engagement events visible to every reader.
	BroadcastChannel = "engagement:events"

	userChannelPrefix = "engagement:user:"
)

// UserChannel returns the Redis channel for a single user's notices, such as
// a pending comment getting approved.
func UserChannel(userID uint) string {
	return fmt.Sprintf("%s%d", userChannelPrefix, userID)
}

// Notifier provides helpers to publish engagement events into Redis channels.
// A nil Redis client makes every publish a no-op so single-node deployments
// without Redis still work.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends an event payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishBroadcast sends an event payload to all connected readers.
func (n *Notifier) PublishBroadcast(ctx context.Context, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, BroadcastChannel, payload).Err()
}

// StartPatternSubscriber subscribes to the engagement channels and calls
// onMessage for each incoming message. onMessage receives channel and payload.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPrefix+"*", BroadcastChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in PatternSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
