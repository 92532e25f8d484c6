package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"

	"github.com/redis/go-redis/v9"
)

const viewChannelPrefix = "views:profile:"

// Notifier publishes view-counter updates into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// ViewChannel derives the Redis channel name for a public page.
func ViewChannel(username string) string {
	return viewChannelPrefix + username
}

// ViewCountPayload is the JSON body broadcast to page viewers.
type ViewCountPayload struct {
	Type      string `json:"type"`
	Username  string `json:"username"`
	ViewCount int64  `json:"view_count"`
}

// PublishViewCount sends a fresh counter value to the page's channel.
func (n *Notifier) PublishViewCount(ctx context.Context, username string, count int64) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(ViewCountPayload{
		Type:      "view_count",
		Username:  username,
		ViewCount: count,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return n.rdb.Publish(ctx, ViewChannel(username), string(payload)).Err()
}

// StartViewSubscriber subscribes to pattern `views:profile:*` and calls
// onMessage for each incoming message. onMessage receives channel and payload.
func (n *Notifier) StartViewSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, viewChannelPrefix+"*")
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
							log.Printf("PANIC in ViewSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
