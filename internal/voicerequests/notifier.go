package voicerequests

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Channel carries request change events between API instances and any
// subscribed officer dashboard.
const Channel = "gavalink:voice_requests"

// RedisNotifier publishes change events over Redis pub/sub.
type RedisNotifier struct {
	rdb *redis.Client
}

func NewRedisNotifier(rdb *redis.Client) *RedisNotifier {
	return &RedisNotifier{rdb: rdb}
}

func (n *RedisNotifier) Publish(ctx context.Context, e ChangeEvent) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, Channel, payload).Err()
}

// Watch subscribes to the change channel and delivers events until ctx is
// cancelled. Malformed payloads are skipped.
func (n *RedisNotifier) Watch(ctx context.Context) (<-chan ChangeEvent, error) {
	sub := n.rdb.Subscribe(ctx, Channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan ChangeEvent)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var e ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					continue
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// MemoryNotifier records published events. Useful for tests.
type MemoryNotifier struct {
	mu     sync.Mutex
	events []ChangeEvent
}

func (n *MemoryNotifier) Publish(ctx context.Context, e ChangeEvent) error {
	_ = ctx
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return nil
}

func (n *MemoryNotifier) Events() []ChangeEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]ChangeEvent, len(n.events))
	copy(out, n.events)
	return out
}
