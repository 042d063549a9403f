package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// EventChange tells subscribers that an event row changed. It never carries
// ticket counts: readers fetch the event to learn them.
type EventChange struct {
	EventID int64     `json:"event_id"`
	Reason  string    `json:"reason"`
	At      time.Time `json:"at"`
}

// EventsPubSub fans event changes out to every process subscribed to the
// events channel.
type EventsPubSub struct {
	rdb     *redis.Client
	channel string
	now     func() time.Time
}

func NewEventsPubSub(rdb *redis.Client) *EventsPubSub {
	return &EventsPubSub{
		rdb:     rdb,
		channel: ChannelEventsChanged(),
		now:     time.Now,
	}
}

func (p *EventsPubSub) PublishEventChanged(ctx context.Context, eventID int64, reason string) error {
	const op = "repository.redis.EventsPubSub.PublishEventChanged"

	b, err := json.Marshal(EventChange{EventID: eventID, Reason: reason, At: p.now().UTC()})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := p.rdb.Publish(ctx, p.channel, b).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Subscribe waits for Redis to confirm the subscription, then delivers
// changes on the returned channel until ctx is cancelled or the connection
// drops. The channel is closed in both cases.
func (p *EventsPubSub) Subscribe(ctx context.Context) (<-chan EventChange, error) {
	const op = "repository.redis.EventsPubSub.Subscribe"

	sub := p.rdb.Subscribe(ctx, p.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make(chan EventChange, 16)

	go func() {
		defer close(out)
		defer sub.Close()

		in := sub.Channel(redis.WithChannelSize(256))
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-in:
				if !ok {
					return
				}
				change, ok := decodeEventChange(m.Payload)
				if !ok {
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func decodeEventChange(payload string) (EventChange, bool) {
	var change EventChange
	if err := json.Unmarshal([]byte(payload), &change); err != nil || change.EventID <= 0 {
		return EventChange{}, false
	}
	return change, true
}
