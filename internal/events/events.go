package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/swimpace/backend/internal/logger"
	"github.com/swimpace/backend/internal/session"
)

const (
	// Channel is the Redis pub/sub channel settings changes travel on.
	Channel = "swimpace_events"

	TypeSettingsChanged = "settings_changed"

	publishTimeout = 2 * time.Second
	queueSize      = 32
)

// Event is the envelope published on Channel. Origin identifies the process
// that produced it so a subscriber can skip its own events.
type Event struct {
	Type     string           `json:"type"`
	Origin   string           `json:"origin"`
	At       time.Time        `json:"at"`
	Settings session.Settings `json:"settings"`
}

func Encode(e Event) ([]byte, error) {
	return json.Marshal(e)
}

func Decode(payload []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(payload, &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if e.Type == "" {
		return Event{}, fmt.Errorf("decode event: missing type")
	}
	return e, nil
}

// Publisher sends settings changes to Redis. PublishSettings never blocks;
// Run performs the actual PUBLISH calls.
type Publisher struct {
	rdb     *redis.Client
	channel string
	origin  string
	now     func() time.Time
	queue   chan Event
	log     *zap.Logger
}

func NewPublisher(rdb *redis.Client, origin string) *Publisher {
	return &Publisher{
		rdb:     rdb,
		channel: Channel,
		origin:  origin,
		now:     time.Now,
		queue:   make(chan Event, queueSize),
		log:     logger.Named("events"),
	}
}

func (p *Publisher) PublishSettings(s session.Settings) {
	e := Event{Type: TypeSettingsChanged, Origin: p.origin, At: p.now().UTC(), Settings: s}
	select {
	case p.queue <- e:
	default:
		p.log.Warn("event queue full, dropping settings event")
	}
}

// Run drains the queue until ctx is cancelled.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-p.queue:
			p.publish(ctx, e)
		}
	}
}

func (p *Publisher) publish(ctx context.Context, e Event) {
	data, err := Encode(e)
	if err != nil {
		p.log.Error("encode event", logger.ErrorField(err))
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.rdb.Publish(ctx, p.channel, data).Err(); err != nil {
		p.log.Warn("publish event", zap.String("channel", p.channel), logger.ErrorField(err))
	}
}

// Subscribe delivers events from other processes to fn until ctx is
// cancelled. Malformed payloads and events from origin are skipped.
func Subscribe(ctx context.Context, rdb *redis.Client, origin string, fn func(Event)) error {
	log := logger.Named("events")
	pubsub := rdb.Subscribe(ctx, Channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", Channel, err)
	}
	log.Info("subscriber started", zap.String("channel", Channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			e, err := Decode([]byte(msg.Payload))
			if err != nil {
				log.Warn("invalid event payload", logger.ErrorField(err))
				continue
			}
			if e.Origin == origin {
				continue
			}
			fn(e)
		}
	}
}

// Fanout forwards settings to every publisher in order.
type Fanout []session.Publisher

func (f Fanout) PublishSettings(s session.Settings) {
	for _, p := range f {
		p.PublishSettings(s)
	}
}
