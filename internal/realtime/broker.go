package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"canvasSync/internal/errs"
	"canvasSync/internal/models/broadcast"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Broker is the ephemeral broadcast channel collaborator: best-effort fan-out
// pub/sub over Redis, scoped per canvas. Every mount subscribes its own
// uniquely named channel instance; instances of the same canvas share one
// underlying Redis wire channel, so the instance name only scopes the
// subscription lifecycle.
type Broker struct {
	mu    sync.Mutex
	ctx   context.Context
	redis *redis.Client
	subs  map[string]*subscription
}

type subscription struct {
	pubsub *redis.PubSub
}

func NewBroker(redis *redis.Client, ctx context.Context) *Broker {
	return &Broker{
		ctx:   ctx,
		redis: redis,
		subs:  make(map[string]*subscription),
	}
}

// NewChannelName builds a fresh channel instance name for one mount. The
// timestamp and random suffix keep it distinct from a stale instance of a
// previous mount of the same canvas in the same process.
func NewChannelName(canvasID uint) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("canvas:%d:%d:%s", canvasID, time.Now().UnixMilli(), suffix)
}

// wireChannel maps a channel instance name to the shared per-canvas Redis
// channel all instances publish and subscribe on.
func wireChannel(channelName string) (string, error) {
	parts := strings.Split(channelName, ":")
	if len(parts) < 2 || parts[0] != "canvas" {
		return "", errs.ErrInvalidCanvasId
	}
	if _, err := strconv.ParseUint(parts[1], 10, 64); err != nil {
		return "", errs.ErrInvalidCanvasId
	}
	return "canvas:events:" + parts[1], nil
}

// Subscribe attaches a topic-keyed dispatch table to a channel instance.
// Payloads for topics without a handler are dropped; malformed envelopes are
// dropped silently as well.
func (b *Broker) Subscribe(channelName string, handlers map[string]func([]byte)) error {
	wire, err := wireChannel(channelName)
	if err != nil {
		return err
	}

	b.mu.Lock()
	if _, ok := b.subs[channelName]; ok {
		b.mu.Unlock()
		return errs.ErrChannelAlreadyExists
	}
	b.mu.Unlock()

	pubsub := b.redis.Subscribe(b.ctx, wire)
	if _, err := pubsub.Receive(b.ctx); err != nil {
		_ = pubsub.Close()
		return err
	}

	b.mu.Lock()
	if _, ok := b.subs[channelName]; ok {
		// Lost a race with a concurrent subscribe of the same name; keep the
		// winner's PubSub and discard ours.
		b.mu.Unlock()
		_ = pubsub.Close()
		return errs.ErrChannelAlreadyExists
	}
	b.subs[channelName] = &subscription{pubsub: pubsub}
	b.mu.Unlock()

	go b.dispatch(pubsub, handlers)
	return nil
}

func (b *Broker) dispatch(pubsub *redis.PubSub, handlers map[string]func([]byte)) {
	for msg := range pubsub.Channel() {
		var envelope broadcast.Envelope
		if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
			continue
		}
		handler, ok := handlers[envelope.Topic]
		if !ok {
			continue
		}
		handler(envelope.Payload)
	}
}

// Send publishes a payload on the channel's topic. Delivery is best-effort:
// no acknowledgment, no ordering across clients.
func (b *Broker) Send(channelName string, topic string, payload any) error {
	wire, err := wireChannel(channelName)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	envelope, err := json.Marshal(broadcast.Envelope{
		Topic:   topic,
		Payload: raw,
	})
	if err != nil {
		return err
	}
	return b.redis.Publish(b.ctx, wire, envelope).Err()
}

// Unsubscribe fully tears down a channel instance. Unsubscribing an unknown
// instance is a no-op so remount teardown stays idempotent.
func (b *Broker) Unsubscribe(channelName string) error {
	b.mu.Lock()
	sub, ok := b.subs[channelName]
	if ok {
		delete(b.subs, channelName)
	}
	b.mu.Unlock()
	if !ok {
		return nil
	}
	if err := sub.pubsub.Close(); err != nil {
		log.Printf("Error closing channel %v: %v", channelName, err)
		return err
	}
	return nil
}
