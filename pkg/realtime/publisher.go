// Package realtime delivers live marketplace events over Redis pub/sub.
// Delivery is fire-and-forget: a dropped event is never a reason to fail
// the business operation that produced it.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event names published on request and driver channels.
const (
	EventNewOffer      = "new-offer"
	EventOfferAccepted = "offer-accepted"
	EventOfferPaid     = "offer-paid"
)

// Publisher pushes named events to named channels.
type Publisher interface {
	Publish(ctx context.Context, channel, event string, payload any) error
}

// RequestChannel is where offer-side events for one request are published.
func RequestChannel(requestID string) string {
	return "request-" + requestID
}

// DriverChannel is where acceptance and payment events for one driver
// are published.
func DriverChannel(driverID string) string {
	return "driver-" + driverID
}

type envelope struct {
	Event string    `json:"event"`
	Data  any       `json:"data"`
	At    time.Time `json:"at"`
}

// RedisPublisher implements Publisher on top of Redis pub/sub.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher connects a publisher to the given Redis instance.
func NewRedisPublisher(addr, password string) *RedisPublisher {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &RedisPublisher{client: c}
}

// Publish marshals the payload into an event envelope and publishes it.
func (p *RedisPublisher) Publish(ctx context.Context, channel, event string, payload any) error {
	body, err := json.Marshal(envelope{Event: event, Data: payload, At: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("realtime: marshal %s: %w", event, err)
	}
	if err := p.client.Publish(ctx, channel, body).Err(); err != nil {
		return fmt.Errorf("realtime: publish %s to %s: %w", event, channel, err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// LogOnly is a Publisher that just logs events; useful when Redis is not
// configured (local development) and in tests.
type LogOnly struct {
	Logger *slog.Logger
}

func (l *LogOnly) Publish(_ context.Context, channel, event string, payload any) error {
	l.Logger.Debug("realtime event (no broker)", "channel", channel, "event", event, "payload", payload)
	return nil
}
