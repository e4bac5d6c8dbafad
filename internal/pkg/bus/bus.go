// Package bus wraps Watermill's NATS JetStream binding into the three
// topics the spec calls for: user-messages (competing consumer),
// token-streams (per-session subject, serialised per sessionId), and
// message-completed (two independent durable subscriptions, one per
// writer fleet).
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tkubica12/scalable-ai-chat/internal/config"
)

// TokenStreamSubject returns the per-session subject a Generator publishes
// token fragments to and an Egress instance opens its session receiver
// on. NATS delivers messages on one subject to a single subscriber in
// publish order, which is what stands in for the broker's "session"
// feature here.
func TokenStreamSubject(cfg config.BusConfig, sessionID string) string {
	return fmt.Sprintf("%s.%s", cfg.TokenStreamsSubj, sessionID)
}

// Publisher is a thin, JSON-aware wrapper around a Watermill NATS
// JetStream publisher.
type Publisher struct {
	pub message.Publisher
}

// NewPublisher dials NATS and returns a Publisher shared by every topic
// this component publishes to.
func NewPublisher(cfg config.BusConfig, logger zerolog.Logger) (*Publisher, error) {
	wmLogger := newWatermillLogger(logger)

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	}

	wmCfg := wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			TrackMsgId:    true,
		},
	}

	pub, err := wmNats.NewPublisher(wmCfg, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create nats publisher: %w", err)
	}

	return &Publisher{pub: pub}, nil
}

// PublishJSON marshals v and publishes it to subject. key (e.g. a
// sessionId) travels as the message's "partition_key" metadata; every
// message gets its own UUID, so the broker's message-id deduplication
// never merges two distinct messages that share a key.
func (p *Publisher) PublishJSON(_ context.Context, subject, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("partition_key", key)
	return p.pub.Publish(subject, msg)
}

// Close shuts the underlying connection down.
func (p *Publisher) Close() error {
	return p.pub.Close()
}

// Subscriber is a thin wrapper around a Watermill NATS JetStream
// subscriber bound to either a queue group (competing consumer) or a
// durable name (independent fan-out subscription).
type Subscriber struct {
	sub message.Subscriber
}

// SubscriberOptions configures one Subscriber. QueueGroup and Durable are
// mutually reinforcing: a queue group without a durable name still load
// balances but does not survive a full restart of every consumer;
// Generator instances only need the queue group, while History/Memory
// Writer instances need a durable name unique to their fleet so the two
// writers do not steal each other's completion events.
type SubscriberOptions struct {
	QueueGroup     string
	DurableName    string
	AckWaitTimeout time.Duration
	MaxDeliver     int
	MaxAckPending  int
}

// NewSubscriber dials NATS and returns a Subscriber configured per opts.
func NewSubscriber(cfg config.BusConfig, opts SubscriberOptions, logger zerolog.Logger) (*Subscriber, error) {
	wmLogger := newWatermillLogger(logger)

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
	}

	subOpts := []natsgo.SubOpt{
		natsgo.MaxDeliver(opts.MaxDeliver),
		natsgo.MaxAckPending(opts.MaxAckPending),
		natsgo.AckWait(opts.AckWaitTimeout),
	}

	wmCfg := wmNats.SubscriberConfig{
		URL:              cfg.URL,
		QueueGroupPrefix: opts.QueueGroup,
		SubscribersCount: 1,
		AckWaitTimeout:   opts.AckWaitTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:         false,
			AutoProvision:    true,
			AckAsync:         false,
			SubscribeOptions: subOpts,
			DurablePrefix:    opts.DurableName,
		},
	}

	sub, err := wmNats.NewSubscriber(wmCfg, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create nats subscriber: %w", err)
	}

	return &Subscriber{sub: sub}, nil
}

// Subscribe returns the raw Watermill message channel for subject.
func (s *Subscriber) Subscribe(ctx context.Context, subject string) (<-chan *message.Message, error) {
	return s.sub.Subscribe(ctx, subject)
}

// Close shuts the underlying connection down.
func (s *Subscriber) Close() error {
	return s.sub.Close()
}

// DecodeJSON unmarshals a Watermill message payload into v.
func DecodeJSON(msg *message.Message, v any) error {
	return json.Unmarshal(msg.Payload, v)
}

func newWatermillLogger(logger zerolog.Logger) watermill.LoggerAdapter {
	return watermillZerologAdapter{logger: logger}
}
