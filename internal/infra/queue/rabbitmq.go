package mq

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/tastewire/tastewire/internal/config"
)

// DialFunc opens a broker connection; the container injects one so TLS and
// reconnection policy live in a single place.
type DialFunc func() (*amqp.Connection, error)

// NewDialFunc builds a DialFunc from configuration, upgrading to TLS when
// requested or when the URL already uses the amqps scheme.
func NewDialFunc(cfg *config.Config) DialFunc {
	return func() (*amqp.Connection, error) {
		url := cfg.RabbitMQ.URL
		useTLS := cfg.RabbitMQ.EnableTLS || strings.HasPrefix(url, "amqps://")
		if useTLS {
			if strings.HasPrefix(url, "amqp://") {
				url = strings.Replace(url, "amqp://", "amqps://", 1)
			}
			return amqp.DialTLS(url, &tls.Config{MinVersion: tls.VersionTLS12})
		}
		return amqp.Dial(url)
	}
}

// tableCarrier adapts amqp.Table to a TextMapCarrier so trace context rides
// along with published messages.
type tableCarrier struct {
	table amqp.Table
}

func (c tableCarrier) Get(key string) string {
	if val, ok := c.table[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
		return fmt.Sprintf("%v", val)
	}
	return ""
}

func (c tableCarrier) Set(key, value string) {
	c.table[key] = value
}

func (c tableCarrier) Keys() []string {
	keys := make([]string, 0, len(c.table))
	for k := range c.table {
		keys = append(keys, k)
	}
	return keys
}

// Publisher emits JSON events to the insights exchange. Publishing is
// fire-and-forget from the orchestrators' point of view: failures are logged
// by the caller, never surfaced to the API client.
type Publisher struct {
	ch  *amqp.Channel
	log *zap.Logger
	cfg *config.Config
}

func NewPublisher(conn *amqp.Connection, log *zap.Logger, cfg *config.Config) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.ExchangeDeclare(cfg.RabbitMQ.ExchangeName, "topic", true, false, false, false, nil); err != nil {
		return nil, err
	}
	return &Publisher{ch: ch, log: log, cfg: cfg}, nil
}

func (p *Publisher) Close() error { return p.ch.Close() }

func (p *Publisher) PublishJSON(ctx context.Context, exchangeName, routingKey string, body any) error {
	b, err := sonic.Marshal(body)
	if err != nil {
		return err
	}

	tracer := otel.Tracer(p.cfg.App.Name)
	ctx, span := tracer.Start(ctx, "rabbitmq.publish",
		trace.WithAttributes(
			attribute.String("messaging.system", "rabbitmq"),
			attribute.String("messaging.destination", exchangeName),
			attribute.String("messaging.rabbitmq.routing_key", routingKey),
		))
	defer span.End()

	headers := make(amqp.Table)
	otel.GetTextMapPropagator().Inject(ctx, tableCarrier{table: headers})

	err = p.ch.PublishWithContext(ctx, exchangeName, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         b,
		Headers:      headers,
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	span.SetAttributes(attribute.Int("messaging.message.body.size", len(b)))
	return nil
}
