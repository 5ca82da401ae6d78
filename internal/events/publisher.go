// Package events publishes notification events to the message broker consumed by the mailer.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/richat-partners/staffing-api/internal/config"
	"github.com/richat-partners/staffing-api/internal/domain"
	"go.uber.org/zap"
)

// NotificationEvent is the message emitted for every stored notification
type NotificationEvent struct {
	NotificationID uint                    `json:"notification_id"`
	ConsultantID   uint                    `json:"consultant_id"`
	Kind           domain.NotificationKind `json:"kind"`
	Priority       domain.Priority         `json:"priority"`
	Title          string                  `json:"title"`
	Body           string                  `json:"body"`
	TenderID       *uint                   `json:"tender_id,omitempty"`
	MatchResultID  *uint                   `json:"match_result_id,omitempty"`
	MissionID      *uint                   `json:"mission_id,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
}

// EventFromNotification builds the event describing n
func EventFromNotification(n *domain.Notification) NotificationEvent {
	return NotificationEvent{
		NotificationID: n.ID,
		ConsultantID:   n.ConsultantID,
		Kind:           n.Kind,
		Priority:       n.Priority,
		Title:          n.Title,
		Body:           n.Body,
		TenderID:       n.TenderID,
		MatchResultID:  n.MatchResultID,
		MissionID:      n.MissionID,
		CreatedAt:      n.CreatedAt,
	}
}

// Publisher delivers notification events
type Publisher interface {
	PublishNotification(ctx context.Context, event NotificationEvent) error
	Close() error
}

// NewPublisher returns an AMQP publisher when events are enabled and a no-op publisher otherwise
func NewPublisher(cfg *config.EventsConfig, logger *zap.Logger) (Publisher, error) {
	if !cfg.Enabled {
		return NopPublisher{}, nil
	}
	return NewAMQPPublisher(cfg.AMQPURL, cfg.Exchange, cfg.RoutingKey, logger)
}

// NopPublisher drops every event
type NopPublisher struct{}

// PublishNotification does nothing
func (NopPublisher) PublishNotification(context.Context, NotificationEvent) error { return nil }

// Close does nothing
func (NopPublisher) Close() error { return nil }

// AMQPPublisher publishes persistent JSON messages to a durable topic exchange
type AMQPPublisher struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	logger     *zap.Logger
	mu         sync.Mutex
}

// NewAMQPPublisher dials the broker and declares the exchange
func NewAMQPPublisher(url, exchange, routingKey string, logger *zap.Logger) (*AMQPPublisher, error) {
	if url == "" {
		return nil, fmt.Errorf("amqp url is required")
	}
	if exchange == "" {
		return nil, fmt.Errorf("amqp exchange is required")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	logger.Info("AMQP publisher connected",
		zap.String("exchange", exchange),
		zap.String("routing_key", routingKey),
	)

	return &AMQPPublisher{
		conn:       conn,
		channel:    ch,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger,
	}, nil
}

// Encode builds the AMQP message carrying event
func Encode(event NotificationEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to encode notification event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    "notification-" + strconv.FormatUint(uint64(event.NotificationID), 10),
		Timestamp:    event.CreatedAt,
		Type:         string(event.Kind),
		Body:         body,
	}, nil
}

// PublishNotification sends event to the configured exchange.
// amqp channels are not safe for concurrent publishing, so calls are serialized.
func (p *AMQPPublisher) PublishNotification(ctx context.Context, event NotificationEvent) error {
	msg, err := Encode(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish notification event: %w", err)
	}

	p.logger.Debug("Notification event published",
		zap.Uint("notification_id", event.NotificationID),
		zap.String("kind", string(event.Kind)),
	)
	return nil
}

// Close closes the channel and the connection
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.Close(); err != nil && err != amqp.ErrClosed {
		p.conn.Close()
		return fmt.Errorf("failed to close channel: %w", err)
	}
	if err := p.conn.Close(); err != nil && err != amqp.ErrClosed {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}
