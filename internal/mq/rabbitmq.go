package mq

import (
	"context"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeInbound  = "files.inbound.exchange"
	ExchangeOutbound = "files.outbound.exchange"
	ExchangeDLQ      = "files.dlq.exchange"

	QueueInbound = "upload-inbox.inbound.queue"
	QueueDLQ     = "upload-inbox.dlq.queue"

	RoutingDLQ = "upload-inbox.dlq"
)

type Client struct {
	Conn      *amqp.Connection
	Channel   *amqp.Channel
	publishMu sync.Mutex
}

func Dial(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Client{Conn: conn, Channel: ch}, nil
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.Channel != nil {
		_ = c.Channel.Close()
	}
	if c.Conn != nil {
		_ = c.Conn.Close()
	}
}

// DeclareTopology declares the exchanges, queues, and bindings. The inbound
// queue is bound once per inbound event type, with the event type doubling
// as the routing key.
func (c *Client) DeclareTopology() error {
	for _, exchange := range []string{ExchangeInbound, ExchangeOutbound, ExchangeDLQ} {
		if err := c.Channel.ExchangeDeclare(
			exchange,
			"direct",
			true,
			false,
			false,
			false,
			nil,
		); err != nil {
			return err
		}
	}

	if _, err := c.Channel.QueueDeclare(
		QueueInbound,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return err
	}
	if _, err := c.Channel.QueueDeclare(
		QueueDLQ,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return err
	}

	for _, eventType := range InboundEventTypes {
		if err := c.Channel.QueueBind(
			QueueInbound,
			eventType,
			ExchangeInbound,
			false,
			nil,
		); err != nil {
			return err
		}
	}
	return c.Channel.QueueBind(
		QueueDLQ,
		RoutingDLQ,
		ExchangeDLQ,
		false,
		nil,
	)
}

// Publish sends a persistent JSON message with the event type as both the
// message type and the routing key.
func (c *Client) Publish(ctx context.Context, exchange, eventType string, body []byte) error {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	return c.Channel.PublishWithContext(
		ctx,
		exchange,
		eventType,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         eventType,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
}

// PublishDLQ parks an unprocessable message on the dead letter queue.
func (c *Client) PublishDLQ(ctx context.Context, eventType string, body []byte) error {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	return c.Channel.PublishWithContext(
		ctx,
		ExchangeDLQ,
		RoutingDLQ,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         eventType,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
}
