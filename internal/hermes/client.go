package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// CallHandler runs the pipeline for one requested call.
type CallHandler func(ctx context.Context, callID uuid.UUID)

// Client carries the call events of the pipeline over NATS.
type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.Name("callscribe"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

// SubscribeCallRequests invokes handler for every valid request on SubjectCallRequested.
// Requests are handled one at a time; malformed payloads are logged and dropped.
func (c *Client) SubscribeCallRequests(ctx context.Context, handler CallHandler) error {
	_, err := c.conn.Subscribe(SubjectCallRequested, func(msg *nats.Msg) {
		c.dispatchCallRequest(ctx, msg, handler)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectCallRequested, err)
	}
	c.logger.Info("subscribed", "subject", SubjectCallRequested)
	return nil
}

func (c *Client) dispatchCallRequest(ctx context.Context, msg *nats.Msg, handler CallHandler) {
	callID, err := ParseCallRequest(msg.Data)
	if err != nil {
		c.logger.Error("invalid call request", "subject", msg.Subject, "error", err)
		return
	}
	c.logger.Info("call requested", "call_id", callID)
	handler(ctx, callID)
}

func (c *Client) PublishProcessed(evt CallProcessed) error {
	return c.publish(SubjectCallProcessed, evt)
}

func (c *Client) PublishFailed(evt CallFailed) error {
	return c.publish(SubjectCallFailed, evt)
}

func (c *Client) publish(subject string, evt any) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", subject, err)
	}
	if err := c.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Close drains subscriptions and pending events before closing the connection.
func (c *Client) Close() {
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
	}
}
