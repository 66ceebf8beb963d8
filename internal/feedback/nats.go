package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/cortexd/internal/learning"
)

// DefaultSubject is the NATS subject the intake listens on.
const DefaultSubject = "cortexd.feedback"

// submitTimeout bounds feedback processing triggered from the bus.
const submitTimeout = 10 * time.Second

// NATSIntake consumes execution feedback from a NATS subject so execution
// layers can report outcomes without calling back over HTTP.
type NATSIntake struct {
	conn    *nats.Conn
	sub     *nats.Subscription
	service *Service
	subject string
	logger  *zap.Logger
}

// NewNATSIntake connects to NATS and subscribes to the feedback subject.
// subject defaults to DefaultSubject when empty.
func NewNATSIntake(url, subject string, service *Service, logger *zap.Logger) (*NATSIntake, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(1*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}

	in := &NATSIntake{
		conn:    nc,
		service: service,
		subject: subject,
		logger:  logger,
	}
	sub, err := nc.Subscribe(subject, in.handle)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	in.sub = sub

	logger.Info("feedback intake subscribed",
		zap.String("url", url), zap.String("subject", subject))
	return in, nil
}

// handle decodes one feedback message and submits it. Malformed messages
// and unknown request ids are logged and dropped; the bus has no reply
// channel to carry the error.
func (in *NATSIntake) handle(msg *nats.Msg) {
	var fb learning.ExecutionFeedback
	if err := json.Unmarshal(msg.Data, &fb); err != nil {
		in.logger.Warn("malformed feedback message", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()

	if _, err := in.service.Submit(ctx, &fb); err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			in.logger.Warn("feedback for unknown request",
				zap.String("request_id", fb.RequestID))
			return
		}
		in.logger.Error("feedback processing failed",
			zap.String("request_id", fb.RequestID), zap.Error(err))
	}
}

// Close drains the subscription and closes the connection.
func (in *NATSIntake) Close() error {
	if in.sub != nil {
		if err := in.sub.Drain(); err != nil {
			in.conn.Close()
			return err
		}
	}
	in.conn.Close()
	return nil
}
