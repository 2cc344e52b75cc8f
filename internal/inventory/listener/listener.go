package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/stockroom-service/internal/apperror"
	"github.com/fekuna/stockroom-service/internal/inventory"
	"github.com/fekuna/stockroom-service/internal/inventory/dto"
	"github.com/fekuna/stockroom-service/internal/model"
	"github.com/fekuna/stockroom-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const EventCartSubmitted = "CartSubmitted"

// MessageReader is satisfied by *broker.KafkaConsumer.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type CartListener struct {
	consumer MessageReader
	uc       inventory.UseCase
	logger   logger.ZapLogger
	backoff  time.Duration
}

func NewCartListener(consumer MessageReader, uc inventory.UseCase, logger logger.ZapLogger) *CartListener {
	return &CartListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
		backoff:  time.Second,
	}
}

// Start consumes until ctx is cancelled.
func (l *CartListener) Start(ctx context.Context) {
	l.logger.Info("Starting cart Kafka listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping cart Kafka listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(l.backoff):
				}
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

// CartSubmittedEvent is what kiosks and point-of-sale terminals publish when
// a cart is checked out away from the web UI.
type CartSubmittedEvent struct {
	EventID   string     `json:"event_id"`
	EventType string     `json:"event_type"`
	Actor     string     `json:"actor"`
	Lines     model.Cart `json:"lines"`
	OrderID   string     `json:"order_id,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

func (l *CartListener) processMessage(ctx context.Context, value []byte) {
	var event CartSubmittedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != EventCartSubmitted {
		return
	}

	l.logger.Info("Processing CartSubmitted event",
		zap.String("event_id", event.EventID),
		zap.Int("lines", len(event.Lines)),
	)

	res, err := l.uc.SubmitCart(ctx, &dto.SubmitCartInput{
		Lines:   event.Lines,
		Actor:   event.Actor,
		OrderID: event.OrderID,
	})
	if err != nil {
		l.logger.Error("Failed to submit cart from event",
			zap.String("event_id", event.EventID),
			zap.String("kind", apperror.KindOf(err).String()),
			zap.Error(err),
		)
		return
	}

	l.logger.Debug("Cart from event applied",
		zap.String("event_id", event.EventID),
		zap.Int("items", len(res.Items)),
	)
}
