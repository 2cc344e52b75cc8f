// Package events publishes committed stock movements to the stream.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/fekuna/stockroom-service/internal/model"
	"github.com/fekuna/stockroom-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const TypeStockChanged = "StockChanged"

type StockChanged struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	ItemID    string          `json:"item_id"`
	ItemName  string          `json:"item_name"`
	SKU       string          `json:"sku"`
	Delta     int             `json:"delta"`
	Stock     int             `json:"stock"`
	Reason    model.LogReason `json:"reason"`
	Actor     string          `json:"actor,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewStockChanged(c model.StockChange, reason model.LogReason, actor string, at time.Time) StockChanged {
	return StockChanged{
		EventID:   uuid.New().String(),
		EventType: TypeStockChanged,
		ItemID:    c.ItemID,
		ItemName:  c.ItemName,
		SKU:       c.SKU,
		Delta:     c.Delta(),
		Stock:     c.After,
		Reason:    reason,
		Actor:     actor,
		Timestamp: at.UTC(),
	}
}

// Emitter hands events off without blocking the caller.
type Emitter interface {
	Emit(events ...StockChanged)
}

type Noop struct{}

func (Noop) Emit(...StockChanged) {}

// Producer is satisfied by *broker.KafkaProducer.
type Producer interface {
	Publish(ctx context.Context, key string, value []byte) error
}

type KafkaEmitter struct {
	producer Producer
	timeout  time.Duration
	logger   logger.ZapLogger

	wg sync.WaitGroup
}

func NewKafkaEmitter(p Producer, timeout time.Duration, log logger.ZapLogger) *KafkaEmitter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &KafkaEmitter{producer: p, timeout: timeout, logger: log}
}

// Emit publishes in the background, keyed by item id so one item's events
// stay ordered on a partition.
func (k *KafkaEmitter) Emit(events ...StockChanged) {
	if len(events) == 0 {
		return
	}
	k.wg.Add(1)
	go func() {
		defer k.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), k.timeout)
		defer cancel()

		for _, e := range events {
			value, err := json.Marshal(e)
			if err != nil {
				k.logger.Error("failed to marshal stock event", zap.Error(err))
				continue
			}
			if err := k.producer.Publish(ctx, e.ItemID, value); err != nil {
				k.logger.Error("failed to publish stock event",
					zap.String("item_id", e.ItemID),
					zap.Error(err),
				)
			}
		}
	}()
}

func (k *KafkaEmitter) Wait() {
	k.wg.Wait()
}

type Recorder struct {
	mu     sync.Mutex
	events []StockChanged
}

func (r *Recorder) Emit(events ...StockChanged) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *Recorder) Events() []StockChanged {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]StockChanged, len(r.events))
	copy(out, r.events)
	return out
}
