// Package notify delivers low-stock alerts. Delivery is fire-and-forget: errors
// are logged and dropped, nothing is retried and callers never wait.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fekuna/stockroom-service/pkg/logger"
	"go.uber.org/zap"
)

// Alert is the item snapshot taken right after the mutation that crossed the
// threshold.
type Alert struct {
	ItemID       string
	ItemName     string
	SKU          string
	Category     string
	CurrentStock int
	MinThreshold int
}

type Payload struct {
	ItemID       string `json:"item_id"`
	ItemName     string `json:"item_name"`
	SKU          string `json:"sku"`
	Category     string `json:"category"`
	CurrentStock int    `json:"current_stock"`
	MinThreshold int    `json:"min_threshold"`
	Timestamp    string `json:"timestamp"`
	AlertType    string `json:"alert_type"`
	Message      string `json:"message"`
}

const AlertTypeLowStock = "low_stock"

func NewPayload(a Alert, now time.Time) Payload {
	return Payload{
		ItemID:       a.ItemID,
		ItemName:     a.ItemName,
		SKU:          a.SKU,
		Category:     a.Category,
		CurrentStock: a.CurrentStock,
		MinThreshold: a.MinThreshold,
		Timestamp:    now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		AlertType:    AlertTypeLowStock,
		Message: fmt.Sprintf("%s is running low! Current stock: %d, Minimum threshold: %d",
			a.ItemName, a.CurrentStock, a.MinThreshold),
	}
}

type Sink interface {
	Name() string
	Send(ctx context.Context, p Payload) error
}

type Notifier interface {
	// Notify schedules delivery and returns immediately.
	Notify(alerts ...Alert)
}

type Noop struct{}

func (Noop) Notify(...Alert) {}

type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	logger  logger.ZapLogger
	now     func() time.Time

	wg sync.WaitGroup
}

func NewDispatcher(log logger.ZapLogger, timeout time.Duration, sinks ...Sink) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		sinks:   sinks,
		timeout: timeout,
		logger:  log,
		now:     time.Now,
	}
}

func (d *Dispatcher) Notify(alerts ...Alert) {
	if len(d.sinks) == 0 {
		return
	}
	for _, a := range alerts {
		p := NewPayload(a, d.now())
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.deliver(p)
		}()
	}
}

func (d *Dispatcher) deliver(p Payload) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	for _, s := range d.sinks {
		if err := s.Send(ctx, p); err != nil {
			d.logger.Error("failed to send low stock alert",
				zap.String("sink", s.Name()),
				zap.String("item_id", p.ItemID),
				zap.Error(err),
			)
			continue
		}
		d.logger.Info("low stock alert sent",
			zap.String("sink", s.Name()),
			zap.String("item_id", p.ItemID),
			zap.Int("current_stock", p.CurrentStock),
		)
	}
}

// Wait blocks until every scheduled delivery has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Recorder collects alerts synchronously.
type Recorder struct {
	mu     sync.Mutex
	alerts []Alert
}

func (r *Recorder) Notify(alerts ...Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, alerts...)
}

func (r *Recorder) Alerts() []Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Alert, len(r.alerts))
	copy(out, r.alerts)
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = nil
}
