package notify

import (
	"context"
	"encoding/json"
	"fmt"
)

const RoutingKeyLowStock = "alerts.low_stock"

// Publisher is satisfied by *messaging.RabbitMQClient.
type Publisher interface {
	Publish(routingKey string, body []byte) error
}

type AMQPSink struct {
	publisher Publisher
}

func NewAMQPSink(p Publisher) *AMQPSink {
	return &AMQPSink{publisher: p}
}

func (a *AMQPSink) Name() string { return "amqp" }

func (a *AMQPSink) Send(_ context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return a.publisher.Publish(RoutingKeyLowStock, body)
}
