package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/vasiliy-maslov/shop-orders/internal/order"
)

// Producer writes messages to Kafka through a buffered inbox so that
// publishing never blocks a request-scoped transaction.
type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
}

func NewProducer(brokers []string, topic string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

// Start drains the inbox until ctx is cancelled, then flushes what is left
// and closes the writer.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				close(p.inbox)
				for m := range p.inbox {
					p.write(m)
				}
				_ = p.w.Close()
				return
			case m, ok := <-p.inbox:
				if !ok {
					_ = p.w.Close()
					return
				}
				p.write(m)
			}
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		log.Error().Err(err).Str("topic", p.w.Topic).Msg("events: failed to write message")
	}
}

func (p *Producer) Publish(key, value []byte) {
	p.inbox <- kafka.Message{
		Key:   key,
		Value: value,
		Time:  time.Now(),
	}
}

// WaitClosed blocks until the drain goroutine has flushed and exited.
func (p *Producer) WaitClosed() {
	<-p.closeCh
}

// OrderEvents adapts the Producer to the order service's publisher port.
type OrderEvents struct {
	producer *Producer
	source   string
}

func NewOrderEvents(producer *Producer, source string) *OrderEvents {
	return &OrderEvents{producer: producer, source: source}
}

func (e *OrderEvents) OrderCreated(o *order.Order) {
	env, err := NewOrderCreated(o, e.source)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", o.ID).Msg("events: failed to build OrderCreated")
		return
	}
	value, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", o.ID).Msg("events: failed to marshal envelope")
		return
	}
	// Key by order id so every event of one order lands in the same partition.
	e.producer.Publish([]byte(o.ID.String()), value)
}
