// Package messaging publica eventos de venta en Kafka.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// EventTransactionCompleted tipo de evento publicado tras un cobro exitoso.
const EventTransactionCompleted = "TransactionCompleted"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// TransactionPublisher escribe en Kafka detrás de un circuit breaker:
// con el broker caído las publicaciones fallan rápido sin bloquear la caja.
type TransactionPublisher struct {
	writer  messageWriter
	breaker *gobreaker.CircuitBreaker[struct{}]
	timeout time.Duration
}

// NewTransactionPublisher crea el writer para el tópico dado.
func NewTransactionPublisher(brokers []string, topic string, log zerolog.Logger) *TransactionPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
	}
	return newTransactionPublisher(w, log)
}

func newTransactionPublisher(w messageWriter, log zerolog.Logger) *TransactionPublisher {
	settings := gobreaker.Settings{
		Name:        "kafka-transactions",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("cambio de estado del circuit breaker")
		},
	}
	return &TransactionPublisher{
		writer:  w,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
		timeout: 5 * time.Second,
	}
}

// PublishTransactionCompleted publica la venta con la transacción como key.
func (p *TransactionPublisher) PublishTransactionCompleted(ctx context.Context, t *entity.Transaction) error {
	msg, err := BuildTransactionMessage(t)
	if err != nil {
		return err
	}
	_, err = p.breaker.Execute(func() (struct{}, error) {
		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		return struct{}{}, p.writer.WriteMessages(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("publish transaction %s: %w", t.ID, err)
	}
	return nil
}

// Close cierra el writer.
func (p *TransactionPublisher) Close() error {
	return p.writer.Close()
}

// TransactionEvent cuerpo del mensaje.
type TransactionEvent struct {
	EventID    string                  `json:"event_id"`
	EventType  string                  `json:"event_type"`
	OccurredAt time.Time               `json:"occurred_at"`
	Payload    TransactionEventPayload `json:"payload"`
}

type TransactionEventPayload struct {
	TransactionID string                 `json:"transaction_id"`
	SessionID     string                 `json:"session_id"`
	CustomerID    string                 `json:"customer_id,omitempty"`
	UserID        string                 `json:"user_id,omitempty"`
	Subtotal      decimal.Decimal        `json:"subtotal"`
	Tax           decimal.Decimal        `json:"tax"`
	Total         decimal.Decimal        `json:"total"`
	PaymentMethod string                 `json:"payment_method"`
	Items         []TransactionEventItem `json:"items"`
}

type TransactionEventItem struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// BuildTransactionMessage arma el mensaje Kafka (key = id de transacción, header event_type).
func BuildTransactionMessage(t *entity.Transaction) (kafka.Message, error) {
	ev := TransactionEvent{
		EventID:    uuid.NewString(),
		EventType:  EventTransactionCompleted,
		OccurredAt: t.CreatedAt,
		Payload: TransactionEventPayload{
			TransactionID: t.ID,
			SessionID:     t.SessionID,
			CustomerID:    t.CustomerID,
			UserID:        t.UserID,
			Subtotal:      t.Subtotal,
			Tax:           t.Tax,
			Total:         t.Total,
			PaymentMethod: t.Payment.Method,
		},
	}
	for _, it := range t.Items {
		ev.Payload.Items = append(ev.Payload.Items, TransactionEventItem{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	value, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal transaction event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(t.ID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTransactionCompleted)},
		},
		Time: t.CreatedAt,
	}, nil
}
