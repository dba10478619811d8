package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
	hits int
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.hits++
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func sampleTransaction() *entity.Transaction {
	return &entity.Transaction{
		ID:        "tx-1",
		SessionID: "caja-1",
		Subtotal:  decimal.RequireFromString("20.00"),
		Tax:       decimal.RequireFromString("1.60"),
		Total:     decimal.RequireFromString("21.60"),
		Payment:   entity.PaymentDetails{Method: entity.PaymentCash},
		Items: []entity.TransactionItem{
			{ProductID: "p1", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
		},
		CreatedAt: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestBuildTransactionMessage(t *testing.T) {
	msg, err := BuildTransactionMessage(sampleTransaction())
	require.NoError(t, err)

	assert.Equal(t, "tx-1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, EventTransactionCompleted, string(msg.Headers[0].Value))

	var ev TransactionEvent
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, EventTransactionCompleted, ev.EventType)
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, "21.6", ev.Payload.Total.String())
	require.Len(t, ev.Payload.Items, 1)
	assert.Equal(t, 2, ev.Payload.Items[0].Quantity)
}

func TestPublisher_WritesMessage(t *testing.T) {
	w := &fakeWriter{}
	p := newTransactionPublisher(w, zerolog.Nop())

	require.NoError(t, p.PublishTransactionCompleted(context.Background(), sampleTransaction()))
	assert.Len(t, w.msgs, 1)
}

func TestPublisher_BreakerOpensAfterFailures(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker caído")}
	p := newTransactionPublisher(w, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.Error(t, p.PublishTransactionCompleted(ctx, sampleTransaction()))
	}
	err := p.PublishTransactionCompleted(ctx, sampleTransaction())

	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, w.hits, "con el breaker abierto no se llama al broker")
}
