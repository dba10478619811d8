package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// ChangeListener escucha los canales LISTEN/NOTIFY de stock sobre una conexión dedicada del pool.
// Ante una desconexión espera retryDelay y vuelve a suscribirse.
type ChangeListener struct {
	pool       *pgxpool.Pool
	channels   map[string]string // canal -> tabla
	log        zerolog.Logger
	retryDelay time.Duration
}

// NewChangeListener construye el listener para los canales de productos y variantes.
func NewChangeListener(pool *pgxpool.Pool, productsChannel, variantsChannel string, log zerolog.Logger) *ChangeListener {
	return &ChangeListener{
		pool: pool,
		channels: map[string]string{
			productsChannel: entity.TableProducts,
			variantsChannel: entity.TableProductVariants,
		},
		log:        log,
		retryDelay: time.Second,
	}
}

// Listen bloquea entregando cada evento a handle hasta que ctx se cancela.
func (l *ChangeListener) Listen(ctx context.Context, handle func(context.Context, entity.StockChangeEvent)) error {
	l.log.Info().Msg("escuchando cambios de stock")
	for {
		err := l.listenOnce(ctx, handle)
		if ctx.Err() != nil {
			l.log.Info().Msg("listener de stock detenido")
			return nil
		}
		l.log.Error().Err(err).Msg("conexión de notificaciones perdida, reintentando")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.retryDelay):
		}
	}
}

func (l *ChangeListener) listenOnce(ctx context.Context, handle func(context.Context, entity.StockChangeEvent)) error {
	pooled, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen conn: %w", err)
	}
	// La conexión queda con LISTEN activos; se saca del pool y se cierra al salir.
	conn := pooled.Hijack()
	defer conn.Close(context.Background())

	for channel := range l.channels {
		if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
			return fmt.Errorf("listen %s: %w", channel, err)
		}
	}

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		ev, err := DecodeStockChange([]byte(n.Payload), l.channels[n.Channel])
		if err != nil {
			l.log.Warn().Err(err).Str("channel", n.Channel).Msg("notificación de stock ilegible")
			continue
		}
		handle(ctx, ev)
	}
}

type notifyPayload struct {
	Table       string                     `json:"table"`
	EventKind   string                     `json:"event_kind"`
	PreviousRow map[string]json.RawMessage `json:"previous_row"`
	NewRow      map[string]json.RawMessage `json:"new_row"`
}

var jsonNull = []byte("null")

// DecodeStockChange interpreta el payload {table, event_kind, previous_row, new_row}.
// Stock ausente en new_row deja HasNewStock en false; stock null significa sin control de inventario.
func DecodeStockChange(payload []byte, defaultTable string) (entity.StockChangeEvent, error) {
	var p notifyPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return entity.StockChangeEvent{}, fmt.Errorf("decode notification: %w", err)
	}
	ev := entity.StockChangeEvent{Table: p.Table, Kind: p.EventKind}
	if ev.Table == "" {
		ev.Table = defaultTable
	}
	if ev.Table == "" {
		return entity.StockChangeEvent{}, errors.New("notificación sin tabla")
	}

	row := p.NewRow
	if row == nil {
		row = p.PreviousRow
	}
	if raw, ok := row["id"]; ok && !bytes.Equal(raw, jsonNull) {
		if err := json.Unmarshal(raw, &ev.ID); err != nil {
			return entity.StockChangeEvent{}, fmt.Errorf("decode id: %w", err)
		}
	}
	if raw, ok := p.NewRow["stock"]; ok {
		ev.HasNewStock = true
		if !bytes.Equal(raw, jsonNull) {
			if err := json.Unmarshal(raw, &ev.NewStock); err != nil {
				return entity.StockChangeEvent{}, fmt.Errorf("decode new stock: %w", err)
			}
		}
	}
	if raw, ok := p.PreviousRow["stock"]; ok && !bytes.Equal(raw, jsonNull) {
		if err := json.Unmarshal(raw, &ev.PreviousStock); err != nil {
			return entity.StockChangeEvent{}, fmt.Errorf("decode previous stock: %w", err)
		}
	}
	return ev, nil
}
