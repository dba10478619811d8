package http

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-inventario/internal/application/realtime"
)

const (
	sseHeartbeat = 5 * time.Second
	// sseWriteWindow plazo de cada escritura del stream; reemplaza al WriteTimeout del servidor,
	// que fasthttp fija una sola vez por respuesta.
	sseWriteWindow = 2 * sseHeartbeat
)

// RealtimeHandler expone los cambios de stock como Server-Sent Events.
type RealtimeHandler struct {
	hub  *realtime.Hub
	done <-chan struct{}
	log  zerolog.Logger
}

// NewRealtimeHandler construye el handler. done se cierra al apagar el servidor.
func NewRealtimeHandler(hub *realtime.Hub, done <-chan struct{}, log zerolog.Logger) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, done: done, log: log}
}

// Stream GET /api/realtime/stock
// Cada evento: "event: stock\ndata: <StockChangeEvent JSON>". La suscripción se da de baja
// cuando el cliente se desconecta (falla el flush) o el servidor se apaga.
func (h *RealtimeHandler) Stream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	events, cancel := h.hub.Subscribe()
	userID := GetUserID(c)
	conn := c.Context().Conn()
	extend := func() {
		if conn != nil {
			_ = conn.SetWriteDeadline(time.Now().Add(sseWriteWindow))
		}
	}

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		ticker := time.NewTicker(sseHeartbeat)
		defer ticker.Stop()

		h.log.Debug().Str("user_id", userID).Msg("suscriptor SSE conectado")
		extend()
		if _, err := fmt.Fprint(w, ": conectado\n\n"); err != nil || w.Flush() != nil {
			return
		}
		for {
			select {
			case <-h.done:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				data, err := json.Marshal(ev)
				if err != nil {
					h.log.Error().Err(err).Msg("serializar evento de stock")
					continue
				}
				fmt.Fprintf(w, "event: stock\ndata: %s\n\n", data)
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
			}
			extend()
			if err := w.Flush(); err != nil {
				h.log.Debug().Str("user_id", userID).Msg("suscriptor SSE desconectado")
				return
			}
		}
	})
	return nil
}
