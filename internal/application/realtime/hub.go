package realtime

import (
	"sync"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// Hub reparte los cambios de stock a las vistas suscritas (SSE).
// Publish nunca bloquea: un suscriptor lento pierde eventos en lugar de frenar al resto.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]chan entity.StockChangeEvent
	nextID uint64
	buffer int
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{subs: make(map[uint64]chan entity.StockChangeEvent), buffer: buffer}
}

// Subscribe registra un suscriptor. cancel lo da de baja y cierra el canal; es seguro llamarlo más de una vez.
func (h *Hub) Subscribe() (events <-chan entity.StockChangeEvent, cancel func()) {
	ch := make(chan entity.StockChangeEvent, h.buffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish entrega ev a cada suscriptor con espacio en su buffer.
func (h *Hub) Publish(ev entity.StockChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribers cantidad de suscriptores activos.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
