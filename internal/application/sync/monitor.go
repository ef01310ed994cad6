package sync

import (
	stdsync "sync"
	"sync/atomic"
)

// Monitor mantiene el estado de conectividad observado por el nodo.
// El estado nunca se persiste: cada arranque parte de offline hasta que la
// sonda de salud (o un SetOnline manual) demuestre lo contrario.
type Monitor struct {
	online atomic.Bool

	mu   stdsync.Mutex
	subs map[int]chan bool
	next int
}

// NewMonitor crea el monitor en estado offline.
func NewMonitor() *Monitor {
	return &Monitor{subs: make(map[int]chan bool)}
}

// Online devuelve el último estado conocido.
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// SetOnline fija el estado y notifica a los suscriptores solo si hubo
// transición. El envío no bloquea: un suscriptor con su buffer lleno ya
// tiene una transición pendiente de leer.
func (m *Monitor) SetOnline(v bool) {
	if m.online.Swap(v) == v {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- v:
		default:
		}
	}
}

// Subscribe registra un canal de transiciones y devuelve la función para
// darse de baja. El canal tiene buffer 1: las transiciones se coalescen y
// el suscriptor debe reconsultar Online() al despertar.
func (m *Monitor) Subscribe() (<-chan bool, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.next
	m.next++
	ch := make(chan bool, 1)
	m.subs[id] = ch
	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}
