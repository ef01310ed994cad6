package sync_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsync "github.com/jhoicas/cajapos/internal/application/sync"
)

func TestMonitor_ArrancaOffline(t *testing.T) {
	m := appsync.NewMonitor()

	assert.False(t, m.Online(), "el estado de conectividad nunca se persiste: cada arranque es offline")
}

func TestMonitor_TransicionNotificaSuscriptores(t *testing.T) {
	m := appsync.NewMonitor()
	ch, cancel := m.Subscribe()
	defer cancel()

	m.SetOnline(true)

	select {
	case v := <-ch:
		assert.True(t, v, "la transición notificada debe ser online")
	case <-time.After(time.Second):
		t.Fatal("el suscriptor no recibió la transición offline->online")
	}
	assert.True(t, m.Online())
}

func TestMonitor_SinTransicionNoNotifica(t *testing.T) {
	m := appsync.NewMonitor()
	ch, cancel := m.Subscribe()
	defer cancel()

	// Ya está offline: fijar offline otra vez no es transición
	m.SetOnline(false)

	select {
	case <-ch:
		t.Fatal("no debe notificarse un SetOnline sin cambio de estado")
	default:
	}
}

func TestMonitor_BajaDejaDeNotificar(t *testing.T) {
	m := appsync.NewMonitor()
	ch, cancel := m.Subscribe()
	cancel()

	m.SetOnline(true)

	select {
	case <-ch:
		t.Fatal("un suscriptor dado de baja no debe recibir transiciones")
	default:
	}
}

// TestMonitor_TransicionesCoalescen: el canal tiene buffer 1; un suscriptor
// lento no bloquea al notificador y al despertar reconsulta Online().
func TestMonitor_TransicionesCoalescen(t *testing.T) {
	m := appsync.NewMonitor()
	ch, cancel := m.Subscribe()
	defer cancel()

	m.SetOnline(true)
	m.SetOnline(false)
	m.SetOnline(true)

	// El buffer conserva al menos la primera transición no leída
	require.NotEmpty(t, ch, "debe quedar una transición pendiente")
	assert.True(t, m.Online(), "Online() refleja el último estado aunque el canal coalesca")
}
