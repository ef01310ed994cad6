package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsync "github.com/jhoicas/cajapos/internal/application/sync"
	"github.com/jhoicas/cajapos/internal/domain/entity"
	apphttp "github.com/jhoicas/cajapos/internal/interfaces/http"
	"github.com/jhoicas/cajapos/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// El router se prueba por sus dos contratos transversales: RBAC por ruta y el
// control manual de sincronización. Las rutas que no se ejercitan reciben
// handlers con dependencias nil: el middleware corta antes de llegar a ellos.
//
// La cola y el remoto son fakes en memoria; el dispatcher es el real.
// ──────────────────────────────────────────────────────────────────────────────

// memQueue es una cola durable simulada: slice con mutex, mismo contrato de
// orden que la implementación SQLite.
type memQueue struct {
	mu   sync.Mutex
	recs []*entity.MutationRecord
}

func (q *memQueue) Enqueue(_ context.Context, rec *entity.MutationRecord) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.recs = append(q.recs, rec)
	return nil
}

func (q *memQueue) LoadAll(_ context.Context) ([]*entity.MutationRecord, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*entity.MutationRecord, len(q.recs))
	copy(out, q.recs)
	return out, nil
}

func (q *memQueue) RemoveOne(_ context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, rec := range q.recs {
		if rec.ID == id {
			q.recs = append(q.recs[:i], q.recs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (q *memQueue) MarkAttempt(_ context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, rec := range q.recs {
		if rec.ID == id {
			rec.Attempts++
		}
	}
	return nil
}

func (q *memQueue) Clear(_ context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.recs = nil
	return nil
}

func (q *memQueue) Len(_ context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.recs), nil
}

// stubRemote aplica todo o falla todo, según se configure.
type stubRemote struct {
	err error
}

func (r *stubRemote) Entity(entity.EntityKind) (appsync.EntityClient, error) {
	return stubClient{err: r.err}, nil
}

type stubClient struct{ err error }

func (c stubClient) Insert(context.Context, json.RawMessage) error { return c.err }
func (c stubClient) Update(context.Context, json.RawMessage) error { return c.err }
func (c stubClient) Delete(context.Context, json.RawMessage) error { return c.err }

// newSyncApp monta el router completo con el dispatcher real sobre los fakes.
// Solo las rutas de sync tienen dependencias vivas.
func newSyncApp(remoteErr error) (*fiber.App, *memQueue, *appsync.Dispatcher) {
	q := &memQueue{}
	d := appsync.NewDispatcher(q, &stubRemote{err: remoteErr}, appsync.NewMonitor(), logger.Nop(), 0)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Dispatcher: d,
		JWTSecret:  testJWTSecret,
	})
	return app, q, d
}

// doAPIRequest lanza una petición autenticada contra el router montado.
func doAPIRequest(t *testing.T, app *fiber.App, method, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func mustEnqueue(t *testing.T, d *appsync.Dispatcher, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		rec := appsync.NewRecord(entity.KindProduct, entity.OpUpdate, json.RawMessage(fmt.Sprintf(`{"id":"p-%d"}`, i)))
		require.NoError(t, d.Enqueue(context.Background(), rec))
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Sync: flush manual y estado
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_FlushManualDrenaLaCola(t *testing.T) {
	app, q, d := newSyncApp(nil)
	mustEnqueue(t, d, 2)

	resp := doAPIRequest(t, app, http.MethodPost, "/api/sync/flush", tokenForRole(t, "admin"))
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rep appsync.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rep))
	assert.Equal(t, 2, rep.Attempted)
	assert.Equal(t, 2, rep.Applied)
	assert.Equal(t, 0, rep.Failed)

	n, err := q.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n, "la cola debe quedar vacía tras el drenaje")
}

// TestRouter_FlushConFallosRetorna502: el reporte parcial viaja junto al
// error para que el operador vea qué quedó pendiente.
func TestRouter_FlushConFallosRetorna502(t *testing.T) {
	app, q, d := newSyncApp(fmt.Errorf("central caído"))
	mustEnqueue(t, d, 2)

	resp := doAPIRequest(t, app, http.MethodPost, "/api/sync/flush", tokenForRole(t, "admin"))
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Report  appsync.Report `json:"report"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "SYNC_INCOMPLETE", body.Code)
	assert.NotEmpty(t, body.Message)
	assert.Equal(t, 2, body.Report.Attempted)
	assert.Equal(t, 0, body.Report.Applied)
	assert.Equal(t, 2, body.Report.Failed)

	n, err := q.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n, "los registros fallidos permanecen en la cola")
}

func TestRouter_StatusReportaPendientesYConectividad(t *testing.T) {
	app, _, d := newSyncApp(nil)
	mustEnqueue(t, d, 3)

	// El estado es lectura operativa: visible para cualquier rol.
	resp := doAPIRequest(t, app, http.MethodGet, "/api/sync/status", tokenForRole(t, "cajero"))
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st appsync.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, 3, st.Pending)
	assert.False(t, st.Online, "sin sonda de salud el nodo arranca offline")
	assert.False(t, st.Draining)
}

// ──────────────────────────────────────────────────────────────────────────────
// RBAC por ruta
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_FlushSoloAdmin(t *testing.T) {
	app, q, d := newSyncApp(nil)
	mustEnqueue(t, d, 1)

	resp := doAPIRequest(t, app, http.MethodPost, "/api/sync/flush", tokenForRole(t, "cajero"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	n, err := q.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n, "un flush rechazado no toca la cola")
}

// Las mutaciones de catálogo exigen admin; el middleware corta antes de que
// el handler (aquí con dependencias nil) llegue a ejecutarse.
func TestRouter_MutacionesDeCatalogoSoloAdmin(t *testing.T) {
	app, _, _ := newSyncApp(nil)

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodPost, "/api/products/"},
		{http.MethodPut, "/api/products/p-1"},
		{http.MethodDelete, "/api/products/p-1"},
		{http.MethodPost, "/api/materials/"},
		{http.MethodPut, "/api/materials/m-1"},
		{http.MethodDelete, "/api/materials/m-1"},
		{http.MethodPost, "/api/materials/m-1/adjust"},
	} {
		resp := doAPIRequest(t, app, tc.method, tc.path, tokenForRole(t, "cajero"))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, "%s %s debe exigir admin", tc.method, tc.path)
		resp.Body.Close()
	}
}

func TestRouter_SinTokenRetorna401(t *testing.T) {
	app, _, _ := newSyncApp(nil)

	resp := doAPIRequest(t, app, http.MethodGet, "/api/sync/status", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
