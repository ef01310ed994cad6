package remote_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cajapos/internal/domain/entity"
	"github.com/jhoicas/cajapos/internal/infrastructure/remote"
	"github.com/jhoicas/cajapos/pkg/config"
)

const testTenant = "t1"

// capture guarda lo último que recibió el servidor de prueba.
type capture struct {
	method string
	path   string
	query  map[string]string
	header http.Header
	body   []byte
	hits   int
}

// newServer levanta un httptest.Server que captura cada request y responde
// con el status y body indicados.
func newServer(t *testing.T, status int, respBody string) (*httptest.Server, *capture) {
	t.Helper()
	cap := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cap.hits++
		cap.method = r.Method
		cap.path = r.URL.Path
		cap.query = map[string]string{}
		for k := range r.URL.Query() {
			cap.query[k] = r.URL.Query().Get(k)
		}
		cap.header = r.Header.Clone()
		cap.body, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, respBody)
	}))
	t.Cleanup(srv.Close)
	return srv, cap
}

func newClient(baseURL string) *remote.Client {
	return remote.NewClient(config.RemoteConfig{
		BaseURL:        baseURL,
		APIKey:         "k-123",
		TimeoutSeconds: 5,
	}, testTenant)
}

// TestClient_RutasCubrenTodosLosKinds: el conjunto de kinds es cerrado y la
// tabla de rutas debe cubrirlo completo; un kind desconocido se rechaza.
func TestClient_RutasCubrenTodosLosKinds(t *testing.T) {
	c := newClient("http://localhost:0")

	for _, kind := range entity.AllEntityKinds() {
		ec, err := c.Entity(kind)
		require.NoError(t, err, "kind %q sin ruta", kind)
		require.NotNil(t, ec)
	}

	_, err := c.Entity(entity.EntityKind("naves_espaciales"))
	require.Error(t, err)
}

// TestClient_InsertPublicaEnElRecurso: insert hace POST al recurso del kind
// con el payload tal cual se encoló y los headers de autenticación del nodo.
func TestClient_InsertPublicaEnElRecurso(t *testing.T) {
	srv, cap := newServer(t, http.StatusCreated, `{}`)
	c := newClient(srv.URL)

	ec, err := c.Entity(entity.KindProduct)
	require.NoError(t, err)

	payload := json.RawMessage(`{"id":"p-1","sku":"CAF-01","name":"Café"}`)
	require.NoError(t, ec.Insert(context.Background(), payload))

	assert.Equal(t, http.MethodPost, cap.method)
	assert.Equal(t, "/products", cap.path)
	assert.Equal(t, "k-123", cap.header.Get("X-API-Key"))
	assert.Equal(t, testTenant, cap.header.Get("X-Tenant-ID"))
	assert.Equal(t, "application/json", cap.header.Get("Content-Type"))
	assert.JSONEq(t, string(payload), string(cap.body))
}

// TestClient_UpdateYDeleteComponenLaRutaConElID: el id viaja dentro del
// payload y el cliente lo extrae para armar /recurso/{id}.
func TestClient_UpdateYDeleteComponenLaRutaConElID(t *testing.T) {
	srv, cap := newServer(t, http.StatusOK, `{}`)
	c := newClient(srv.URL)

	ec, err := c.Entity(entity.KindMaterial)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, ec.Update(ctx, json.RawMessage(`{"id":"m-7","name":"Leche"}`)))
	assert.Equal(t, http.MethodPut, cap.method)
	assert.Equal(t, "/materials/m-7", cap.path)
	assert.JSONEq(t, `{"id":"m-7","name":"Leche"}`, string(cap.body))

	require.NoError(t, ec.Delete(ctx, json.RawMessage(`{"id":"m-7"}`)))
	assert.Equal(t, http.MethodDelete, cap.method)
	assert.Equal(t, "/materials/m-7", cap.path)
	assert.Empty(t, cap.body, "el delete no lleva body")
}

// TestClient_PayloadSinIDNoSale: update/delete sin id en el payload fallan
// antes de tocar la red.
func TestClient_PayloadSinIDNoSale(t *testing.T) {
	srv, cap := newServer(t, http.StatusOK, `{}`)
	c := newClient(srv.URL)

	ec, err := c.Entity(entity.KindProduct)
	require.NoError(t, err)
	ctx := context.Background()

	require.Error(t, ec.Update(ctx, json.RawMessage(`{"name":"sin id"}`)))
	require.Error(t, ec.Delete(ctx, json.RawMessage(`no es json`)))
	assert.Zero(t, cap.hits, "ningún request debió salir")
}

// TestClient_ErroresHTTPConservanElStatus: un status fuera de 2xx se
// devuelve como StatusError con el cuerpo del servidor.
func TestClient_ErroresHTTPConservanElStatus(t *testing.T) {
	srv, _ := newServer(t, http.StatusUnprocessableEntity, `{"error":"sku duplicado"}`)
	c := newClient(srv.URL)

	ec, err := c.Entity(entity.KindProduct)
	require.NoError(t, err)

	err = ec.Insert(context.Background(), json.RawMessage(`{"id":"p-1"}`))
	require.Error(t, err)

	var se *remote.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnprocessableEntity, se.Status)
	assert.Contains(t, se.Body, "sku duplicado")
}

// TestClient_FetchProductsDecodifica: las lecturas piden el catálogo con el
// tenant como query param y decodifican el formato de cable en entidades.
func TestClient_FetchProductsDecodifica(t *testing.T) {
	body := `[
		{"id":"p-1","tenant_id":"t1","sku":"CAF-01","name":"Café","price":"2.50","stock":"10","track_stock":false},
		{"id":"p-2","tenant_id":"t1","sku":"AGU-01","name":"Agua","price":"1.00","stock":"24","track_stock":true}
	]`
	srv, cap := newServer(t, http.StatusOK, body)
	c := newClient(srv.URL)

	list, err := c.FetchProducts(context.Background(), testTenant)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "/products", cap.path)
	assert.Equal(t, testTenant, cap.query["tenant_id"])
	assert.Equal(t, "p-1", list[0].ID)
	assert.Equal(t, "CAF-01", list[0].SKU)
	assert.True(t, list[0].Price.Equal(decimal.RequireFromString("2.50")))
	assert.True(t, list[1].TrackStock)
}

// TestClient_FetchTransactionsPropagaFiltros: sucursal y rango de fechas
// viajan como query params; los ausentes no se mandan.
func TestClient_FetchTransactionsPropagaFiltros(t *testing.T) {
	srv, cap := newServer(t, http.StatusOK, `[]`)
	c := newClient(srv.URL)
	ctx := context.Background()

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)
	_, err := c.FetchTransactions(ctx, testTenant, "b1", &from, &to)
	require.NoError(t, err)
	assert.Equal(t, "/transactions", cap.path)
	assert.Equal(t, "b1", cap.query["branch_id"])
	assert.Equal(t, "2025-03-01T00:00:00Z", cap.query["from"])
	assert.Equal(t, "2025-03-31T23:59:59Z", cap.query["to"])

	_, err = c.FetchTransactions(ctx, testTenant, "", nil, nil)
	require.NoError(t, err)
	_, hasBranch := cap.query["branch_id"]
	_, hasFrom := cap.query["from"]
	assert.False(t, hasBranch)
	assert.False(t, hasFrom)
}

// TestClient_FetchConErrorNoInventaDatos: un 500 del remoto es error, no un
// listado vacío; la cadena de fallback decide el siguiente nivel.
func TestClient_FetchConErrorNoInventaDatos(t *testing.T) {
	srv, _ := newServer(t, http.StatusInternalServerError, `a medias`)
	c := newClient(srv.URL)

	list, err := c.FetchMaterials(context.Background(), testTenant)
	require.Error(t, err)
	assert.Nil(t, list)

	var se *remote.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Status)
}
