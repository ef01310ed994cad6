package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jhoicas/cajapos/internal/application/catalog"
	"github.com/jhoicas/cajapos/internal/application/dto"
	appsync "github.com/jhoicas/cajapos/internal/application/sync"
	"github.com/jhoicas/cajapos/internal/domain/entity"
	"github.com/jhoicas/cajapos/pkg/config"
)

// Verificación en tiempo de compilación: el cliente cubre las dos caras del
// servicio central, la de mutaciones (replay) y la de lecturas (fallback).
var (
	_ appsync.RemoteService = (*Client)(nil)
	_ catalog.RemoteReader  = (*Client)(nil)
)

const (
	// maxListBody acota las respuestas de listado; un catálogo de sucursal
	// cabe de sobra en 4 MB.
	maxListBody = 4 << 20
	// maxErrBody acota cuánto cuerpo de error se conserva para diagnóstico.
	maxErrBody = 4 << 10
)

// routes mapea cada kind replicable a su recurso REST en el servicio
// central. El conjunto es cerrado: un kind sin entrada aquí no puede
// replicarse y Entity lo rechaza.
var routes = map[entity.EntityKind]string{
	entity.KindProduct:       "products",
	entity.KindMaterial:      "materials",
	entity.KindTransaction:   "transactions",
	entity.KindExpense:       "expenses",
	entity.KindShift:         "shifts",
	entity.KindDiscount:      "discounts",
	entity.KindUser:          "users",
	entity.KindBranch:        "branches",
	entity.KindRecipe:        "recipes",
	entity.KindStockMovement: "stock-movements",
}

// StatusError es una respuesta no exitosa del servicio central. El replay la
// trata como cualquier otro fallo: la mutación permanece en cola.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("servicio central respondió %d", e.Status)
	}
	return fmt.Sprintf("servicio central respondió %d: %s", e.Status, e.Body)
}

// Client habla HTTP con el servicio central. Autentica con X-API-Key y
// marca cada request con el X-Tenant-ID del nodo.
type Client struct {
	baseURL    string
	apiKey     string
	tenantID   string
	httpClient *http.Client
}

// NewClient construye el cliente del servicio central para este nodo.
func NewClient(cfg config.RemoteConfig, tenantID string) *Client {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		tenantID:   tenantID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Entity devuelve el cliente de mutaciones del kind indicado.
func (c *Client) Entity(kind entity.EntityKind) (appsync.EntityClient, error) {
	resource, ok := routes[kind]
	if !ok {
		return nil, fmt.Errorf("remoto: kind %q sin recurso", kind)
	}
	return &entityClient{c: c, resource: resource}, nil
}

// entityClient aplica insert/update/delete sobre un recurso concreto.
// El id viaja dentro del payload; aquí se extrae para componer la ruta.
type entityClient struct {
	c        *Client
	resource string
}

func (e *entityClient) Insert(ctx context.Context, payload json.RawMessage) error {
	return e.c.send(ctx, http.MethodPost, "/"+e.resource, payload)
}

func (e *entityClient) Update(ctx context.Context, payload json.RawMessage) error {
	id, err := idFromPayload(payload)
	if err != nil {
		return fmt.Errorf("remoto: update de %s: %w", e.resource, err)
	}
	return e.c.send(ctx, http.MethodPut, "/"+e.resource+"/"+url.PathEscape(id), payload)
}

func (e *entityClient) Delete(ctx context.Context, payload json.RawMessage) error {
	id, err := idFromPayload(payload)
	if err != nil {
		return fmt.Errorf("remoto: delete de %s: %w", e.resource, err)
	}
	return e.c.send(ctx, http.MethodDelete, "/"+e.resource+"/"+url.PathEscape(id), nil)
}

// idFromPayload extrae el campo id del payload encolado.
func idFromPayload(payload json.RawMessage) (string, error) {
	var probe dto.DeletePayload
	if err := json.Unmarshal(payload, &probe); err != nil {
		return "", fmt.Errorf("payload ilegible: %w", err)
	}
	if probe.ID == "" {
		return "", fmt.Errorf("payload sin id")
	}
	return probe.ID, nil
}

// FetchProducts descarga el catálogo de productos del tenant.
func (c *Client) FetchProducts(ctx context.Context, tenantID string) ([]*entity.Product, error) {
	var list []dto.ProductResponse
	if err := c.getJSON(ctx, "/products", url.Values{"tenant_id": {tenantID}}, &list); err != nil {
		return nil, err
	}
	out := make([]*entity.Product, 0, len(list))
	for i := range list {
		out = append(out, productFrom(&list[i]))
	}
	return out, nil
}

// FetchMaterials descarga los insumos del tenant.
func (c *Client) FetchMaterials(ctx context.Context, tenantID string) ([]*entity.Material, error) {
	var list []dto.MaterialResponse
	if err := c.getJSON(ctx, "/materials", url.Values{"tenant_id": {tenantID}}, &list); err != nil {
		return nil, err
	}
	out := make([]*entity.Material, 0, len(list))
	for i := range list {
		out = append(out, materialFrom(&list[i]))
	}
	return out, nil
}

// FetchRecipes descarga las recetas del tenant.
func (c *Client) FetchRecipes(ctx context.Context, tenantID string) ([]*entity.Recipe, error) {
	var list []dto.RecipeResponse
	if err := c.getJSON(ctx, "/recipes", url.Values{"tenant_id": {tenantID}}, &list); err != nil {
		return nil, err
	}
	out := make([]*entity.Recipe, 0, len(list))
	for i := range list {
		out = append(out, recipeFrom(&list[i]))
	}
	return out, nil
}

// FetchTransactions descarga ventas filtradas por sucursal y rango de fechas.
func (c *Client) FetchTransactions(ctx context.Context, tenantID, branchID string, from, to *time.Time) ([]*entity.Transaction, error) {
	q := url.Values{"tenant_id": {tenantID}}
	if branchID != "" {
		q.Set("branch_id", branchID)
	}
	if from != nil {
		q.Set("from", from.UTC().Format(time.RFC3339))
	}
	if to != nil {
		q.Set("to", to.UTC().Format(time.RFC3339))
	}
	var list []dto.TransactionResponse
	if err := c.getJSON(ctx, "/transactions", q, &list); err != nil {
		return nil, err
	}
	out := make([]*entity.Transaction, 0, len(list))
	for i := range list {
		out = append(out, transactionFrom(&list[i]))
	}
	return out, nil
}

// send ejecuta una mutación HTTP. Cualquier status fuera de 2xx es error.
func (c *Client) send(ctx context.Context, method, path string, payload []byte) error {
	var body io.Reader
	if len(payload) > 0 {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("remoto: armar request: %w", err)
	}
	c.setHeaders(req)
	if len(payload) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remoto: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusErrorFrom(resp)
	}
	// Drenar el body antes de cerrar permite reutilizar la conexión.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrBody))
	return nil
}

// getJSON ejecuta un GET y decodifica la respuesta en into.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, into any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("remoto: armar request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remoto: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusErrorFrom(resp)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxListBody))
	if err != nil {
		return fmt.Errorf("remoto: leer respuesta de %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("remoto: decodificar respuesta de %s: %w", path, err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("X-Tenant-ID", c.tenantID)
}

func statusErrorFrom(resp *http.Response) *StatusError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
	return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
}

// Los DTOs de respuesta son el formato de cable compartido con el servicio
// central; aquí se vuelven entidades para el resto del nodo.

func productFrom(r *dto.ProductResponse) *entity.Product {
	return &entity.Product{
		ID:         r.ID,
		TenantID:   r.TenantID,
		SKU:        r.SKU,
		Name:       r.Name,
		Price:      r.Price,
		Stock:      r.Stock,
		TrackStock: r.TrackStock,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func materialFrom(r *dto.MaterialResponse) *entity.Material {
	return &entity.Material{
		ID:        r.ID,
		TenantID:  r.TenantID,
		Name:      r.Name,
		Stock:     r.Stock,
		Unit:      r.Unit,
		MinStock:  r.MinStock,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func recipeFrom(r *dto.RecipeResponse) *entity.Recipe {
	return &entity.Recipe{
		ID:          r.ID,
		TenantID:    r.TenantID,
		ProductID:   r.ProductID,
		Ingredients: r.Ingredients,
	}
}

func transactionFrom(r *dto.TransactionResponse) *entity.Transaction {
	return &entity.Transaction{
		ID:            r.ID,
		TenantID:      r.TenantID,
		BranchID:      r.BranchID,
		Items:         r.Items,
		Subtotal:      r.Subtotal,
		Discount:      r.Discount,
		Total:         r.Total,
		PaymentMethod: r.PaymentMethod,
		CreatedAt:     r.CreatedAt,
		CreatedBy:     r.CreatedBy,
	}
}
