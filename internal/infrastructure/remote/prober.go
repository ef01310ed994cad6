package remote

import (
	"context"
	"io"
	"net/http"
	"strings"
	stdsync "sync"
	"time"

	appsync "github.com/jhoicas/cajapos/internal/application/sync"
	"github.com/jhoicas/cajapos/pkg/config"
	"github.com/jhoicas/cajapos/pkg/logger"
)

// Prober sondea GET /health del servicio central a intervalo fijo y alimenta
// el monitor de conectividad. Es la única fuente automática de transiciones
// online/offline; el monitor arranca offline hasta la primera sonda exitosa.
type Prober struct {
	healthURL  string
	apiKey     string
	interval   time.Duration
	httpClient *http.Client
	monitor    *appsync.Monitor
	log        *logger.Logger

	mu     stdsync.Mutex // protege ctx/cancel frente a Start/Close
	ctx    context.Context
	cancel context.CancelFunc
	wg     stdsync.WaitGroup
}

// NewProber construye la sonda de salud. Si el intervalo configurado es
// <= 0 se usan 30s; el timeout por sonda es siempre más corto que el
// intervalo para que nunca se apilen.
func NewProber(cfg config.RemoteConfig, monitor *appsync.Monitor, log *logger.Logger) *Prober {
	interval := cfg.ProbeInterval()
	if interval <= 0 {
		interval = 30 * time.Second
	}
	timeout := interval / 2
	if timeout > 5*time.Second {
		timeout = 5 * time.Second
	}
	return &Prober{
		healthURL:  strings.TrimRight(cfg.BaseURL, "/") + "/health",
		apiKey:     cfg.APIKey,
		interval:   interval,
		httpClient: &http.Client{Timeout: timeout},
		monitor:    monitor,
		log:        log.Component("prober"),
	}
}

// Start lanza la sonda en segundo plano. La primera medición es inmediata:
// el nodo no espera un intervalo completo para enterarse de que hay red.
// Debe emparejarse con Close.
func (p *Prober) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctx != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.ctx = runCtx
	p.cancel = cancel

	p.wg.Add(1)
	go p.loop(runCtx)
}

// Close detiene la sonda, espera a que el loop termine y suelta las
// conexiones ociosas.
func (p *Prober) Close() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()
	p.wg.Wait()
	p.httpClient.CloseIdleConnections()
}

func (p *Prober) loop(ctx context.Context) {
	defer p.wg.Done()

	p.probe(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.probe(ctx)
		}
	}
}

// probe mide una vez y publica el resultado. El monitor ya coalesce estados
// repetidos; el log solo registra transiciones.
func (p *Prober) probe(ctx context.Context) {
	online := p.healthy(ctx)
	was := p.monitor.Online()
	p.monitor.SetOnline(online)
	if online != was {
		p.log.Info().Bool("online", online).Msg("cambio de conectividad")
	}
}

func (p *Prober) healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.healthURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("X-API-Key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	return resp.StatusCode == http.StatusOK
}
