package sync

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"sync/atomic"
	"time"

	"github.com/jhoicas/cajapos/internal/domain"
	"github.com/jhoicas/cajapos/internal/domain/entity"
	"github.com/jhoicas/cajapos/pkg/logger"
)

// RecordError describe el fallo de replay de una mutación concreta.
// El registro sigue en cola: transitorio o permanente, se reintentará en la
// próxima pasada (la distinción no existe; Attempts la hace observable).
type RecordError struct {
	RecordID string
	Kind     entity.EntityKind
	Op       entity.OperationKind
	Err      error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("mutación %s (%s %s): %v", e.RecordID, e.Op, e.Kind, e.Err)
}

func (e RecordError) Unwrap() error { return e.Err }

// Report resume una pasada de replay.
type Report struct {
	Attempted int           `json:"attempted"`
	Applied   int           `json:"applied"`
	Failed    int           `json:"failed"`
	Errors    []RecordError `json:"-"`
}

// Status es la instantánea que expone la ruta de estado de sincronización.
type Status struct {
	Pending  int  `json:"pending"`
	Online   bool `json:"online"`
	Draining bool `json:"draining"`
}

// Dispatcher reproduce la cola de mutaciones contra el servicio central.
// Dispara pasadas en tres casos: transición offline->online, encolado con
// conexión activa y Flush manual. Una sola pasada corre a la vez (CAS).
type Dispatcher struct {
	queue   MutationQueue
	remote  RemoteService
	monitor *Monitor
	log     *logger.Logger
	timeout time.Duration

	draining atomic.Bool

	mu     stdsync.Mutex // protege ctx/cancel/unsub frente a Start/Close
	ctx    context.Context
	cancel context.CancelFunc
	unsub  func()
	wg     stdsync.WaitGroup
}

// NewDispatcher construye el dispatcher. timeout acota cada llamada remota
// durante el replay; si es <= 0 se usan 30s.
func NewDispatcher(queue MutationQueue, remote RemoteService, monitor *Monitor, log *logger.Logger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{
		queue:   queue,
		remote:  remote,
		monitor: monitor,
		log:     log.Component("dispatcher"),
		timeout: timeout,
	}
}

// Start suscribe el dispatcher al monitor de conectividad y lanza el
// observador de reconexiones. Debe emparejarse con Close.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctx != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	d.ctx = runCtx
	d.cancel = cancel

	ch, unsub := d.monitor.Subscribe()
	d.unsub = unsub

	d.wg.Add(1)
	go d.watch(runCtx, ch)
}

// Close cancela las pasadas en curso, se da de baja del monitor y espera a
// que todas las goroutines terminen.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.unsub != nil {
		d.unsub()
		d.unsub = nil
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// watch drena la cola en cada transición a online. La pasada corre dentro de
// esta misma goroutine: una reconexión durante un drain no apila pasadas.
func (d *Dispatcher) watch(ctx context.Context, ch <-chan bool) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case online := <-ch:
			// Reconsultar: el canal coalesce transiciones y puede llegar tarde
			if !online || !d.monitor.Online() {
				continue
			}
			d.drainLogged(ctx, "reconexión")
		}
	}
}

// Enqueue valida y persiste la mutación. Con conexión activa dispara además
// una pasada en segundo plano; sin conexión el registro solo queda durable.
func (d *Dispatcher) Enqueue(ctx context.Context, rec *entity.MutationRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("encolar mutación: %w", err)
	}
	if err := d.queue.Enqueue(ctx, rec); err != nil {
		return fmt.Errorf("encolar mutación: %w", err)
	}
	d.log.Debug().Str("id", rec.ID).Str("kind", string(rec.Kind)).Str("op", string(rec.Op)).Msg("mutación encolada")

	if d.monitor.Online() {
		d.kick()
	}
	return nil
}

// kick lanza una pasada asíncrona ligada al ciclo de vida del dispatcher.
// Antes de Start (o después de Close) no hay ciclo de vida: no se dispara.
func (d *Dispatcher) kick() {
	d.mu.Lock()
	ctx := d.ctx
	if ctx == nil || ctx.Err() != nil {
		d.mu.Unlock()
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		d.drainLogged(ctx, "encolado online")
	}()
}

// drainLogged ejecuta una pasada en un camino automático: el resultado se
// materializa completo y se registra, pero no hay caller a quien devolverlo.
func (d *Dispatcher) drainLogged(ctx context.Context, trigger string) {
	rep, err := d.Drain(ctx)
	if err != nil {
		d.log.Warn().Err(err).Str("trigger", trigger).Msg("pasada de replay abortada")
		return
	}
	if rep.Attempted == 0 {
		return
	}
	evt := d.log.Info()
	if rep.Failed > 0 {
		evt = d.log.Warn()
	}
	evt.Str("trigger", trigger).
		Int("attempted", rep.Attempted).
		Int("applied", rep.Applied).
		Int("failed", rep.Failed).
		Msg("pasada de replay")
	for _, re := range rep.Errors {
		d.log.Debug().Str("id", re.RecordID).Err(re.Err).Msg("mutación pendiente")
	}
}

// Drain ejecuta una pasada de replay sobre una instantánea de la cola, en
// orden. Cada registro se intenta con su propio timeout; el fallo de uno no
// detiene la pasada ni toca a los demás. Si ya hay una pasada en curso
// devuelve un reporte vacío sin error (single-flight). Un nodo sin servicio
// central configurado (remote nil) no drena: las mutaciones quedan en cola.
func (d *Dispatcher) Drain(ctx context.Context) (Report, error) {
	if d.remote == nil {
		return Report{}, domain.ErrRemoteDisabled
	}
	if !d.draining.CompareAndSwap(false, true) {
		return Report{}, nil
	}
	defer d.draining.Store(false)

	records, err := d.queue.LoadAll(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("cargar cola: %w", err)
	}

	var rep Report
	for _, rec := range records {
		rep.Attempted++
		if err := d.applyOne(ctx, rec); err != nil {
			rep.Failed++
			rep.Errors = append(rep.Errors, RecordError{
				RecordID: rec.ID,
				Kind:     rec.Kind,
				Op:       rec.Op,
				Err:      err,
			})
			continue
		}
		rep.Applied++
	}
	return rep, nil
}

// Flush ejecuta una pasada manual. A diferencia de los caminos automáticos,
// aquí sí hay caller: los fallos por registro se agregan y se devuelven.
func (d *Dispatcher) Flush(ctx context.Context) (Report, error) {
	rep, err := d.Drain(ctx)
	if err != nil {
		return rep, err
	}
	if rep.Failed > 0 {
		errs := make([]error, 0, len(rep.Errors))
		for _, re := range rep.Errors {
			errs = append(errs, re)
		}
		return rep, errors.Join(errs...)
	}
	return rep, nil
}

// Status devuelve la instantánea de la cola y la conectividad.
func (d *Dispatcher) Status(ctx context.Context) (Status, error) {
	n, err := d.queue.Len(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("tamaño de cola: %w", err)
	}
	return Status{
		Pending:  n,
		Online:   d.monitor.Online(),
		Draining: d.draining.Load(),
	}, nil
}

// applyOne reproduce una mutación: marca el intento, resuelve el cliente por
// kind, llama al remoto con timeout propio y retira el registro solo tras el
// éxito confirmado. Un retiro fallido deja el registro en cola; el remoto es
// idempotente y tolera la reaplicación.
func (d *Dispatcher) applyOne(ctx context.Context, rec *entity.MutationRecord) error {
	if err := d.queue.MarkAttempt(ctx, rec.ID); err != nil {
		// El contador es observabilidad pura: su fallo no frena el replay
		d.log.Debug().Err(err).Str("id", rec.ID).Msg("no se pudo marcar intento")
	}

	client, err := d.remote.Entity(rec.Kind)
	if err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	switch rec.Op {
	case entity.OpInsert:
		err = client.Insert(callCtx, rec.Payload)
	case entity.OpUpdate:
		err = client.Update(callCtx, rec.Payload)
	case entity.OpDelete:
		err = client.Delete(callCtx, rec.Payload)
	default:
		err = fmt.Errorf("op sin ruta: %q", rec.Op)
	}
	if err != nil {
		return err
	}

	if err := d.queue.RemoveOne(ctx, rec.ID); err != nil {
		return fmt.Errorf("retirar mutación aplicada: %w", err)
	}
	return nil
}
