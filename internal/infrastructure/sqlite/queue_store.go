package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	appsync "github.com/jhoicas/cajapos/internal/application/sync"
	"github.com/jhoicas/cajapos/internal/domain"
	"github.com/jhoicas/cajapos/internal/domain/entity"
)

var _ appsync.MutationQueue = (*QueueStore)(nil)

// created_at se persiste como texto y el orden de replay es un ORDER BY
// sobre esa columna, así que la fracción de segundo va con ancho fijo:
// RFC3339Nano recorta ceros finales y como texto "…00.5Z" ordenaría
// después de "…00.500001Z".
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

const queueSchema = `
CREATE TABLE IF NOT EXISTS mutations (
    seq        INTEGER PRIMARY KEY AUTOINCREMENT,
    id         TEXT NOT NULL UNIQUE,
    kind       TEXT NOT NULL,
    op         TEXT NOT NULL,
    payload    TEXT NOT NULL,
    created_at TEXT NOT NULL,
    attempts   INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_mutations_order ON mutations (created_at, seq);
`

// QueueStore es la cola durable de mutaciones sobre un archivo SQLite local.
// Cada Enqueue y RemoveOne es una escritura confirmada: cuando el método
// devuelve nil, el registro está (o dejó de estar) en disco. Un reinicio del
// proceso rehidrata la cola completa desde el archivo.
type QueueStore struct {
	db *sql.DB
}

// Open abre (o crea) el archivo de la cola, aplica pragmas y asegura el
// esquema antes de devolver: quien recibe el store ya puede despachar.
func Open(path string) (*QueueStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create queue dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open queue db: %w", err)
	}
	// Un solo descriptor: SQLite serializa escritores y así no hay SQLITE_BUSY
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma: %w", err)
		}
	}

	if _, err := db.Exec(queueSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure queue schema: %w", err)
	}
	return &QueueStore{db: db}, nil
}

// Close cierra el archivo de la cola.
func (s *QueueStore) Close() error {
	return s.db.Close()
}

// Enqueue persiste la mutación al final de la cola.
func (s *QueueStore) Enqueue(ctx context.Context, rec *entity.MutationRecord) error {
	query := `
		INSERT INTO mutations (id, kind, op, payload, created_at, attempts)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, string(rec.Kind), string(rec.Op), string(rec.Payload),
		rec.CreatedAt.UTC().Format(createdAtLayout), rec.Attempts,
	)
	if err != nil {
		return fmt.Errorf("enqueue mutation: %w", err)
	}
	return nil
}

// LoadAll devuelve la cola completa en orden de reproducción: fecha de
// creación ascendente, con el orden de inserción como desempate.
func (s *QueueStore) LoadAll(ctx context.Context) ([]*entity.MutationRecord, error) {
	query := `
		SELECT id, kind, op, payload, created_at, attempts
		FROM mutations
		ORDER BY created_at ASC, seq ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load mutations: %w", err)
	}
	defer rows.Close()

	var out []*entity.MutationRecord
	for rows.Next() {
		var (
			rec       entity.MutationRecord
			kind, op  string
			payload   string
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &kind, &op, &payload, &createdAt, &rec.Attempts); err != nil {
			return nil, fmt.Errorf("scan mutation: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse mutation timestamp: %w", err)
		}
		rec.Kind = entity.EntityKind(kind)
		rec.Op = entity.OperationKind(op)
		rec.Payload = json.RawMessage(payload)
		rec.CreatedAt = ts
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// RemoveOne retira una mutación ya aplicada.
func (s *QueueStore) RemoveOne(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM mutations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove mutation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove mutation: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("remove mutation %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// MarkAttempt incrementa el contador de intentos de un registro. El contador
// es observabilidad: no condiciona el reintento.
func (s *QueueStore) MarkAttempt(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE mutations SET attempts = attempts + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark attempt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark attempt: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("mark attempt %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Clear vacía la cola. Pensado para pruebas y para reaprovisionar un nodo.
func (s *QueueStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM mutations`); err != nil {
		return fmt.Errorf("clear mutations: %w", err)
	}
	return nil
}

// Len devuelve cuántas mutaciones esperan réplica.
func (s *QueueStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM mutations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("len mutations: %w", err)
	}
	return n, nil
}
