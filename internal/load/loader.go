// Package load writes the cleaned fire-incident table into the PostgreSQL
// warehouse using pgx v5. Dimensions are deduplicated and upserted by natural
// key first, the fact table is filled with sequential COPY batches, and a
// separate reconciliation step back-fills the fact foreign keys.
package load

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"fireetl/internal/transform"
	"fireetl/pkg/records"
)

// Error kinds. Callers classify failures with errors.Is.
var (
	// ErrConnection reports an unreachable warehouse.
	ErrConnection = errors.New("database unreachable")
	// ErrLoad reports a failed batch insert. Batches committed before the
	// failure stay in place; there is no cross-batch rollback.
	ErrLoad = errors.New("batch load failed")
)

// Loader owns the warehouse connection pool and the load configuration.
type Loader struct {
	pool      *pgxpool.Pool
	batchSize int
}

// New connects a Loader to the warehouse. The returned func closes the pool.
func New(ctx context.Context, dsn string, batchSize int) (*Loader, func(), error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: pgxpool: %v", ErrConnection, err)
	}
	return &Loader{pool: pool, batchSize: batchSize}, pool.Close, nil
}

// TestConnection verifies the warehouse is reachable before any stage writes.
func (l *Loader) TestConnection(ctx context.Context) error {
	var version string
	if err := l.pool.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	log.Printf("loader: database connection successful: %s", version)
	return nil
}

// BootstrapSchema creates the dimension and fact tables if they do not exist.
func (l *Loader) BootstrapSchema(ctx context.Context) error {
	if _, err := l.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	log.Printf("loader: tables created: %s", strings.Join(warehouseTables, ", "))
	return nil
}

// PopulateDimensions deduplicates the three dimensions by natural key
// (keep-first) and upserts them. The natural-key conflict target makes the
// upsert idempotent across reruns.
func (l *Loader) PopulateDimensions(ctx context.Context, t *records.Table) error {
	if err := l.upsertEventTypes(ctx, t); err != nil {
		return err
	}
	if err := l.upsertResponseCodes(ctx, t); err != nil {
		return err
	}
	return l.upsertNeighbourhoods(ctx, t)
}

func (l *Loader) upsertEventTypes(ctx context.Context, t *records.Table) error {
	type dim struct{ code, description any }
	seen := map[string]struct{}{}
	var rows []dim
	for _, rec := range t.Rows {
		code, ok := rec.StringOK("event_type_group")
		if !ok {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		desc := rec["event_description"]
		if records.IsNull(desc) {
			desc = "UNKNOWN"
		}
		rows = append(rows, dim{code: code, description: desc})
	}

	b := &pgx.Batch{}
	for _, d := range rows {
		b.Queue(`INSERT INTO dim_event_types (event_type_code, event_description)
		         VALUES ($1, $2)
		         ON CONFLICT (event_type_code) DO NOTHING`, d.code, d.description)
	}
	if err := l.sendBatch(ctx, b); err != nil {
		return fmt.Errorf("upsert dim_event_types: %w", err)
	}
	log.Printf("loader: upserted %d records into dim_event_types", len(rows))
	return nil
}

func (l *Loader) upsertResponseCodes(ctx context.Context, t *records.Table) error {
	seen := map[string]struct{}{}
	var codes []string
	for _, rec := range t.Rows {
		code, ok := rec.StringOK("response_code")
		if !ok {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}

	b := &pgx.Batch{}
	for _, code := range codes {
		b.Queue(`INSERT INTO dim_response_codes (response_code, response_description)
		         VALUES ($1, NULL)
		         ON CONFLICT (response_code) DO NOTHING`, code)
	}
	if err := l.sendBatch(ctx, b); err != nil {
		return fmt.Errorf("upsert dim_response_codes: %w", err)
	}
	log.Printf("loader: upserted %d records into dim_response_codes", len(codes))
	return nil
}

func (l *Loader) upsertNeighbourhoods(ctx context.Context, t *records.Table) error {
	type dim struct {
		id   int64
		name any
	}
	seen := map[int64]struct{}{}
	var rows []dim
	for _, rec := range t.Rows {
		id, ok := rec.IntOK("neighbourhood_id")
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		rows = append(rows, dim{id: id, name: rec["neighbourhood_name"]})
	}

	b := &pgx.Batch{}
	for _, d := range rows {
		b.Queue(`INSERT INTO dim_neighbourhoods (neighbourhood_id, neighbourhood_name)
		         VALUES ($1, $2)
		         ON CONFLICT (neighbourhood_id) DO NOTHING`, d.id, d.name)
	}
	if err := l.sendBatch(ctx, b); err != nil {
		return fmt.Errorf("upsert dim_neighbourhoods: %w", err)
	}
	log.Printf("loader: upserted %d records into dim_neighbourhoods", len(rows))
	return nil
}

// sendBatch executes a queued batch and drains every result.
func (l *Loader) sendBatch(ctx context.Context, b *pgx.Batch) error {
	if b.Len() == 0 {
		return nil
	}
	br := l.pool.SendBatch(ctx, b)
	defer br.Close()
	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// timeOfDayColumns hold time-of-day cells that must be encoded as
// microseconds-since-midnight for the warehouse TIME columns.
var timeOfDayColumns = map[string]struct{}{
	"dispatch_time":    {},
	"event_close_time": {},
}

// LoadFacts pushes the prepared table into fire_incidents with sequential
// COPY batches of the configured size. Returns the number of rows inserted;
// on error, already-committed batches are left in place.
func (l *Loader) LoadFacts(ctx context.Context, t *records.Table) (int64, error) {
	rows := make([][]any, 0, t.Len())
	for _, rec := range t.Rows {
		row := make([]any, len(transform.DBColumns))
		for i, col := range transform.DBColumns {
			row[i] = copyValue(col, rec[col])
		}
		rows = append(rows, row)
	}

	log.Printf("loader: loading %d records into fire_incidents in batches of %d", len(rows), l.batchSize)

	copyFn := func(ctx context.Context, columns []string, batch [][]any) (int64, error) {
		return l.pool.CopyFrom(ctx, pgx.Identifier{"fire_incidents"}, columns, pgx.CopyFromRows(batch))
	}

	total, err := LoadBatches(ctx, transform.DBColumns, rows, l.batchSize, copyFn)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return total, fmt.Errorf("%w: %s (%s)", ErrLoad, pgErr.Detail, pgErr.SQLState())
		}
		return total, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	log.Printf("loader: successfully loaded %d records into fire_incidents", total)
	return total, nil
}

// copyValue adapts a cell for pgx COPY encoding. Time-of-day cells become
// pgtype.Time; everything else passes through (nil stays nil).
func copyValue(col string, v any) any {
	if _, ok := timeOfDayColumns[col]; !ok {
		return v
	}
	ts, ok := v.(time.Time)
	if !ok {
		return nil
	}
	midnight := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
	return pgtype.Time{Microseconds: ts.Sub(midnight).Microseconds(), Valid: true}
}

// ReconcileForeignKeys back-fills the fact-table foreign keys by joining on
// natural keys. Only rows whose foreign key is still unset are touched, so
// re-running is a no-op. Returns the total rows updated.
func (l *Loader) ReconcileForeignKeys(ctx context.Context) (int64, error) {
	var total int64

	tag, err := l.pool.Exec(ctx, `
		UPDATE fire_incidents fi
		SET event_type_id = et.event_type_id
		FROM dim_event_types et
		WHERE fi.event_type_group = et.event_type_code
		AND fi.event_type_id IS NULL`)
	if err != nil {
		return total, fmt.Errorf("update event_type_id: %w", err)
	}
	log.Printf("loader: updated event_type_id for %d records", tag.RowsAffected())
	total += tag.RowsAffected()

	tag, err = l.pool.Exec(ctx, `
		UPDATE fire_incidents fi
		SET response_code_id = rc.response_code_id
		FROM dim_response_codes rc
		WHERE fi.response_code = rc.response_code
		AND fi.response_code_id IS NULL`)
	if err != nil {
		return total, fmt.Errorf("update response_code_id: %w", err)
	}
	log.Printf("loader: updated response_code_id for %d records", tag.RowsAffected())
	total += tag.RowsAffected()

	return total, nil
}

// TableStats is per-table row-count/size introspection for post-load checks.
type TableStats struct {
	Table    string
	RowCount int64
	Size     string
}

// Stats returns row count and on-disk size for one warehouse table.
func (l *Loader) Stats(ctx context.Context, table string) (TableStats, error) {
	st := TableStats{Table: table}
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s", pgIdent(table))
	if err := l.pool.QueryRow(ctx, q).Scan(&st.RowCount); err != nil {
		return st, fmt.Errorf("count %s: %w", table, err)
	}
	err := l.pool.QueryRow(ctx,
		"SELECT pg_size_pretty(pg_total_relation_size($1))", table).Scan(&st.Size)
	if err != nil {
		return st, fmt.Errorf("size %s: %w", table, err)
	}
	return st, nil
}

// VerifyLoad logs row counts and sizes for every warehouse table.
func (l *Loader) VerifyLoad(ctx context.Context) error {
	for _, table := range warehouseTables {
		st, err := l.Stats(ctx, table)
		if err != nil {
			return err
		}
		log.Printf("loader: %s: %d rows, %s", st.Table, st.RowCount, st.Size)
	}
	return nil
}

// TruncateAll empties every warehouse table. Destructive; gated behind an
// explicit flag in the CLI.
func (l *Loader) TruncateAll(ctx context.Context) error {
	stmt := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(mapIdent(warehouseTables), ", "))
	if _, err := l.pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	log.Printf("loader: all tables truncated")
	return nil
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// mapIdent maps a list of identifiers to their quoted forms.
func mapIdent(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = pgIdent(id)
	}
	return out
}
