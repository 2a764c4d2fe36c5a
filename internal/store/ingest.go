// Package store loads decoded rows into Postgres.
//
// The Ingestor creates a table matching a decoded stream's schema and bulk
// loads rows with the COPY protocol. Rows that fail to decode are recorded,
// not fatal, matching the row-scoped error model of the reader.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/metacsv/go-mcsv"
)

// DBTX is the subset of pgx connection behavior the store needs. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so ingestion can run inside or
// outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Ingestor bulk loads typed CSV streams into Postgres tables.
type Ingestor struct {
	db            DBTX
	batchSize     int
	maxFailedRows int
	logger        *slog.Logger
}

// NewIngestor returns an Ingestor copying batchSize rows at a time. The
// ingest aborts once more than maxFailedRows rows fail to decode.
func NewIngestor(db DBTX, batchSize, maxFailedRows int, logger *slog.Logger) *Ingestor {
	if batchSize <= 0 {
		batchSize = 1000
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{
		db:            db,
		batchSize:     batchSize,
		maxFailedRows: maxFailedRows,
		logger:        logger,
	}
}

// FailedRow records one data row that could not be decoded.
type FailedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Result summarizes one ingest run.
type Result struct {
	JobID    uuid.UUID   `json:"job_id"`
	Table    string      `json:"table"`
	Columns  []string    `json:"columns"`
	Inserted int64       `json:"inserted"`
	Failed   []FailedRow `json:"failed,omitempty"`
}

// ErrTooManyFailedRows aborts an ingest whose failure count exceeds the
// configured ceiling.
var ErrTooManyFailedRows = errors.New("store: too many rows failed to decode")

var tableNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Ingest creates the target table from the reader's schema (if it does not
// exist) and copies every decodable row into it. Decode failures become
// FailedRow entries; any other reader error aborts the ingest.
func (ing *Ingestor) Ingest(ctx context.Context, table string, r *mcsv.Reader) (*Result, error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("store: invalid table name %q", table)
	}

	names := r.Header()
	kinds := r.DataTypes()
	if len(names) == 0 {
		return nil, errors.New("store: stream has no columns")
	}

	if err := ing.createTable(ctx, table, names, kinds); err != nil {
		return nil, err
	}

	res := &Result{
		JobID:   uuid.New(),
		Table:   table,
		Columns: names,
	}
	log := ing.logger.With("job_id", res.JobID, "table", table)
	log.Info("ingest started", "columns", len(names))

	batch := make([][]any, 0, ing.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := ing.db.CopyFrom(ctx, pgx.Identifier{table}, names, pgx.CopyFromRows(batch))
		if err != nil {
			return fmt.Errorf("store: copy into %s: %w", table, err)
		}
		res.Inserted += n
		batch = batch[:0]
		return nil
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		var de *mcsv.DecodeError
		if errors.As(err, &de) {
			res.Failed = append(res.Failed, FailedRow{Row: de.Row, Reason: de.Error()})
			if len(res.Failed) > ing.maxFailedRows {
				return nil, fmt.Errorf("%w: %d", ErrTooManyFailedRows, len(res.Failed))
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("store: read row: %w", err)
		}

		pgRow, err := PgRow(row)
		if err != nil {
			return nil, err
		}
		batch = append(batch, pgRow)
		if len(batch) >= ing.batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	log.Info("ingest finished", "inserted", res.Inserted, "failed", len(res.Failed))
	return res, nil
}

func (ing *Ingestor) createTable(ctx context.Context, table string, names []string, kinds []mcsv.DataType) error {
	cols := make([]string, len(names))
	for i, name := range names {
		cols[i] = pgx.Identifier{name}.Sanitize() + " " + ColumnType(kinds[i])
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		pgx.Identifier{table}.Sanitize(), strings.Join(cols, ", "))
	if _, err := ing.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("store: create table %s: %w", table, err)
	}
	return nil
}
