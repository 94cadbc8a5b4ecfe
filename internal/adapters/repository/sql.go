package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	// Registers the sqlite3 driver used by OpenSQLite.
	_ "github.com/mattn/go-sqlite3"

	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/pkg/errkind"
)

const createTicketsTable = `CREATE TABLE IF NOT EXISTS tickets (
	uuid TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	latitude TEXT NOT NULL,
	longitude TEXT NOT NULL,
	address TEXT NOT NULL,
	image_urls TEXT NOT NULL,
	total_potholes INTEGER NOT NULL,
	average_risk REAL NOT NULL,
	max_risk REAL NOT NULL,
	critical_count INTEGER NOT NULL,
	high_count INTEGER NOT NULL,
	medium_count INTEGER NOT NULL,
	low_count INTEGER NOT NULL,
	status TEXT NOT NULL,
	priority TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	submitted_at INTEGER
)`

const createTicketsIndex = `CREATE INDEX IF NOT EXISTS tickets_user_created ON tickets (user_id, created_at)`

const ticketColumns = `uuid, user_id, latitude, longitude, address, image_urls, total_potholes, average_risk, max_risk, ` +
	`critical_count, high_count, medium_count, low_count, status, priority, created_at, submitted_at`

// SQLStore keeps tickets in a SQL database. Timestamps are stored as unix
// microseconds.
type SQLStore struct {
	db     *sql.DB
	gauges *gauges
}

// OpenSQLite opens (creating if needed) the sqlite database at path and
// migrates it.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)
	s := NewSQLStore(ctx, db, opts...)
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an open database.
func NewSQLStore(ctx context.Context, db *sql.DB, opts ...Option) *SQLStore {
	s := &SQLStore{db: db}
	s.gauges = startGauges(ctx, s, newStoreOptions(opts))
	return s
}

// Migrate creates the tickets table if missing.
func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range []string{createTicketsTable, createTicketsIndex} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate tickets: %w", err)
		}
	}
	return nil
}

// Close stops the background gauges and closes the database.
func (s *SQLStore) Close() error {
	s.gauges.close()
	return s.db.Close()
}

// Create stores a new ticket.
func (s *SQLStore) Create(ctx context.Context, t model.Ticket) error {
	const op = "repository.SQLStore.Create"
	defer observe("create", time.Now())

	urls, err := json.Marshal(nonNil(t.ImageURLs))
	if err != nil {
		return errkind.Wrap(op, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tickets (`+ticketColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UUID, t.OwnerID, t.Position.LatString(), t.Position.LonString(), t.Address, string(urls),
		t.Aggregate.TotalPotholes, t.Aggregate.AverageRisk, t.Aggregate.MaxRisk,
		t.Aggregate.Detections.Critical, t.Aggregate.Detections.High,
		t.Aggregate.Detections.Medium, t.Aggregate.Detections.Low,
		string(t.Status), string(t.Priority), t.CreatedAt.UnixMicro(), unixMicroOrNil(t.SubmittedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return errkind.WrapKind(op, ErrExists, err)
		}
		return errkind.Wrap(op, err)
	}
	return nil
}

// Get returns one ticket.
func (s *SQLStore) Get(ctx context.Context, uuid string) (model.Ticket, error) {
	const op = "repository.SQLStore.Get"
	defer observe("get", time.Now())

	row := s.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE uuid = ?`, uuid)
	t, err := scanTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Ticket{}, errkind.WrapKind(op, model.ErrNotFound, fmt.Errorf("ticket %s", uuid))
	}
	if err != nil {
		return model.Ticket{}, errkind.Wrap(op, err)
	}
	return t, nil
}

// MarkSubmitted moves a draft to submitted. The status condition makes the
// update a no-op for tickets that are already submitted.
func (s *SQLStore) MarkSubmitted(ctx context.Context, uuid string, at time.Time) (model.Ticket, bool, error) {
	const op = "repository.SQLStore.MarkSubmitted"
	defer observe("submit", time.Now())

	res, err := s.db.ExecContext(ctx,
		`UPDATE tickets SET status = ?, submitted_at = ? WHERE uuid = ? AND status = ?`,
		string(model.StatusSubmitted), at.UnixMicro(), uuid, string(model.StatusDraft))
	if err != nil {
		return model.Ticket{}, false, errkind.Wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Ticket{}, false, errkind.Wrap(op, err)
	}
	t, err := s.Get(ctx, uuid)
	if err != nil {
		return model.Ticket{}, false, errkind.Wrap(op, err)
	}
	return t, n > 0, nil
}

// List returns the filtered page, newest first.
func (s *SQLStore) List(ctx context.Context, f Filter) ([]model.Ticket, int, error) {
	const op = "repository.SQLStore.List"
	defer observe("list", time.Now())
	if !validateFilter(f) {
		return nil, 0, errkind.NewKind(op, ErrInvalidFilter)
	}

	var where []string
	var args []any
	if f.Owner != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.Owner)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets`+clause, args...).Scan(&total); err != nil {
		return nil, 0, errkind.Wrap(op, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets`+clause+` ORDER BY created_at DESC, uuid DESC LIMIT ? OFFSET ?`,
		append(args, f.Limit, f.Skip)...)
	if err != nil {
		return nil, 0, errkind.Wrap(op, err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.Ticket, 0, f.Limit)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, 0, errkind.Wrap(op, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errkind.Wrap(op, err)
	}
	return out, total, nil
}

// CountByStatus returns the number of tickets per status.
func (s *SQLStore) CountByStatus(ctx context.Context) (map[model.Status]int, error) {
	const op = "repository.SQLStore.CountByStatus"
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM tickets GROUP BY status`)
	if err != nil {
		return nil, errkind.Wrap(op, err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[model.Status]int)
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, errkind.Wrap(op, err)
		}
		out[model.Status(st)] = n
	}
	return out, errkind.Wrap(op, rows.Err())
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTicket(r scanner) (model.Ticket, error) {
	var (
		t                model.Ticket
		lat, lon, urls   string
		status, priority string
		created          int64
		submitted        sql.NullInt64
	)
	err := r.Scan(&t.UUID, &t.OwnerID, &lat, &lon, &t.Address, &urls,
		&t.Aggregate.TotalPotholes, &t.Aggregate.AverageRisk, &t.Aggregate.MaxRisk,
		&t.Aggregate.Detections.Critical, &t.Aggregate.Detections.High,
		&t.Aggregate.Detections.Medium, &t.Aggregate.Detections.Low,
		&status, &priority, &created, &submitted)
	if err != nil {
		return model.Ticket{}, err
	}
	pos, err := model.ParsePosition(lat, lon)
	if err != nil {
		return model.Ticket{}, err
	}
	t.Position = pos
	if err := json.Unmarshal([]byte(urls), &t.ImageURLs); err != nil {
		return model.Ticket{}, fmt.Errorf("decode image_urls: %w", err)
	}
	t.Status = model.Status(status)
	t.Priority = model.Priority(priority)
	t.CreatedAt = time.UnixMicro(created).UTC()
	if submitted.Valid {
		at := time.UnixMicro(submitted.Int64).UTC()
		t.SubmittedAt = &at
	}
	return t, nil
}

func unixMicroOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMicro()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
