package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jknair0/beforeeach"
	"github.com/okian/roadreport/internal/domain/model"
)

var (
	db   *sql.DB
	mock sqlmock.Sqlmock
)

func setUp() {
	db, mock, _ = sqlmock.New()
}

func tearDown() {
	_ = db.Close()
}

var it = beforeeach.Create(setUp, tearDown)

var columns = []string{"uuid", "user_id", "latitude", "longitude", "address", "image_urls", "total_potholes",
	"average_risk", "max_risk", "critical_count", "high_count", "medium_count", "low_count", "status", "priority",
	"created_at", "submitted_at"}

func newTestSQLStore() *SQLStore {
	return &SQLStore{db: db, gauges: &gauges{stop: make(chan struct{})}}
}

func ticketRow(rows *sqlmock.Rows, id, status string, submitted any) *sqlmock.Rows {
	return rows.AddRow(id, "owner-1", "55.7558", "37.6173", "Tverskaya 1", `["https://img/`+id+`.jpg"]`,
		3, 40.0, 70.0, 1, 0, 2, 0, status, "critical", baseTime.UnixMicro(), submitted)
}

func TestSQLStoreCreate(t *testing.T) {
	it(func() {
		testCases := []struct {
			name      string
			execErr   error
			wantErr   bool
			wantExist bool
		}{
			{name: "Insert draft"},
			{name: "Duplicate uuid", execErr: errors.New("UNIQUE constraint failed: tickets.uuid"), wantErr: true, wantExist: true},
			{name: "Driver failure", execErr: errors.New("disk I/O error"), wantErr: true},
		}

		for _, tc := range testCases {
			tk := testTicket("t-1", "owner-1", 0)
			exp := mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tickets ("+ticketColumns+")")).
				WithArgs("t-1", "owner-1", "55.7558", "37.6173", "Tverskaya 1", `["https://img/t-1.jpg"]`,
					3, 40.0, 70.0, 1, 0, 2, 0, "draft", "critical", baseTime.UnixMicro(), nil)
			if tc.execErr != nil {
				exp.WillReturnError(tc.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(1, 1))
			}

			err := newTestSQLStore().Create(context.Background(), tk)
			if tc.wantErr != (err != nil) {
				t.Errorf("%s: expected error: %v, got: %v", tc.name, tc.wantErr, err)
			}
			if tc.wantExist != errors.Is(err, ErrExists) {
				t.Errorf("%s: expected ErrExists: %v, got: %v", tc.name, tc.wantExist, err)
			}
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestSQLStoreGet(t *testing.T) {
	it(func() {
		query := regexp.QuoteMeta("SELECT " + ticketColumns + " FROM tickets WHERE uuid = ?")
		mock.ExpectQuery(query).WithArgs("t-1").
			WillReturnRows(ticketRow(sqlmock.NewRows(columns), "t-1", "draft", nil))
		mock.ExpectQuery(query).WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(columns))

		s := newTestSQLStore()
		got, err := s.Get(context.Background(), "t-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := testTicket("t-1", "owner-1", 0)
		if got.Position != want.Position || got.Aggregate != want.Aggregate || got.ImageURLs[0] != want.ImageURLs[0] {
			t.Errorf("unexpected ticket: %+v", got)
		}
		if !got.CreatedAt.Equal(baseTime) || got.SubmittedAt != nil {
			t.Errorf("unexpected timestamps: %v %v", got.CreatedAt, got.SubmittedAt)
		}

		if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, model.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestSQLStoreMarkSubmitted(t *testing.T) {
	it(func() {
		at := baseTime.Add(time.Hour)
		update := regexp.QuoteMeta("UPDATE tickets SET status = ?, submitted_at = ? WHERE uuid = ? AND status = ?")
		get := regexp.QuoteMeta("SELECT " + ticketColumns + " FROM tickets WHERE uuid = ?")

		mock.ExpectExec(update).WithArgs("submitted", at.UnixMicro(), "t-1", "draft").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(get).WithArgs("t-1").
			WillReturnRows(ticketRow(sqlmock.NewRows(columns), "t-1", "submitted", at.UnixMicro()))

		mock.ExpectExec(update).WithArgs("submitted", sqlmock.AnyArg(), "t-1", "draft").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(get).WithArgs("t-1").
			WillReturnRows(ticketRow(sqlmock.NewRows(columns), "t-1", "submitted", at.UnixMicro()))

		s := newTestSQLStore()
		tk, changed, err := s.MarkSubmitted(context.Background(), "t-1", at)
		if err != nil || !changed {
			t.Fatalf("expected change, got changed=%v err=%v", changed, err)
		}
		if tk.SubmittedAt == nil || !tk.SubmittedAt.Equal(at) {
			t.Errorf("expected submitted_at %v, got %v", at, tk.SubmittedAt)
		}

		tk, changed, err = s.MarkSubmitted(context.Background(), "t-1", at.Add(time.Hour))
		if err != nil || changed {
			t.Fatalf("expected no-op, got changed=%v err=%v", changed, err)
		}
		if !tk.SubmittedAt.Equal(at) {
			t.Errorf("expected submitted_at to stay %v, got %v", at, tk.SubmittedAt)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestSQLStoreList(t *testing.T) {
	it(func() {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tickets WHERE user_id = ? AND status = ?")).
			WithArgs("owner-1", "draft").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
		rows := sqlmock.NewRows(columns)
		ticketRow(rows, "t-2", "draft", nil)
		ticketRow(rows, "t-1", "draft", nil)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT "+ticketColumns+
			" FROM tickets WHERE user_id = ? AND status = ? ORDER BY created_at DESC, uuid DESC LIMIT ? OFFSET ?")).
			WithArgs("owner-1", "draft", 2, 4).
			WillReturnRows(rows)

		s := newTestSQLStore()
		page, total, err := s.List(context.Background(), Filter{Owner: "owner-1", Status: model.StatusDraft, Skip: 4, Limit: 2})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if total != 12 || len(page) != 2 || page[0].UUID != "t-2" {
			t.Errorf("unexpected page: total=%d items=%v", total, ids(page))
		}

		if _, _, err := s.List(context.Background(), Filter{Skip: -1, Limit: 5}); !errors.Is(err, ErrInvalidFilter) {
			t.Errorf("expected ErrInvalidFilter, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestSQLStoreCountByStatus(t *testing.T) {
	it(func() {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) FROM tickets GROUP BY status")).
			WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("draft", 3).AddRow("submitted", 2))

		counts, err := newTestSQLStore().CountByStatus(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if counts[model.StatusDraft] != 3 || counts[model.StatusSubmitted] != 2 {
			t.Errorf("unexpected counts: %v", counts)
		}
	})
}

func TestSQLStoreMigrate(t *testing.T) {
	it(func() {
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS tickets")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS tickets_user_created")).WillReturnResult(sqlmock.NewResult(0, 0))

		if err := newTestSQLStore().Migrate(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}
