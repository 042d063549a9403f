package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tigertix/tigertix/internal/domain"
	sqliterepo "github.com/tigertix/tigertix/internal/repository/sqlite"
	"github.com/tigertix/tigertix/internal/sqlitepool"
	"github.com/tigertix/tigertix/migrations"
)

// NewSQLiteStore opens a fresh file-backed database in a temp directory.
func NewSQLiteStore(t *testing.T) *sqliterepo.Store {
	t.Helper()

	pool, err := sqlitepool.Open(context.Background(), sqlitepool.Config{
		Path:     filepath.Join(t.TempDir(), "tigertix.sqlite"),
		PoolSize: 8,
		Schema:   migrations.SQLiteSchema,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	t.Cleanup(func() {
		_ = pool.Close()
	})

	return sqliterepo.NewStore(pool)
}

// EventSeeder is implemented by the event repositories of every backend.
type EventSeeder interface {
	CreateEvent(ctx context.Context, in domain.EventInput) (*domain.Event, error)
	ReserveTickets(ctx context.Context, id int64, qty int) (*domain.Event, error)
}

// SeedEvent creates an event and sells sold tickets through the regular
// purchase path.
func SeedEvent(t *testing.T, repo EventSeeder, name string, date time.Time, total, sold int) domain.Event {
	t.Helper()
	ctx := context.Background()

	e, err := repo.CreateEvent(ctx, domain.EventInput{Name: name, Date: date, TicketsTotal: total})
	if err != nil {
		t.Fatalf("create event %q: %v", name, err)
	}

	if sold > 0 {
		e, err = repo.ReserveTickets(ctx, e.ID, sold)
		if err != nil {
			t.Fatalf("seed sold tickets for %q: %v", name, err)
		}
	}

	return *e
}

func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
