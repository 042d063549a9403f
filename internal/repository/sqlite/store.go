package sqlite

import (
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"

	"github.com/tigertix/tigertix/internal/repository"
	"github.com/tigertix/tigertix/internal/sqlitepool"
)

// Timestamps are stored as RFC 3339 UTC text with second precision so that
// lexical order matches chronological order.
const timeLayout = time.RFC3339

type Store struct {
	pool *sqlitepool.Pool
}

func NewStore(pool *sqlitepool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Events() *EventRepo { return &EventRepo{pool: s.pool} }
func (s *Store) Users() *UserRepo   { return &UserRepo{pool: s.pool} }

func formatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t.UTC(), nil
}

func wrapDBErr(op string, err error) error {
	if err == nil {
		return nil
	}

	// UNIQUE and CHECK violations both surface as constraint errors.
	if sqlite.ErrCode(err).ToPrimary() == sqlite.ResultConstraint {
		return fmt.Errorf("%s: %w: %v", op, repository.ErrConflict, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}
