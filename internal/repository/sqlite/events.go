package sqlite

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/tigertix/tigertix/internal/domain"
	"github.com/tigertix/tigertix/internal/repository"
	"github.com/tigertix/tigertix/internal/sqlitepool"
)

const eventColumns = `id, name, date, tickets_total, tickets_sold`

type EventRepo struct {
	pool *sqlitepool.Pool
}

func scanEvent(stmt *sqlite.Stmt) (domain.Event, error) {
	date, err := parseTime(stmt.ColumnText(2))
	if err != nil {
		return domain.Event{}, err
	}

	return domain.Event{
		ID:           stmt.ColumnInt64(0),
		Name:         stmt.ColumnText(1),
		Date:         date,
		TicketsTotal: stmt.ColumnInt(3),
		TicketsSold:  stmt.ColumnInt(4),
	}, nil
}

// queryEvent runs query and returns its single event row, or nil when the
// statement produced no rows.
func queryEvent(conn *sqlite.Conn, query string, args ...any) (*domain.Event, error) {
	var found *domain.Event
	err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			e, err := scanEvent(stmt)
			if err != nil {
				return err
			}
			found = &e
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	return found, nil
}

func (r *EventRepo) ListEvents(ctx context.Context) ([]domain.Event, error) {
	const op = "sqlite.EventRepo.ListEvents"

	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer r.pool.Put(conn)

	events := make([]domain.Event, 0)
	err = sqlitex.Execute(conn,
		`SELECT `+eventColumns+` FROM events ORDER BY date ASC, id ASC`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				e, err := scanEvent(stmt)
				if err != nil {
					return err
				}
				events = append(events, e)
				return nil
			},
		},
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return events, nil
}

// GetEvent returns repository.ErrNotFound if the event does not exist.
func (r *EventRepo) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	const op = "sqlite.EventRepo.GetEvent"

	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer r.pool.Put(conn)

	e, err := queryEvent(conn, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	if e == nil {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return e, nil
}

func (r *EventRepo) CreateEvent(ctx context.Context, in domain.EventInput) (*domain.Event, error) {
	const op = "sqlite.EventRepo.CreateEvent"

	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer r.pool.Put(conn)

	e, err := queryEvent(conn,
		`INSERT INTO events (name, date, tickets_total, tickets_sold)
		 VALUES (?, ?, ?, 0)
		 RETURNING `+eventColumns,
		in.Name, formatTime(in.Date), in.TicketsTotal,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return e, nil
}

// UpdateEvent overwrites the admin-editable fields of an event unless the new
// total would fall below tickets_sold.
//
// Returns:
//   - error: repository.ErrNotFound if the event does not exist.
//   - error: repository.ErrTotalBelowSold if in.TicketsTotal < tickets_sold.
func (r *EventRepo) UpdateEvent(ctx context.Context, id int64, in domain.EventInput) (updated *domain.Event, err error) {
	const op = "sqlite.EventRepo.UpdateEvent"

	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer r.pool.Put(conn)

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer endFn(&err)

	updated, err = queryEvent(conn,
		`UPDATE events
		 SET name = ?, date = ?, tickets_total = ?
		 WHERE id = ? AND tickets_sold <= ?
		 RETURNING `+eventColumns,
		in.Name, formatTime(in.Date), in.TicketsTotal, id, in.TicketsTotal,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	if updated != nil {
		return updated, nil
	}

	current, err := queryEvent(conn, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	if current == nil {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil, fmt.Errorf("%s: %w", op, repository.ErrTotalBelowSold)
}

// ReserveTickets atomically adds qty to tickets_sold if at least qty tickets
// remain. BEGIN IMMEDIATE takes the database write lock up front, so the
// conditional update and the disambiguating re-read see the same row.
//
// Returns:
//   - *domain.Event: the row as refreshed by the update.
//   - error: repository.ErrNotFound if the event does not exist.
//   - error: *repository.InsufficientTicketsError if fewer than qty remain.
func (r *EventRepo) ReserveTickets(ctx context.Context, id int64, qty int) (reserved *domain.Event, err error) {
	const op = "sqlite.EventRepo.ReserveTickets"

	if qty <= 0 {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrInvalidQuantity)
	}

	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer r.pool.Put(conn)

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer endFn(&err)

	reserved, err = queryEvent(conn,
		`UPDATE events
		 SET tickets_sold = tickets_sold + ?
		 WHERE id = ? AND tickets_total - tickets_sold >= ?
		 RETURNING `+eventColumns,
		qty, id, qty,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	if reserved != nil {
		return reserved, nil
	}

	current, err := queryEvent(conn, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	if current == nil {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil, fmt.Errorf("%s: %w", op, &repository.InsufficientTicketsError{
		EventID:   id,
		Requested: qty,
		Available: current.Available(),
	})
}
