package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tigertix/tigertix/internal/domain"
	"github.com/tigertix/tigertix/internal/repository"
)

const eventColumns = `id, name, date, tickets_total, tickets_sold`

type EventRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *EventRepo) With(db DB) *EventRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *EventRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	if err := row.Scan(&e.ID, &e.Name, &e.Date, &e.TicketsTotal, &e.TicketsSold); err != nil {
		return nil, err
	}
	e.Date = e.Date.UTC()
	return &e, nil
}

// ListEvents returns every event ordered by date, then id.
func (r *EventRepo) ListEvents(ctx context.Context) ([]domain.Event, error) {
	const op = "postgres.EventRepo.ListEvents"

	rows, err := r.handle().Query(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 ORDER BY date ASC, id ASC`,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		events = append(events, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return events, nil
}

// GetEvent retrieves an event by its ID.
//
// Returns:
//   - *domain.Event: the event when found.
//   - error: repository.ErrNotFound if the event does not exist.
func (r *EventRepo) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	const op = "postgres.EventRepo.GetEvent"

	e, err := scanEvent(r.handle().QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return e, nil
}

func (r *EventRepo) CreateEvent(ctx context.Context, in domain.EventInput) (*domain.Event, error) {
	const op = "postgres.EventRepo.CreateEvent"

	e, err := scanEvent(r.handle().QueryRow(ctx,
		`INSERT INTO events (name, date, tickets_total, tickets_sold)
		 VALUES ($1, $2, $3, 0)
		 RETURNING `+eventColumns,
		in.Name, in.Date.UTC(), in.TicketsTotal,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return e, nil
}

// UpdateEvent overwrites the admin-editable fields of an event. The update is
// guarded so tickets_total can never drop below a concurrently growing
// tickets_sold.
//
// Returns:
//   - error: repository.ErrNotFound if the event does not exist.
//   - error: repository.ErrTotalBelowSold if in.TicketsTotal < tickets_sold.
func (r *EventRepo) UpdateEvent(ctx context.Context, id int64, in domain.EventInput) (*domain.Event, error) {
	const op = "postgres.EventRepo.UpdateEvent"

	var updated *domain.Event
	err := withConn(ctx, r.pool, r.db, func(db DB) error {
		e, err := scanEvent(db.QueryRow(ctx,
			`UPDATE events
			 SET name = $2, date = $3, tickets_total = $4
			 WHERE id = $1 AND tickets_sold <= $4
			 RETURNING `+eventColumns,
			id, in.Name, in.Date.UTC(), in.TicketsTotal,
		))
		if err == nil {
			updated = e
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		var exists bool
		if err := db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return repository.ErrNotFound
		}
		return repository.ErrTotalBelowSold
	})
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return updated, nil
}

// ReserveTickets atomically adds qty to tickets_sold if at least qty tickets
// remain. The conditional update and, on failure, the re-read that tells a
// missing event from an exhausted one share one pooled connection.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - id: event to reserve tickets for.
//   - qty: number of tickets, must be positive.
//
// Returns:
//   - *domain.Event: the row as refreshed by the update.
//   - error: repository.ErrNotFound if the event does not exist.
//   - error: *repository.InsufficientTicketsError if fewer than qty remain.
func (r *EventRepo) ReserveTickets(ctx context.Context, id int64, qty int) (*domain.Event, error) {
	const op = "postgres.EventRepo.ReserveTickets"

	if qty <= 0 {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrInvalidQuantity)
	}

	var reserved *domain.Event
	err := withConn(ctx, r.pool, r.db, func(db DB) error {
		e, err := scanEvent(db.QueryRow(ctx,
			`UPDATE events
			 SET tickets_sold = tickets_sold + $2
			 WHERE id = $1 AND tickets_total - tickets_sold >= $2
			 RETURNING `+eventColumns,
			id, qty,
		))
		if err == nil {
			reserved = e
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		var total, sold int
		err = db.QueryRow(ctx,
			`SELECT tickets_total, tickets_sold FROM events WHERE id = $1`, id,
		).Scan(&total, &sold)
		if err != nil {
			return err
		}

		return &repository.InsufficientTicketsError{
			EventID:   id,
			Requested: qty,
			Available: total - sold,
		}
	})
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return reserved, nil
}
