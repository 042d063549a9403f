package sqlite

import (
	"context"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/tigertix/tigertix/internal/domain"
	"github.com/tigertix/tigertix/internal/repository"
	"github.com/tigertix/tigertix/internal/sqlitepool"
)

const userColumns = `id, email, password, name, created_at`

type UserRepo struct {
	pool *sqlitepool.Pool
}

func (r *UserRepo) queryUser(ctx context.Context, op string, query string, args ...any) (*domain.User, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer r.pool.Put(conn)

	var found *domain.User
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			createdAt, err := parseTime(stmt.ColumnText(4))
			if err != nil {
				return err
			}
			found = &domain.User{
				ID:           stmt.ColumnInt64(0),
				Email:        stmt.ColumnText(1),
				PasswordHash: stmt.ColumnText(2),
				Name:         stmt.ColumnText(3),
				CreatedAt:    createdAt,
			}
			return nil
		},
	})
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	if found == nil {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return found, nil
}

// CreateUser returns repository.ErrConflict when the email is taken.
func (r *UserRepo) CreateUser(ctx context.Context, email, passwordHash, name string) (*domain.User, error) {
	return r.queryUser(ctx, "sqlite.UserRepo.CreateUser",
		`INSERT INTO users (email, password, name, created_at)
		 VALUES (?, ?, ?, ?)
		 RETURNING `+userColumns,
		email, passwordHash, name, formatTime(time.Now()),
	)
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.queryUser(ctx, "sqlite.UserRepo.GetUserByEmail",
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email,
	)
}

func (r *UserRepo) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.queryUser(ctx, "sqlite.UserRepo.GetUserByID",
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	)
}
