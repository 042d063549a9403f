package sqlite_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigertix/tigertix/internal/domain"
	"github.com/tigertix/tigertix/internal/repository"
	"github.com/tigertix/tigertix/internal/testutil"
)

func TestEventRepo_CreateGetList(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewSQLiteStore(t).Events()

	later := testutil.SeedEvent(t, repo, "Jazz Night", testutil.Date(2025, 12, 1), 50, 0)
	sooner := testutil.SeedEvent(t, repo, "Fall Concert", testutil.Date(2025, 11, 10), 100, 0)

	assert.Equal(t, 0, sooner.TicketsSold)
	assert.Equal(t, testutil.Date(2025, 11, 10), sooner.Date)

	got, err := repo.GetEvent(ctx, later.ID)
	require.NoError(t, err)
	assert.Equal(t, later, *got)

	events, err := repo.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Fall Concert", events[0].Name)
	assert.Equal(t, "Jazz Night", events[1].Name)
}

func TestEventRepo_GetEventNotFound(t *testing.T) {
	repo := testutil.NewSQLiteStore(t).Events()

	_, err := repo.GetEvent(context.Background(), 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEventRepo_ListEmpty(t *testing.T) {
	repo := testutil.NewSQLiteStore(t).Events()

	events, err := repo.ListEvents(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestEventRepo_ReserveTickets(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewSQLiteStore(t).Events()
	e := testutil.SeedEvent(t, repo, "Homecoming", testutil.Date(2025, 10, 3), 50, 0)

	first, err := repo.ReserveTickets(ctx, e.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, first.TicketsSold)

	second, err := repo.ReserveTickets(ctx, e.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, second.TicketsSold)
	assert.Equal(t, 50, second.TicketsTotal)
}

func TestEventRepo_ReserveTicketsNotFound(t *testing.T) {
	repo := testutil.NewSQLiteStore(t).Events()

	_, err := repo.ReserveTickets(context.Background(), 999, 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NotErrorIs(t, err, repository.ErrInsufficientTickets)
}

func TestEventRepo_ReserveTicketsBatchIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewSQLiteStore(t).Events()
	e := testutil.SeedEvent(t, repo, "Gala", testutil.Date(2025, 11, 1), 10, 8)

	_, err := repo.ReserveTickets(ctx, e.ID, 3)
	require.ErrorIs(t, err, repository.ErrInsufficientTickets)

	var insufficient *repository.InsufficientTicketsError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 2, insufficient.Available)
	assert.Equal(t, 3, insufficient.Requested)

	got, err := repo.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.TicketsSold)
}

func TestEventRepo_ReserveTicketsRejectsNonPositive(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewSQLiteStore(t).Events()
	e := testutil.SeedEvent(t, repo, "Gala", testutil.Date(2025, 11, 1), 10, 0)

	for _, qty := range []int{0, -1} {
		_, err := repo.ReserveTickets(ctx, e.ID, qty)
		assert.ErrorIs(t, err, repository.ErrInvalidQuantity)
	}

	got, err := repo.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.TicketsSold)
}

func TestEventRepo_ConcurrentReservationsNeverOversell(t *testing.T) {
	tests := []struct {
		name        string
		total, sold int
		attempts    int
		qty         int
		wantOK      int
	}{
		{name: "last ticket", total: 3, sold: 2, attempts: 5, qty: 1, wantOK: 1},
		{name: "twenty left for fifty buyers", total: 20, sold: 0, attempts: 50, qty: 1, wantOK: 20},
		{name: "pairs", total: 9, sold: 0, attempts: 10, qty: 2, wantOK: 4},
		{name: "sold out", total: 5, sold: 5, attempts: 8, qty: 1, wantOK: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := testutil.NewSQLiteStore(t).Events()
			e := testutil.SeedEvent(t, repo, "Contested", testutil.Date(2025, 11, 10), tt.total, tt.sold)

			var ok, rejected atomic.Int64
			var wg sync.WaitGroup
			start := make(chan struct{})

			for i := 0; i < tt.attempts; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start
					_, err := repo.ReserveTickets(ctx, e.ID, tt.qty)
					switch {
					case err == nil:
						ok.Add(1)
					case errors.Is(err, repository.ErrInsufficientTickets):
						rejected.Add(1)
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}()
			}

			close(start)
			wg.Wait()

			assert.Equal(t, int64(tt.wantOK), ok.Load())
			assert.Equal(t, int64(tt.attempts-tt.wantOK), rejected.Load())

			got, err := repo.GetEvent(ctx, e.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.sold+tt.wantOK*tt.qty, got.TicketsSold)
			assert.LessOrEqual(t, got.TicketsSold, got.TicketsTotal)
		})
	}
}

func TestEventRepo_ListingDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewSQLiteStore(t).Events()
	testutil.SeedEvent(t, repo, "A", testutil.Date(2025, 1, 1), 10, 4)

	before, err := repo.ListEvents(ctx)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := repo.ListEvents(ctx)
		require.NoError(t, err)
	}

	after, err := repo.ListEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestEventRepo_UpdateEvent(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewSQLiteStore(t).Events()
	e := testutil.SeedEvent(t, repo, "Old Name", testutil.Date(2025, 1, 1), 10, 4)

	newDate := time.Date(2025, 2, 1, 19, 30, 0, 0, time.UTC)
	updated, err := repo.UpdateEvent(ctx, e.ID, domain.EventInput{Name: "New Name", Date: newDate, TicketsTotal: 4})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, newDate, updated.Date)
	assert.Equal(t, 4, updated.TicketsTotal)
	assert.Equal(t, 4, updated.TicketsSold)

	_, err = repo.UpdateEvent(ctx, e.ID, domain.EventInput{Name: "X", Date: newDate, TicketsTotal: 3})
	assert.ErrorIs(t, err, repository.ErrTotalBelowSold)

	_, err = repo.UpdateEvent(ctx, 999, domain.EventInput{Name: "X", Date: newDate, TicketsTotal: 3})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	got, err := repo.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)
}

func TestEventRepo_CreateRejectsNegativeTotal(t *testing.T) {
	repo := testutil.NewSQLiteStore(t).Events()

	_, err := repo.CreateEvent(context.Background(), domain.EventInput{
		Name: "Broken", Date: testutil.Date(2025, 1, 1), TicketsTotal: -1,
	})
	assert.ErrorIs(t, err, repository.ErrConflict)
}
