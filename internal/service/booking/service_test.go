package booking_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tigertix/tigertix/internal/domain"
	"github.com/tigertix/tigertix/internal/repository"
	"github.com/tigertix/tigertix/internal/service/booking"
	"github.com/tigertix/tigertix/internal/testutil"
)

type mockEventStore struct {
	mock.Mock
}

func (m *mockEventStore) ListEvents(ctx context.Context) ([]domain.Event, error) {
	args := m.Called(ctx)
	events, _ := args.Get(0).([]domain.Event)
	return events, args.Error(1)
}

func (m *mockEventStore) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	args := m.Called(ctx, id)
	e, _ := args.Get(0).(*domain.Event)
	return e, args.Error(1)
}

func (m *mockEventStore) ReserveTickets(ctx context.Context, id int64, qty int) (*domain.Event, error) {
	args := m.Called(ctx, id, qty)
	e, _ := args.Get(0).(*domain.Event)
	return e, args.Error(1)
}

func TestResolveByName(t *testing.T) {
	events := []domain.Event{
		{ID: 1, Name: "Jazz Night Special"},
		{ID: 2, Name: "Jazz Night"},
		{ID: 3, Name: "Night Market"},
	}

	tests := []struct {
		name   string
		query  string
		wantID int64
		wantOK bool
	}{
		{name: "exact match wins over earlier substring", query: "jazz night", wantID: 2, wantOK: true},
		{name: "first substring match in order", query: "night", wantID: 1, wantOK: true},
		{name: "case insensitive substring", query: "MARKET", wantID: 3, wantOK: true},
		{name: "surrounding whitespace ignored", query: "  Night Market ", wantID: 3, wantOK: true},
		{name: "no match", query: "opera", wantOK: false},
		{name: "empty query", query: "  ", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := booking.ResolveByName(events, tt.query)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, got.ID)
			}
		})
	}
}

func TestPurchaseQuantity_PreCheckRejectsWithoutUpdating(t *testing.T) {
	store := &mockEventStore{}
	store.On("ListEvents", mock.Anything).Return([]domain.Event{
		{ID: 7, Name: "Gala", TicketsTotal: 10, TicketsSold: 8},
	}, nil)

	svc := booking.New(store, nil, nil)

	_, err := svc.PurchaseQuantity(context.Background(), booking.EventRef{Name: "gala"}, 3)
	require.ErrorIs(t, err, booking.ErrInsufficientTickets)

	var insufficient *booking.InsufficientTicketsError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 2, insufficient.Available)
	assert.Equal(t, 3, insufficient.Requested)
	assert.Equal(t, "Gala", insufficient.EventName)

	store.AssertNotCalled(t, "ReserveTickets", mock.Anything, mock.Anything, mock.Anything)
}

func TestPurchaseQuantity_CommitRecheckCatchesRace(t *testing.T) {
	store := &mockEventStore{}
	// The pre-check sees 5 available, but a concurrent sale wins first.
	store.On("GetEvent", mock.Anything, int64(7)).Return(&domain.Event{
		ID: 7, Name: "Gala", TicketsTotal: 10, TicketsSold: 5,
	}, nil)
	store.On("ReserveTickets", mock.Anything, int64(7), 4).Return(nil, &repository.InsufficientTicketsError{
		EventID: 7, Requested: 4, Available: 1,
	})

	svc := booking.New(store, nil, nil)

	_, err := svc.PurchaseQuantity(context.Background(), booking.EventRef{ID: 7}, 4)
	require.ErrorIs(t, err, booking.ErrInsufficientTickets)

	var insufficient *booking.InsufficientTicketsError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 1, insufficient.Available)
	store.AssertExpectations(t)
}

func TestPurchaseQuantity_Validation(t *testing.T) {
	store := &mockEventStore{}
	svc := booking.New(store, nil, nil)

	_, err := svc.PurchaseQuantity(context.Background(), booking.EventRef{Name: "Gala"}, 0)
	assert.ErrorIs(t, err, booking.ErrInvalidQuantity)

	_, err = svc.PurchaseQuantity(context.Background(), booking.EventRef{Name: " "}, 1)
	assert.ErrorIs(t, err, booking.ErrMissingEvent)

	store.AssertNotCalled(t, "ListEvents", mock.Anything)
	store.AssertNotCalled(t, "ReserveTickets", mock.Anything, mock.Anything, mock.Anything)
}

func TestPurchaseQuantity_StorageFailure(t *testing.T) {
	store := &mockEventStore{}
	store.On("ListEvents", mock.Anything).Return(nil, errors.New("connection reset"))

	svc := booking.New(store, nil, nil)

	_, err := svc.PurchaseQuantity(context.Background(), booking.EventRef{Name: "Gala"}, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, booking.ErrEventNotFound)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestPurchaseQuantity_WithSQLite(t *testing.T) {
	ctx := context.Background()
	events := testutil.NewSQLiteStore(t).Events()
	jazz := testutil.SeedEvent(t, events, "Jazz Night", testutil.Date(2025, 12, 1), 10, 8)
	testutil.SeedEvent(t, events, "Fall Concert", testutil.Date(2025, 11, 10), 100, 0)

	svc := booking.New(events, nil, nil)

	t.Run("batch larger than remaining leaves row unchanged", func(t *testing.T) {
		_, err := svc.PurchaseQuantity(ctx, booking.EventRef{Name: "jazz"}, 3)
		require.ErrorIs(t, err, booking.ErrInsufficientTickets)

		got, err := events.GetEvent(ctx, jazz.ID)
		require.NoError(t, err)
		assert.Equal(t, 8, got.TicketsSold)
	})

	t.Run("unknown event", func(t *testing.T) {
		_, err := svc.PurchaseQuantity(ctx, booking.EventRef{Name: "Opera"}, 1)
		assert.ErrorIs(t, err, booking.ErrEventNotFound)

		_, err = svc.PurchaseQuantity(ctx, booking.EventRef{ID: 999}, 1)
		assert.ErrorIs(t, err, booking.ErrEventNotFound)
	})

	t.Run("exact remaining quantity succeeds", func(t *testing.T) {
		updated, err := svc.PurchaseQuantity(ctx, booking.EventRef{Name: "JAZZ NIGHT"}, 2)
		require.NoError(t, err)
		assert.Equal(t, jazz.ID, updated.ID)
		assert.Equal(t, 10, updated.TicketsSold)
	})

	t.Run("by id", func(t *testing.T) {
		updated, err := svc.PurchaseQuantity(ctx, booking.EventRef{ID: jazz.ID + 1}, 5)
		require.NoError(t, err)
		assert.Equal(t, "Fall Concert", updated.Name)
		assert.Equal(t, 5, updated.TicketsSold)
	})
}
