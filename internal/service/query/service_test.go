package query_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigertix/tigertix/internal/service/query"
	"github.com/tigertix/tigertix/internal/testutil"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	events := testutil.NewSQLiteStore(t).Events()
	e := testutil.SeedEvent(t, events, "Fall Concert", testutil.Date(2025, 11, 10), 100, 7)
	svc := query.New(events)

	list, err := svc.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 7, list[0].TicketsSold)

	got, err := svc.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, *got)

	_, err = svc.GetEvent(ctx, 999)
	assert.ErrorIs(t, err, query.ErrEventNotFound)

	// Counts are read fresh after a sale made outside the service.
	_, err = events.ReserveTickets(ctx, e.ID, 3)
	require.NoError(t, err)

	list, err = svc.ListEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, list[0].TicketsSold)
}
