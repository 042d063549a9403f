package httpgin_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigertix/tigertix/internal/domain"
	httpgin "github.com/tigertix/tigertix/internal/transport/http/gin"
	"github.com/tigertix/tigertix/internal/testutil"
)

func TestCreateEvent(t *testing.T) {
	env := newTestEnv(t, nil)
	r := httpgin.NewAdminRouter(env.svcs, httpgin.Options{})

	w := doJSON(t, r, http.MethodPost, "/api/admin/events", map[string]any{
		"name": "Fall Concert", "date": "2025-11-10T19:00:00Z", "tickets_total": 100,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	e := decode[domain.Event](t, w)
	assert.Positive(t, e.ID)
	assert.Equal(t, 0, e.TicketsSold)
	assert.Equal(t, 100, e.TicketsTotal)

	tests := []struct {
		name    string
		body    map[string]any
		wantErr string
	}{
		{name: "blank name", body: map[string]any{"name": "  ", "date": "2025-11-10", "tickets_total": 1}, wantErr: "name is required"},
		{name: "bad date", body: map[string]any{"name": "A", "date": "soon", "tickets_total": 1}, wantErr: "date must be an ISO-8601 date"},
		{name: "negative total", body: map[string]any{"name": "A", "date": "2025-11-10", "tickets_total": -1}, wantErr: "tickets_total must be a non-negative integer"},
		{name: "total too large", body: map[string]any{"name": "A", "date": "2025-11-10", "tickets_total": 3000000000}, wantErr: "tickets_total must not exceed 2147483647"},
		{name: "missing total", body: map[string]any{"name": "A", "date": "2025-11-10"}},
		{name: "fractional total", body: map[string]any{"name": "A", "date": "2025-11-10", "tickets_total": 1.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/admin/events", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, decode[httpgin.ErrorResponse](t, w).Error)
			}
		})
	}
}

func TestUpdateEvent(t *testing.T) {
	env := newTestEnv(t, nil)
	e := testutil.SeedEvent(t, env.events, "Gala", testutil.Date(2025, 11, 1), 10, 6)
	r := httpgin.NewAdminRouter(env.svcs, httpgin.Options{})
	path := fmt.Sprintf("/api/admin/events/%d", e.ID)

	w := doJSON(t, r, http.MethodPut, path, map[string]any{"name": "Gala", "date": "2025-11-02", "tickets_total": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "tickets_total cannot be less than tickets_sold", decode[httpgin.ErrorResponse](t, w).Error)

	w = doJSON(t, r, http.MethodPut, "/api/admin/events/999", map[string]any{"name": "Gala", "date": "2025-11-02", "tickets_total": 5})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/admin/events/x", map[string]any{"name": "Gala", "date": "2025-11-02", "tickets_total": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPut, path, map[string]any{"name": "Grand Gala", "date": "2025-11-02", "tickets_total": 20})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[domain.Event](t, w)
	assert.Equal(t, "Grand Gala", updated.Name)
	assert.Equal(t, 20, updated.TicketsTotal)
	assert.Equal(t, 6, updated.TicketsSold)
	assert.True(t, testutil.Date(2025, 11, 2).Equal(updated.Date))
}
