package httpgin_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpgin "github.com/tigertix/tigertix/internal/transport/http/gin"
)

func TestGateway(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Content-Type", "text/plain")
		body, _ := io.ReadAll(r.Body)
		_, _ = io.WriteString(w, r.Method+" "+r.URL.RequestURI()+" "+string(body))
	}))
	defer upstream.Close()

	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()

	gw, err := httpgin.NewGatewayRouter([]httpgin.Route{
		{Prefix: "/api/client", Target: upstream.URL},
		{Prefix: "/api/llm", Target: downURL},
	}, httpgin.Options{})
	require.NoError(t, err)

	// ReverseProxy needs a real connection-backed ResponseWriter.
	srv := httptest.NewServer(gw)
	defer srv.Close()

	status, header, body := gatewayDo(t, srv, http.MethodGet, "/api/client/events?limit=5", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "GET /api/client/events?limit=5 ", body)
	assert.Empty(t, header.Get("Access-Control-Allow-Origin"))

	status, _, body = gatewayDo(t, srv, http.MethodPost, "/api/client/events/1/purchase", `{"n":1}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, `POST /api/client/events/1/purchase {"n":1}`, body)

	status, _, body = gatewayDo(t, srv, http.MethodPost, "/api/llm/parse", "")
	assert.Equal(t, http.StatusBadGateway, status)
	assert.JSONEq(t, `{"error":"upstream unavailable"}`, body)

	status, _, _ = gatewayDo(t, srv, http.MethodGet, "/api/admin/events", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _, _ = gatewayDo(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, status)
}

func gatewayDo(t *testing.T, srv *httptest.Server, method, path, body string) (int, http.Header, string) {
	t.Helper()

	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, resp.Header, string(b)
}

func TestGateway_InvalidUpstream(t *testing.T) {
	_, err := httpgin.NewGatewayRouter([]httpgin.Route{{Prefix: "/api/admin", Target: "localhost:5001"}}, httpgin.Options{})
	assert.Error(t, err)
}
