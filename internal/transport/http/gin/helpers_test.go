package httpgin_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	redisrepo "github.com/tigertix/tigertix/internal/repository/redis"
	sqliterepo "github.com/tigertix/tigertix/internal/repository/sqlite"
	"github.com/tigertix/tigertix/internal/service"
	"github.com/tigertix/tigertix/internal/service/assistant"
	"github.com/tigertix/tigertix/internal/service/auth"
	"github.com/tigertix/tigertix/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	events *sqliterepo.EventRepo
	svcs   *service.Services
}

func newTestEnv(t *testing.T, completer assistant.Completer) testEnv {
	t.Helper()
	store := testutil.NewSQLiteStore(t)

	deps := service.Deps{Events: store.Events(), Users: store.Users()}
	if completer != nil {
		deps.Completer = completer
	}

	svcs := service.NewServices(deps, service.Config{
		Auth: auth.Config{
			Secret:     "test-secret",
			TokenTTL:   30 * time.Minute,
			BcryptCost: bcrypt.MinCost,
		},
	}, nil)

	return testEnv{events: store.Events(), svcs: svcs}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type memIdempotency struct {
	mu   sync.Mutex
	data map[string]string
	res  map[string]redisrepo.StoredResponse
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{data: map[string]string{}, res: map[string]redisrepo.StoredResponse{}}
}

func (m *memIdempotency) AcquireLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = "LOCK"
	return true, nil
}

func (m *memIdempotency) SaveResult(_ context.Context, key string, status int, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = "RES"
	m.res[key] = redisrepo.StoredResponse{Status: status, Body: append([]byte(nil), body...)}
	return nil
}

func (m *memIdempotency) GetResult(_ context.Context, key string) (redisrepo.StoredResponse, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.res[key]
	return res, ok, nil
}

func (m *memIdempotency) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	delete(m.res, key)
	return nil
}

func (m *memIdempotency) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

type stubLimiter struct {
	decision redisrepo.Decision
	err      error
}

func (l stubLimiter) Allow(context.Context, string) (redisrepo.Decision, error) {
	return l.decision, l.err
}
