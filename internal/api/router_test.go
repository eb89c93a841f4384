package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bootstrap "github.com/K-John/createrington-sub002"
	"github.com/K-John/createrington-sub002/internal/api"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newContainer(t *testing.T, withFailure bool) *bootstrap.Container {
	t.Helper()
	c := bootstrap.New(bootstrap.WithLogger(quietLogger()))

	require.NoError(t, c.Register("database", func(ctx context.Context, c *bootstrap.Container) (any, error) {
		return struct{}{}, nil
	}))
	if withFailure {
		require.NoError(t, c.Register("bot", func(ctx context.Context, c *bootstrap.Container) (any, error) {
			return nil, errors.New("token rejected")
		}))
	}
	c.InitializeAll(context.Background())
	return c
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	router := api.NewRouter(newContainer(t, false), nil, quietLogger())

	rec := get(t, router, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServiceStates(t *testing.T) {
	router := api.NewRouter(newContainer(t, false), nil, quietLogger())

	rec := get(t, router, "/health/services")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Services map[string]string `json:"services"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.Services["database"])
}

func TestServiceStatesReportsFailures(t *testing.T) {
	router := api.NewRouter(newContainer(t, true), nil, quietLogger())

	rec := get(t, router, "/health/services")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Services map[string]string `json:"services"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.Services["database"])
	assert.Equal(t, "failed", body.Services["bot"])
}

func TestMetricsEndpoint(t *testing.T) {
	router := api.NewRouter(newContainer(t, false), nil, quietLogger())

	rec := get(t, router, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.String())
}
