package app_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bootstrap "github.com/K-John/createrington-sub002"
	"github.com/K-John/createrington-sub002/internal/app"
	"github.com/K-John/createrington-sub002/internal/config"
	"github.com/K-John/createrington-sub002/internal/database"
)

func testConfig() *config.Config {
	return &config.Config{
		ShutdownTimeout: 10 * time.Second,
		Database: database.Config{
			Database: "createrington",
			User:     "app",
		},
	}
}

func TestBuildRegistersAllServices(t *testing.T) {
	container, err := app.Build(testConfig(), quietLogger())
	require.NoError(t, err)

	states := container.States()
	for _, name := range []string{
		app.ServiceDatabase,
		app.ServiceCache,
		app.ServiceBot,
		app.ServiceBridgeBot,
		app.ServiceGateway,
		app.ServiceScheduler,
		app.ServiceAPI,
	} {
		state, ok := states[name]
		require.True(t, ok, "service %s not registered", name)
		// Build only declares services; nothing initializes until the
		// startup sweep runs.
		assert.Equal(t, bootstrap.StateUninitialized, state, "service %s", name)
	}
}

func TestBuildIsRepeatable(t *testing.T) {
	_, err := app.Build(testConfig(), quietLogger())
	require.NoError(t, err)
	_, err = app.Build(testConfig(), quietLogger())
	require.NoError(t, err)
}
