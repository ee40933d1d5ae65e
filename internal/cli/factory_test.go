package cli_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/mcpbridge/internal/cli"
	"github.com/aretw0/mcpbridge/internal/config"
	"github.com/aretw0/mcpbridge/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Memory(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Seed.Start = "2026-01-01"

	app, err := cli.Build(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, "v2", app.Bridge.Group().Name)
	assert.Len(t, app.Bridge.Tools(), 5)

	all, err := app.Store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 30)
	assert.Equal(t, "2026-01-01", all[0].Date.String())
}

func TestBuild_PinnedGroup(t *testing.T) {
	cfg := config.Default()
	cfg.API.Group = "v1"

	app, err := cli.Build(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer app.Close()

	require.Len(t, app.Bridge.Tools(), 1)
	assert.Equal(t, "Weather_Get", app.Bridge.Tools()[0].Name)
}

func TestBuild_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Store.Driver = "redis"
	cfg.Store.Redis.Addr = mr.Addr()
	cfg.Store.Redis.TTL = time.Hour
	cfg.Store.Seed.Days = 3

	app, err := cli.Build(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)

	all, err := app.Store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, app.Close())
	assert.NoError(t, app.Close(), "closing twice is a no-op")
}

func TestNewStore_UnknownDriver(t *testing.T) {
	_, err := cli.NewStore(context.Background(), config.StoreConfig{Driver: "sqlite"}, time.Now())
	assert.ErrorContains(t, err, `unknown store driver "sqlite"`)
}

func TestNewLogger(t *testing.T) {
	_, err := cli.NewLogger(config.LogConfig{Level: "debug", Format: "json"}, nil)
	assert.NoError(t, err)

	_, err = cli.NewLogger(config.LogConfig{Level: "loud"}, nil)
	assert.Error(t, err)
}

func TestNewLogger_TextHonorsWriter(t *testing.T) {
	for _, format := range []string{"text", "json"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := cli.NewLogger(config.LogConfig{Level: "info", Format: format}, &buf)
			require.NoError(t, err)

			logger.Info("listening", "addr", ":8080")
			assert.Contains(t, buf.String(), "listening")
			assert.Contains(t, buf.String(), ":8080")
		})
	}
}

func TestSignalContext_Stop(t *testing.T) {
	sc := cli.NewSignalContext(context.Background())
	sc.Stop()

	<-sc.Done()
	assert.Nil(t, sc.Signal())
}
