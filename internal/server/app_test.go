package server

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/campushub/internal/server/config"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	var c config.Config
	c.LoadDefaults()
	c.GRPCAddr = "127.0.0.1:0"
	c.DataDir = filepath.Join(t.TempDir(), "data")
	c.LogLevel = "error"
	return &c
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := NewApp(ctx, testConfig(t))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}

func TestApp_RunFailsOnBadAddress(t *testing.T) {
	c := testConfig(t)
	c.GRPCAddr = "127.0.0.1:99999"

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)

	require.Error(t, app.Run(context.Background()))
}
