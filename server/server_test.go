package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scipunch/feedsearch/config"
	"github.com/scipunch/feedsearch/fetcher/types"
)

func startAndShutdown(t *testing.T, shutdownFirst bool) {
	t.Helper()
	cfg := config.Default()
	cfg.Port = 0 // any free port
	s := New(cfg, &stubFetcher{feed: types.Feed{Title: "G1"}})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if shutdownFirst {
		require.NoError(t, s.Shutdown(ctx))
	}

	done := make(chan error, 1)
	go func() {
		done <- s.Start()
	}()

	if !shutdownFirst {
		require.NoError(t, s.Shutdown(ctx))
	}

	select {
	case err := <-done:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("Start kept serving after Shutdown returned")
	}
}

func TestServer_ShutdownStopsStart(t *testing.T) {
	startAndShutdown(t, false)
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	startAndShutdown(t, true)
}

func TestServer_ShutdownWithMetricsListener(t *testing.T) {
	cfg := config.Default()
	cfg.Port = 0
	cfg.MetricsPort = 0
	s := New(cfg, &stubFetcher{})
	assert.Nil(t, s.metricsSrv, "metrics listener disabled by default")

	cfg.MetricsPort = 39187
	s = New(cfg, &stubFetcher{})
	require.NotNil(t, s.metricsSrv)
	assert.Equal(t, ":39187", s.metricsSrv.Addr)
	require.NoError(t, s.Shutdown(context.Background()))
}
