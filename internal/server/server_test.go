// internal/server/server_test.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgiroux/lostinspace/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	cfg := &config.Config{
		Addr:             "127.0.0.1:0",
		LogLevel:         "warn",
		MetricsNamespace: "server_test",
	}
	return New(cfg, logger)
}

func TestServer_StartServesAndStops(t *testing.T) {
	srv := newTestServer(t)

	require.NoError(t, srv.Start())
	addr := srv.Addr()
	require.NotEmpty(t, addr)

	// Start returning nil means the address is already connectable.
	resp, err := http.Get(fmt.Sprintf("http://%s/game/list", addr))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	metricsResp, err := http.Get(fmt.Sprintf("http://%s/metrics", addr))
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	assert.Equal(t, http.StatusOK, metricsResp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))

	_, err = http.Get(fmt.Sprintf("http://%s/game/list", addr))
	assert.Error(t, err)
}

func TestServer_StartFailsOnUnbindableAddress(t *testing.T) {
	first := newTestServer(t)
	require.NoError(t, first.Start())
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		first.Stop(ctx)
	}()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	second := New(&config.Config{
		Addr:             first.Addr(), // already taken
		MetricsNamespace: "server_test_conflict",
	}, logger)

	assert.Error(t, second.Start())
}

func TestServer_AddrBeforeStart(t *testing.T) {
	srv := newTestServer(t)
	assert.Empty(t, srv.Addr())
}
