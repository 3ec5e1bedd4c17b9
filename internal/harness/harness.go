// internal/harness/harness.go

// Package harness provides the end-to-end test scaffolding: one server
// instance per suite, one fresh realtime connection per test.
//
// The lifecycle maps onto Go's native fixtures: StartSuite/Stop are
// called from TestMain (suite before/after), and Connect registers its
// own teardown with t.Cleanup (test before/after). Tests within a
// package run sequentially, so test N's cleanup always finishes before
// test N+1 connects.
package harness

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"

	"github.com/mgiroux/lostinspace/internal/config"
	"github.com/mgiroux/lostinspace/internal/server"
)

const dialTimeout = 5 * time.Second

// Suite owns the single server instance shared by every test in a
// suite. Create it once in TestMain and Stop it after m.Run.
type Suite struct {
	Server *server.Server
	logger *logrus.Logger
}

// StartSuite builds a server on an ephemeral loopback port and starts
// it. A start failure is returned so the caller can abort the whole
// suite instead of letting every test hang on connection.
func StartSuite() (*Suite, error) {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	cfg := &config.Config{
		Addr:             "127.0.0.1:0",
		LogLevel:         "warn",
		MetricsNamespace: "lostinspace_test",
	}

	srv := server.New(cfg, logger)
	if err := srv.Start(); err != nil {
		return nil, fmt.Errorf("suite server start: %w", err)
	}
	return &Suite{Server: srv, logger: logger}, nil
}

// Stop shuts the suite's server down, releasing its listener. Call it
// exactly once, after m.Run.
func (s *Suite) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Server.Stop(ctx); err != nil {
		s.logger.Errorf("suite server stop: %v", err)
	}
}

// URL returns the realtime endpoint for namespace on the running server.
func (s *Suite) URL(namespace string) string {
	return fmt.Sprintf("ws://%s/ws/%s", s.Server.Addr(), namespace)
}

// Conn is one test's realtime connection. It is connected once the
// server's handshake ack has been received and is torn down by
// t.Cleanup, so tests never share or leak connections.
type Conn struct {
	ws *websocket.Conn

	mu        sync.Mutex
	connected bool
}

// Connect dials the given namespace and blocks until the server's
// "connected" ack arrives. Any failure fails the calling test; other
// tests are unaffected since each gets its own connection. Disconnection
// is registered with t.Cleanup and is idempotent.
func (s *Suite) Connect(t *testing.T, namespace string) *Conn {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	ws, _, err := websocket.Dial(ctx, s.URL(namespace), nil)
	if err != nil {
		t.Fatalf("connect to namespace %q: %v", namespace, err)
	}

	var ack map[string]interface{}
	if err := wsjson.Read(ctx, ws, &ack); err != nil {
		ws.Close(websocket.StatusInternalError, "no ack")
		t.Fatalf("waiting for connected ack on %q: %v", namespace, err)
	}
	if ack["type"] != "connected" {
		ws.Close(websocket.StatusProtocolError, "bad ack")
		t.Fatalf("expected connected ack, got %v", ack)
	}

	c := &Conn{ws: ws, connected: true}
	t.Cleanup(c.Disconnect)
	return c
}

// Connected reports whether the connection is still open.
func (c *Conn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Disconnect closes the connection. Calling it on an already closed
// connection is a no-op, so tests may disconnect manually and still let
// the cleanup hook run.
func (c *Conn) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return
	}
	c.connected = false
	c.ws.Close(websocket.StatusNormalClosure, "test finished")
}

// Send writes a JSON message to the server, failing the test on error.
func (c *Conn) Send(t *testing.T, msg interface{}) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := wsjson.Write(ctx, c.ws, msg); err != nil {
		t.Fatalf("send %v: %v", msg, err)
	}
}

// Read returns the next JSON message from the server, failing the test
// on error or timeout.
func (c *Conn) Read(t *testing.T) map[string]interface{} {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	var msg map[string]interface{}
	if err := wsjson.Read(ctx, c.ws, &msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

// Expect reads the next message and asserts its type.
func (c *Conn) Expect(t *testing.T, wantType string) map[string]interface{} {
	t.Helper()
	msg := c.Read(t)
	if msg["type"] != wantType {
		t.Fatalf("expected message type %q, got %v", wantType, msg)
	}
	return msg
}
