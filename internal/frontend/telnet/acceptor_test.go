package telnet

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/heardround/internal/config"
)

// echoHandler answers each line with "echo: <line>" until "quit".
type echoHandler struct {
	sessions atomic.Int32
}

func (h *echoHandler) HandleSession(_ context.Context, conn *Conn) error {
	h.sessions.Add(1)
	for {
		line, err := conn.ReadLine()
		if err != nil {
			return err
		}
		if line == "quit" {
			return conn.WriteLine("bye")
		}
		if err := conn.WriteLine("echo: " + line); err != nil {
			return err
		}
	}
}

// blockingHandler waits for a line that never comes.
type blockingHandler struct {
	started chan struct{}
}

func (h *blockingHandler) HandleSession(_ context.Context, conn *Conn) error {
	close(h.started)
	_, err := conn.ReadLine()
	return err
}

// serve starts an acceptor on a free port and stops it when the test ends.
func serve(t *testing.T, handler SessionHandler) (*Acceptor, <-chan error) {
	t.Helper()
	acc := NewAcceptor(config.TelnetConfig{
		Host:         "127.0.0.1",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}, handler, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- acc.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		acc.Stop()
	})

	require.Eventually(t, func() bool { return acc.IsRunning() && acc.Addr() != "" },
		2*time.Second, 10*time.Millisecond)
	return acc, errCh
}

type client struct {
	conn net.Conn
	r    *bufio.Reader
}

// dial connects to acc and consumes the option negotiation.
func dial(t *testing.T, acc *Acceptor) *client {
	t.Helper()
	conn, err := net.DialTimeout("tcp", acc.Addr(), 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	c := &client{conn: conn, r: bufio.NewReader(conn)}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	neg := make([]byte, 3)
	_, err = io.ReadFull(c.r, neg)
	require.NoError(t, err)
	assert.Equal(t, []byte{IAC, WILL, OptSuppressGoAhead}, neg)
	return c
}

func (c *client) say(t *testing.T, line string) string {
	t.Helper()
	_, err := c.conn.Write([]byte(line + "\r\n"))
	require.NoError(t, err)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	reply, err := c.r.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimRight(reply, "\r\n")
}

func TestAcceptor_ServesSession(t *testing.T) {
	handler := &echoHandler{}
	acc, errCh := serve(t, handler)

	c := dial(t, acc)
	assert.Equal(t, "echo: LC15[1,0]|F10[1,1]", c.say(t, "LC15[1,0]|F10[1,1]"))
	assert.Equal(t, "bye", c.say(t, "quit"))

	acc.Stop()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("acceptor did not stop in time")
	}
	assert.False(t, acc.IsRunning())
	assert.Equal(t, int32(1), handler.sessions.Load())
}

func TestAcceptor_ConcurrentTerminals(t *testing.T) {
	handler := &echoHandler{}
	acc, _ := serve(t, handler)

	const terminals = 3
	clients := make([]*client, terminals)
	for i := range clients {
		clients[i] = dial(t, acc)
	}
	for i, c := range clients {
		line := strings.Repeat("F10[1,0]|", i) + "D8[1,0]"
		assert.Equal(t, "echo: "+line, c.say(t, line))
	}
	for _, c := range clients {
		assert.Equal(t, "bye", c.say(t, "quit"))
	}

	acc.Stop()
	assert.Equal(t, int32(terminals), handler.sessions.Load())
}

func TestAcceptor_StartStopsOnContextCancel(t *testing.T) {
	handler := &blockingHandler{started: make(chan struct{})}
	acc := NewAcceptor(config.TelnetConfig{Host: "127.0.0.1"}, handler, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- acc.Start(ctx) }()

	require.Eventually(t, func() bool { return acc.Addr() != "" }, 2*time.Second, 10*time.Millisecond)
	conn, err := net.DialTimeout("tcp", acc.Addr(), 2*time.Second)
	require.NoError(t, err)
	defer conn.Close()

	select {
	case <-handler.started:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not start")
	}

	// Cancelling interrupts the idle session and closes the listener.
	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("acceptor did not stop in time")
	}
	acc.Stop()
	assert.False(t, acc.IsRunning())
}
