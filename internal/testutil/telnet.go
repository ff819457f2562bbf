package testutil

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/cory-johannsen/heardround/internal/frontend/telnet"
)

// TelnetClient drives a hot-seat terminal over TCP in integration tests.
// Output is compared with ANSI styling removed.
type TelnetClient struct {
	t    *testing.T
	conn net.Conn
	// pending holds plain output read past the last match.
	pending string
}

// NewTelnetClient dials addr and closes the connection when the test ends.
//
// Precondition: a server must be listening on addr.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	start := time.Now()

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v [%s]", addr, err, time.Since(start))
	}
	t.Cleanup(func() { _ = conn.Close() })

	t.Logf("telnet client connected to %s [%s]", addr, time.Since(start))
	return &TelnetClient{t: t, conn: conn}
}

// ReadUntil reads until substr appears, failing the test after timeout. It
// returns the plain output up to and including substr; anything after it is
// kept for the next call.
//
// Precondition: substr must be non-empty.
func (c *TelnetClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))

	tmp := make([]byte, 1024)
	var raw strings.Builder
	for {
		plain := c.pending + telnet.StripANSI(raw.String())
		if i := strings.Index(plain, substr); i >= 0 {
			end := i + len(substr)
			c.pending = plain[end:]
			return plain[:end]
		}
		n, err := c.conn.Read(tmp)
		raw.Write(tmp[:n])
		if err != nil {
			c.t.Fatalf("reading until %q: got %q, error: %v", substr, plain, err)
		}
	}
}

// Send writes text and a CRLF.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := c.conn.Write([]byte(text + "\r\n")); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Command sends text and waits for want in the reply.
func (c *TelnetClient) Command(text, want string, timeout time.Duration) string {
	c.t.Helper()
	c.Send(text)
	return c.ReadUntil(want, timeout)
}

// Close closes the connection.
func (c *TelnetClient) Close() {
	_ = c.conn.Close()
}
