package telnet

import (
	"bufio"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// ErrInterrupted is returned by ReadLine after Interrupt is called.
var ErrInterrupted = errors.New("telnet read interrupted")

// Telnet command bytes (RFC 854) and the options this server mentions.
const (
	IAC  byte = 255
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250
	SE   byte = 240
	NOP  byte = 241

	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
)

const (
	backspace byte = 0x08
	del       byte = 0x7f
	maxLine        = 1024
)

// Conn is one terminal client. Reads are line oriented with Telnet command
// sequences removed; writes are serialized and bounded by writeTimeout.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	mu     sync.Mutex

	readTimeout  time.Duration
	writeTimeout time.Duration
	interrupted  atomic.Bool
	// afterCR is set when the last line ended in CR, so a following LF is
	// part of the same terminator.
	afterCR bool
}

// NewConn wraps raw. A zero timeout disables that deadline.
//
// Precondition: raw must be open.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReader(raw),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Negotiate offers to suppress go-ahead so line-mode clients stay quiet.
func (c *Conn) Negotiate() error {
	return c.Write([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine returns the next line without its terminator. Telnet commands and
// control bytes other than tab are dropped; backspace and DEL erase the
// previous byte. Lines are truncated at 1024 bytes.
//
// Postcondition: err is io.EOF, ErrInterrupted, a timeout (see IsTimeout),
// or another network error whenever line is incomplete.
func (c *Conn) ReadLine() (string, error) {
	if c.interrupted.Load() {
		return "", ErrInterrupted
	}
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	line := make([]byte, 0, 64)
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			if c.interrupted.Load() {
				err = ErrInterrupted
			}
			return string(line), err
		}
		if c.afterCR {
			c.afterCR = false
			if b == '\n' {
				continue
			}
		}
		switch {
		case b == IAC:
			if err := c.skipCommand(); err != nil {
				return string(line), err
			}
		case b == '\n':
			return string(line), nil
		case b == '\r':
			c.afterCR = true
			return string(line), nil
		case b == backspace || b == del:
			if len(line) > 0 {
				line = line[:len(line)-1]
			}
		case b < ' ' && b != '\t':
		case len(line) < maxLine:
			line = append(line, b)
		}
	}
}

// skipCommand consumes the rest of a command after its IAC byte. An escaped
// IAC (a literal 0xFF) is dropped along with the rest.
func (c *Conn) skipCommand() error {
	cmd, err := c.reader.ReadByte()
	if err != nil {
		return err
	}
	switch cmd {
	case WILL, WONT, DO, DONT:
		_, err = c.reader.ReadByte()
		return err
	case SB:
		var prev byte
		for {
			b, err := c.reader.ReadByte()
			if err != nil {
				return err
			}
			if prev == IAC && b == SE {
				return nil
			}
			prev = b
		}
	}
	return nil
}

// WriteLine writes text followed by CRLF.
func (c *Conn) WriteLine(text string) error {
	return c.write(func(w io.Writer) error {
		_, err := io.WriteString(w, text+"\r\n")
		return err
	})
}

// Write writes data unchanged.
func (c *Conn) Write(data []byte) error {
	return c.write(func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// WritePrompt writes prompt without a line ending.
func (c *Conn) WritePrompt(prompt string) error {
	return c.write(func(w io.Writer) error {
		_, err := io.WriteString(w, prompt)
		return err
	})
}

func (c *Conn) write(fn func(io.Writer) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return fn(c.raw)
}

// Interrupt makes any blocked and every later ReadLine return ErrInterrupted.
func (c *Conn) Interrupt() {
	c.interrupted.Store(true)
	_ = c.raw.SetReadDeadline(time.Now())
}

// IsTimeout reports whether err is a read deadline expiring.
func IsTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the client's address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}
