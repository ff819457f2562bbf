// Package telnet serves the hot-seat terminal: Telnet line handling plus
// ANSI styling for combat output.
package telnet

import (
	"fmt"
	"strings"
)

const esc = '\033'

// SGR styles used by the combat renderer.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightRed     = "\033[91m"
	BrightGreen   = "\033[92m"
	BrightYellow  = "\033[93m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"
	BrightWhite   = "\033[97m"
)

// Colorize wraps text in style and a trailing Reset.
//
// Precondition: style must be one of the SGR constants or a concatenation of them.
func Colorize(style, text string) string {
	return style + text + Reset
}

// Colorf is Colorize over a fmt.Sprintf result.
func Colorf(style, format string, args ...any) string {
	return Colorize(style, fmt.Sprintf(format, args...))
}

// StripANSI removes SGR sequences (ESC [ ... m) from s. An unterminated
// sequence is kept as-is.
//
// Postcondition: len(result) <= len(s).
func StripANSI(s string) string {
	if strings.IndexByte(s, esc) < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == esc && i+1 < len(s) && s[i+1] == '[' {
			if end := strings.IndexByte(s[i+2:], 'm'); end >= 0 {
				i += end + 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
