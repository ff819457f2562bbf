// Package handlers runs hot-seat fleet combat on a Telnet terminal.
package handlers

import (
	"strings"

	"github.com/cory-johannsen/heardround/internal/frontend/telnet"
)

// RenderLine styles one line of combat output for the terminal.
func RenderLine(line string) string {
	switch {
	case strings.HasPrefix(line, "Resolving combat round"):
		return telnet.Colorize(telnet.Bold+telnet.BrightYellow, line)
	case strings.Contains(line, "is destroyed!"):
		return telnet.Colorize(telnet.BrightRed, line)
	case strings.Contains(line, "carry-over damage"):
		return telnet.Colorize(telnet.Magenta, line)
	case strings.Contains(line, " takes ") || strings.Contains(line, " deals "):
		return telnet.Colorize(telnet.Yellow, line)
	case strings.HasPrefix(line, "Processing "):
		return telnet.Colorize(telnet.Cyan, line)
	default:
		return line
	}
}

// RenderText drops inline backticks, styles each line of text and joins
// the lines with CRLF.
func RenderText(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "`", ""), "\n")
	for i, l := range lines {
		lines[i] = RenderLine(l)
	}
	return strings.Join(lines, "\r\n")
}

// RenderSummary turns the chat-formatted combat summary into a framed
// terminal block, dropping code fences and inline backticks.
func RenderSummary(summary string) string {
	rule := telnet.Colorize(telnet.Dim, strings.Repeat("-", 60))
	out := []string{rule}
	for _, l := range strings.Split(summary, "\n") {
		if strings.HasPrefix(l, "```") {
			continue
		}
		l = strings.ReplaceAll(l, "`", "")
		switch {
		case strings.HasPrefix(l, "!!! "):
			l = telnet.Colorize(telnet.Bold+telnet.BrightCyan, l)
		case strings.HasSuffix(l, "PATROL MODE"):
			l = telnet.Colorize(telnet.BrightMagenta, l)
		}
		out = append(out, l)
	}
	out = append(out, rule)
	return strings.Join(out, "\r\n")
}
