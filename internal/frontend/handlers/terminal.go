package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/heardround/internal/frontend/telnet"
	"github.com/cory-johannsen/heardround/internal/game/combat"
	"github.com/cory-johannsen/heardround/internal/gameserver"
)

// ErrQuit is returned when a player types quit at an encounter prompt.
var ErrQuit = errors.New("player quit")

// terminalChannel plays an encounter on one terminal shared by both
// players. Every prompt names the player whose turn it is.
type terminalChannel struct {
	conn *telnet.Conn
	id   string
}

func newTerminalChannel(conn *telnet.Conn) *terminalChannel {
	return &terminalChannel{conn: conn, id: "terminal-" + conn.RemoteAddr().String()}
}

func (t *terminalChannel) ID() string { return t.id }

func (t *terminalChannel) Mention(user combat.Identity) string {
	return telnet.Colorize(telnet.Bold+telnet.BrightGreen, user.DisplayName)
}

func (t *terminalChannel) SendLine(_ context.Context, text string) error {
	return t.conn.WriteLine(RenderText(text))
}

func (t *terminalChannel) EditSummary(_ context.Context, text string) error {
	return t.conn.WriteLine(RenderSummary(text))
}

// PromptChoice lists choices by key and reads until the player types one.
//
// Postcondition: Returns an offered key, ErrQuit, gameserver.ErrPromptTimeout
// when the read deadline passes, or ctx.Err() once the session is interrupted.
func (t *terminalChannel) PromptChoice(ctx context.Context, user combat.Identity, prompt string, choices []gameserver.Choice) (string, error) {
	width := 0
	for _, c := range choices {
		width = max(width, len(c.Key))
	}
	lines := []string{RenderText(prompt)}
	for _, c := range choices {
		lines = append(lines, fmt.Sprintf("  %s  %s", telnet.Colorize(telnet.BrightCyan, fmt.Sprintf("%-*s", width, c.Key)), c.Label))
	}
	if err := t.conn.WriteLine(strings.Join(lines, "\r\n")); err != nil {
		return "", err
	}

	for {
		answer, err := t.read(ctx, user)
		if err != nil {
			return "", err
		}
		for _, c := range choices {
			if strings.EqualFold(answer, c.Key) {
				return c.Key, nil
			}
		}
		if err := t.conn.WriteLine(telnet.Colorf(telnet.Red, "%q is not one of the choices", answer)); err != nil {
			return "", err
		}
	}
}

func (t *terminalChannel) AwaitMessage(ctx context.Context, user combat.Identity) (string, error) {
	for {
		line, err := t.read(ctx, user)
		if err != nil {
			return "", err
		}
		if line != "" {
			return line, nil
		}
	}
}

// read prompts user by name and returns the trimmed line they type.
func (t *terminalChannel) read(ctx context.Context, user combat.Identity) (string, error) {
	if err := t.conn.WritePrompt(telnet.Colorf(telnet.BrightGreen, "%s> ", user.DisplayName)); err != nil {
		return "", err
	}
	line, err := t.conn.ReadLine()
	switch {
	case errors.Is(err, telnet.ErrInterrupted) && ctx.Err() != nil:
		return "", ctx.Err()
	case telnet.IsTimeout(err):
		return "", gameserver.ErrPromptTimeout
	case err != nil:
		return "", err
	}
	line = strings.TrimSpace(line)
	if strings.EqualFold(line, "quit") {
		return "", ErrQuit
	}
	return line, nil
}
