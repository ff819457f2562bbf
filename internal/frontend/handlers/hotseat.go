package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/heardround/internal/frontend/telnet"
	"github.com/cory-johannsen/heardround/internal/game/combat"
	"github.com/cory-johannsen/heardround/internal/game/command"
	"github.com/cory-johannsen/heardround/internal/gameserver"
)

const welcomeBanner = "\r\n" + telnet.Bold + telnet.BrightCyan +
	"  HEARD ROUND  fleet combat" + telnet.Reset + "\r\n\r\n" +
	"  Two players share this terminal and take turns at each prompt.\r\n" +
	"  Type " + telnet.Green + "start-combat <attacker> <defender>" + telnet.Reset + " to begin.\r\n" +
	"  Type " + telnet.Green + "help" + telnet.Reset + " for every command, " +
	telnet.Green + "quit" + telnet.Reset + " to disconnect.\r\n\r\n"

// terminalUsage overrides command usage where the terminal takes different
// arguments than the chat bot.
var terminalUsage = map[string]string{
	command.HandlerStartCombat: "<attacker> <defender>",
}

// HotseatHandler implements telnet.SessionHandler. It serves the command
// prompt and runs encounters between two players at one terminal.
type HotseatHandler struct {
	registry   *command.Registry
	encounters *gameserver.EncounterHandler
	logger     *zap.Logger
}

// NewHotseatHandler creates a HotseatHandler.
//
// Precondition: registry, encounters, and logger must be non-nil.
// Postcondition: Returns a HotseatHandler ready to handle sessions.
func NewHotseatHandler(registry *command.Registry, encounters *gameserver.EncounterHandler, logger *zap.Logger) *HotseatHandler {
	return &HotseatHandler{
		registry:   registry,
		encounters: encounters,
		logger:     logger,
	}
}

// HandleSession shows the banner and processes commands until the players
// quit or the connection fails.
//
// Postcondition: Returns nil on a clean quit, ctx.Err() on shutdown, or the
// read/write error that ended the session.
func (h *HotseatHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	start := time.Now()
	addr := conn.RemoteAddr().String()
	ch := newTerminalChannel(conn)

	if err := conn.Write([]byte(welcomeBanner)); err != nil {
		return fmt.Errorf("sending welcome: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
			return ctx.Err()
		default:
		}

		if err := conn.WritePrompt(telnet.Colorize(telnet.BrightWhite, "> ")); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}
		line, err := conn.ReadLine()
		if err != nil {
			if errors.Is(err, telnet.ErrInterrupted) && ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("reading input: %w", err)
		}

		parsed := command.Parse(line)
		if parsed.Command == "" {
			continue
		}
		cmd, ok := h.registry.Resolve(parsed.Command)
		if !ok {
			if err := conn.WriteLine(telnet.Colorf(telnet.Red, "Unknown command: %s. Type 'help' for available commands.", parsed.Command)); err != nil {
				return err
			}
			continue
		}

		switch cmd.Handler {
		case command.HandlerQuit:
			_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "Goodbye!"))
			h.logger.Info("terminal quit",
				zap.String("remote_addr", addr),
				zap.Duration("session_duration", time.Since(start)),
			)
			return nil
		case command.HandlerStartCombat:
			if err := h.startCombat(ctx, ch, parsed.Args); err != nil {
				return err
			}
			continue
		}

		if err := conn.WriteLine(h.reply(cmd, parsed)); err != nil {
			return err
		}
	}
}

// reply renders the output of an informational command.
func (h *HotseatHandler) reply(cmd *command.Command, parsed command.ParseResult) string {
	switch cmd.Handler {
	case command.HandlerHelp:
		return h.helpText()
	case command.HandlerShips:
		return RenderSummary(gameserver.ShipCatalogue())
	case command.HandlerCheckFleet:
		if parsed.RawArgs == "" {
			return "Usage: check-fleet <notation>"
		}
		out, err := gameserver.DescribeFleet(parsed.RawArgs)
		if err != nil {
			return telnet.Colorf(telnet.Red, "Could not read fleet: %v", err)
		}
		return strings.ReplaceAll(strings.ReplaceAll(out, "`", ""), "\n", "\r\n")
	case command.HandlerStatus:
		return "No combat is running. Type 'start-combat <attacker> <defender>' to begin."
	default:
		return fmt.Sprintf("%s is only available on Discord.", cmd.Name)
	}
}

func (h *HotseatHandler) helpText() string {
	var lines []string
	for _, cmd := range h.registry.Commands() {
		if cmd.Control {
			continue
		}
		usage := cmd.Usage
		if u, ok := terminalUsage[cmd.Handler]; ok {
			usage = u
		}
		lines = append(lines, fmt.Sprintf("  %s %s",
			telnet.Colorf(telnet.Green, "%-34s", strings.TrimSpace(cmd.Name+" "+usage)), cmd.Help))
	}
	return strings.Join(lines, "\r\n")
}

// startCombat runs one encounter to completion. Errors that end only the
// encounter are reported on the terminal; connection and shutdown errors
// are returned.
func (h *HotseatHandler) startCombat(ctx context.Context, ch *terminalChannel, args []string) error {
	if len(args) != 2 {
		return ch.conn.WriteLine("Usage: start-combat <attacker> <defender>")
	}
	if strings.EqualFold(args[0], args[1]) {
		return ch.conn.WriteLine("The attacker and defender need different names.")
	}
	attacker := combat.Identity{ID: "p1:" + args[0], DisplayName: args[0]}
	defender := combat.Identity{ID: "p2:" + args[1], DisplayName: args[1]}

	err := h.encounters.Start(ctx, ch, attacker, defender)
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, ErrQuit), errors.Is(err, gameserver.ErrPromptTimeout), errors.Is(err, combat.ErrEncounterActive):
		h.logger.Debug("terminal encounter ended early", zap.String("channel", ch.ID()), zap.Error(err))
		return nil
	default:
		return err
	}
}
