// Package command provides the command registry, parser, and built-in command definitions.
package command

// Categories for organizing commands.
const (
	CategoryCombat = "combat"
	CategoryFleet  = "fleet"
	CategorySystem = "system"
	CategoryAdmin  = "admin"
)

// Handler identifiers mapping commands to transport handlers.
const (
	HandlerStartCombat = "start_combat"
	HandlerClearCombat = "clear_combat"
	HandlerStatus      = "status"
	HandlerCheckFleet  = "check_fleet"
	HandlerShips       = "ships"
	HandlerHelp        = "help"
	HandlerQuit        = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument shape, e.g. "<@defender>".
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command.
	Category string
	// Handler maps to the transport's handler for this command.
	Handler string
	// Control marks commands restricted to the control role.
	Control bool
}

// BuiltinCommands returns all built-in bot commands.
func BuiltinCommands() []Command {
	return []Command{
		{
			Name: "start-combat", Aliases: []string{"attack", "sc"},
			Usage: "<@defender>", Help: "Open a combat channel against one player",
			Category: CategoryCombat, Handler: HandlerStartCombat,
		},
		{
			Name: "clear-combat", Aliases: []string{"cc"},
			Help:     "Delete every combat channel",
			Category: CategoryAdmin, Handler: HandlerClearCombat, Control: true,
		},
		{
			Name: "status", Aliases: []string{"st"},
			Help:     "Show the combat summary for this channel",
			Category: CategoryCombat, Handler: HandlerStatus,
		},
		{
			Name: "check-fleet", Aliases: []string{"fleet"},
			Usage: "<notation>", Help: "Parse fleet notation and show the columns it builds",
			Category: CategoryFleet, Handler: HandlerCheckFleet,
		},
		{
			Name: "ships", Aliases: []string{"catalogue", "catalog"},
			Help:     "List every ship kind with its code and stats",
			Category: CategoryFleet, Handler: HandlerShips,
		},
		{
			Name: "help", Aliases: []string{"?"},
			Help:     "Show available commands",
			Category: CategorySystem, Handler: HandlerHelp,
		},
		{
			Name: "quit", Aliases: []string{"exit"},
			Help:     "Leave the session (telnet only)",
			Category: CategorySystem, Handler: HandlerQuit,
		},
	}
}
