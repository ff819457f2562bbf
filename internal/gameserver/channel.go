// Package gameserver drives fleet encounters through a chat channel.
package gameserver

import (
	"context"
	"errors"

	"github.com/cory-johannsen/heardround/internal/game/combat"
)

// Choice keys with a fixed meaning. Column choices use the column number
// ("1".."5") and lane choices the lowercase lane name ("left").
const (
	ChoiceFight   = "fight"
	ChoiceRetreat = "retreat"
	ChoiceYes     = "yes"
	ChoiceNo      = "no"
	ChoiceSkip    = "skip"
)

var (
	// ErrPromptTimeout is returned by a Channel when a participant does not
	// answer in time.
	ErrPromptTimeout = errors.New("no response from player")
	// ErrInvalidChoice is returned when a Channel answers with a key that
	// was not offered.
	ErrInvalidChoice = errors.New("invalid choice")
	// ErrEmptyFleet is reported to a player whose notation holds no ships.
	ErrEmptyFleet = errors.New("fleet has no ships")
)

// Choice is one option offered to a participant.
type Choice struct {
	Key   string
	Label string
}

// Channel is the chat surface an encounter is played in.
//
// Implementations must be safe for use by the single goroutine running the
// encounter; they need not be safe for concurrent use.
type Channel interface {
	// ID identifies the channel; it keys the encounter in the combat.Engine.
	ID() string
	// Mention renders user so that the platform notifies them.
	Mention(user combat.Identity) string
	// SendLine posts a message to the channel.
	SendLine(ctx context.Context, text string) error
	// EditSummary replaces the pinned status summary, creating it on first use.
	EditSummary(ctx context.Context, text string) error
	// PromptChoice asks user to pick one of choices and returns its Key.
	// Only user's answer counts.
	PromptChoice(ctx context.Context, user combat.Identity, prompt string, choices []Choice) (string, error)
	// AwaitMessage returns the next message user posts in the channel.
	AwaitMessage(ctx context.Context, user combat.Identity) (string, error)
}

// Store persists encounter snapshots so an interrupted encounter can resume.
type Store interface {
	Save(ctx context.Context, sn combat.Snapshot) error
}
