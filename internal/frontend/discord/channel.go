package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/cory-johannsen/heardround/internal/game/combat"
	"github.com/cory-johannsen/heardround/internal/gameserver"
)

// session is the subset of *discordgo.Session the bot uses.
type session interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEdit(channelID, messageID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessagePin(channelID, messageID string, options ...discordgo.RequestOption) error
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelDelete(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
}

// maxMessageLen is Discord's limit on message content.
const maxMessageLen = 2000

// combatChannel plays one encounter in a Discord text channel. Choices are
// offered as reactions on the prompt message.
type combatChannel struct {
	api       session
	id        string
	waiters   *dispatcher
	timeout   time.Duration
	summaryID string
}

var _ gameserver.Channel = (*combatChannel)(nil)

func newCombatChannel(api session, id string, waiters *dispatcher, timeout time.Duration) *combatChannel {
	return &combatChannel{api: api, id: id, waiters: waiters, timeout: timeout}
}

func (c *combatChannel) ID() string { return c.id }

func (c *combatChannel) Mention(user combat.Identity) string { return "<@" + user.ID + ">" }

// SendLine posts text, splitting it on line boundaries when it exceeds the
// message limit.
func (c *combatChannel) SendLine(_ context.Context, text string) error {
	for _, part := range splitMessage(text, maxMessageLen) {
		if _, err := c.api.ChannelMessageSend(c.id, part); err != nil {
			return fmt.Errorf("sending to %s: %w", c.id, err)
		}
	}
	return nil
}

// EditSummary edits the pinned summary, sending and pinning it on first use.
func (c *combatChannel) EditSummary(_ context.Context, text string) error {
	if c.summaryID != "" {
		if _, err := c.api.ChannelMessageEdit(c.id, c.summaryID, text); err != nil {
			return fmt.Errorf("editing summary in %s: %w", c.id, err)
		}
		return nil
	}
	msg, err := c.api.ChannelMessageSend(c.id, text)
	if err != nil {
		return fmt.Errorf("sending summary to %s: %w", c.id, err)
	}
	c.summaryID = msg.ID
	if err := c.api.ChannelMessagePin(c.id, msg.ID); err != nil {
		return fmt.Errorf("pinning summary in %s: %w", c.id, err)
	}
	return nil
}

// PromptChoice posts prompt with one reaction per choice and waits for user
// to add one of them. Reactions from other users are ignored.
func (c *combatChannel) PromptChoice(ctx context.Context, user combat.Identity, prompt string, choices []gameserver.Choice) (string, error) {
	emoji := assignEmoji(choices)
	lines := []string{prompt}
	for i, ch := range choices {
		lines = append(lines, emoji[i]+": "+ch.Label)
	}
	msg, err := c.api.ChannelMessageSend(c.id, strings.Join(lines, "\n"))
	if err != nil {
		return "", fmt.Errorf("sending prompt to %s: %w", c.id, err)
	}

	reactions, unsubscribe := c.waiters.subscribeReactions(msg.ID, user.ID)
	defer unsubscribe()

	for _, e := range emoji {
		if err := c.api.MessageReactionAdd(c.id, msg.ID, e); err != nil {
			return "", fmt.Errorf("adding reaction in %s: %w", c.id, err)
		}
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
			return "", gameserver.ErrPromptTimeout
		case got := <-reactions:
			for i, e := range emoji {
				if sameEmoji(got, e) {
					return choices[i].Key, nil
				}
			}
		}
	}
}

// AwaitMessage waits for user's next message in the channel.
func (c *combatChannel) AwaitMessage(ctx context.Context, user combat.Identity) (string, error) {
	messages, unsubscribe := c.waiters.subscribeMessages(c.id, user.ID)
	defer unsubscribe()

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return "", gameserver.ErrPromptTimeout
	case text := <-messages:
		return text, nil
	}
}

// sameEmoji compares reactions ignoring the variation selector, which
// clients add or drop inconsistently.
func sameEmoji(a, b string) bool {
	return strings.ReplaceAll(a, "\ufe0f", "") == strings.ReplaceAll(b, "\ufe0f", "")
}

// splitMessage breaks text into parts of at most limit bytes, cutting at the
// last newline that fits. A single overlong line is cut at the limit.
func splitMessage(text string, limit int) []string {
	var parts []string
	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], "\n")
		if cut <= 0 {
			parts = append(parts, text[:limit])
			text = text[limit:]
			continue
		}
		parts = append(parts, text[:cut])
		text = text[cut+1:]
	}
	return append(parts, text)
}
