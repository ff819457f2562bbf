package discord

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/cory-johannsen/heardround/internal/game/combat"
	"github.com/cory-johannsen/heardround/internal/game/command"
	"github.com/cory-johannsen/heardround/internal/gameserver"
)

// combatChannelPrefix names every channel the bot creates for an encounter.
const combatChannelPrefix = "combat-"

const (
	playerPermissions = discordgo.PermissionViewChannel |
		discordgo.PermissionSendMessages |
		discordgo.PermissionAddReactions |
		discordgo.PermissionReadMessageHistory
	staffPermissions = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages
)

// handleMessage runs a prefix command, or hands any other message to the
// encounter waiting on its author.
func (b *Bot) handleMessage(in incoming) {
	res, ok := command.ParsePrefixed(in.Content, b.cfg.CommandPrefix)
	if !ok {
		b.waiters.deliverMessage(in.ChannelID, in.Author.ID, strings.TrimSpace(in.Content))
		return
	}
	cmd, ok := b.registry.Resolve(res.Command)
	if !ok {
		b.logger.Debug("unknown command", zap.String("command", res.Command), zap.String("user", in.Author.ID))
		return
	}

	control := b.isControl(in)
	if cmd.Control && !control {
		b.reply(in.ChannelID, fmt.Sprintf("You need the `%s` role to use `%s%s`", b.cfg.ControlRole, b.cfg.CommandPrefix, cmd.Name))
		return
	}

	switch cmd.Handler {
	case command.HandlerStartCombat:
		b.startCombat(in)
	case command.HandlerClearCombat:
		b.clearCombat(in)
	case command.HandlerStatus:
		b.status(in)
	case command.HandlerCheckFleet:
		out, err := gameserver.DescribeFleet(res.RawArgs)
		if err != nil {
			b.reply(in.ChannelID, fmt.Sprintf("Could not read fleet: %v", err))
			return
		}
		b.reply(in.ChannelID, out)
	case command.HandlerShips:
		b.reply(in.ChannelID, gameserver.ShipCatalogue())
	case command.HandlerHelp:
		b.reply(in.ChannelID, b.registry.HelpText(b.cfg.CommandPrefix, control))
	case command.HandlerQuit:
		b.reply(in.ChannelID, "There is nothing to quit here; use the retreat reaction to leave a combat")
	}
}

// isControl reports whether the author holds the control or bot-master role.
func (b *Bot) isControl(in incoming) bool {
	if len(in.RoleIDs) == 0 {
		return false
	}
	staff, err := b.staffRoles(in.GuildID)
	if err != nil {
		b.logger.Warn("checking control role", zap.String("guild", in.GuildID), zap.Error(err))
		return false
	}
	for _, id := range in.RoleIDs {
		if slices.Contains(staff, id) {
			return true
		}
	}
	return false
}

func (b *Bot) startCombat(in incoming) {
	var defenderID string
	for _, id := range in.Mentions {
		if id != in.Author.ID {
			defenderID = id
			break
		}
	}
	if defenderID == "" {
		b.reply(in.ChannelID, fmt.Sprintf("Usage: `%sstart-combat <@defender>`", b.cfg.CommandPrefix))
		return
	}
	member, err := b.api.GuildMember(in.GuildID, defenderID)
	if err != nil || member == nil || member.User == nil {
		b.logger.Warn("looking up defender", zap.String("user", defenderID), zap.Error(err))
		b.reply(in.ChannelID, "Could not find that player in this server")
		return
	}
	attacker := in.Author
	defender := identityOf(member, member.User)

	ch, err := b.createCombatChannel(in.GuildID, attacker, defender)
	if err != nil {
		b.logger.Error("creating combat channel", zap.Error(err))
		b.reply(in.ChannelID, "Could not create a combat channel")
		return
	}
	b.logger.Info("combat channel created",
		zap.String("channel", ch.ID),
		zap.String("attacker", attacker.ID),
		zap.String("defender", defender.ID),
	)
	b.reply(in.ChannelID, fmt.Sprintf("Combat channel created: <#%s>", ch.ID))

	b.runEncounter(ch.ID, func(ctx context.Context, gc gameserver.Channel) error {
		return b.encounters.Start(ctx, gc, attacker, defender)
	})
}

// staffRoles returns the IDs of the control and bot-master roles that exist.
func (b *Bot) staffRoles(guildID string) ([]string, error) {
	roles, err := b.api.GuildRoles(guildID)
	if err != nil {
		return nil, fmt.Errorf("listing roles: %w", err)
	}
	var out []string
	for _, r := range roles {
		if strings.EqualFold(r.Name, b.cfg.ControlRole) || strings.EqualFold(r.Name, b.cfg.BotMasterRole) {
			out = append(out, r.ID)
		}
	}
	return out, nil
}

// combatCategory finds the combat category, creating it hidden from everyone
// but staff when missing.
func (b *Bot) combatCategory(guildID string, staff []string) (*discordgo.Channel, error) {
	channels, err := b.api.GuildChannels(guildID)
	if err != nil {
		return nil, fmt.Errorf("listing channels: %w", err)
	}
	for _, c := range channels {
		if c.Type == discordgo.ChannelTypeGuildCategory && strings.EqualFold(c.Name, b.cfg.CombatCategory) {
			return c, nil
		}
	}

	overwrites := []*discordgo.PermissionOverwrite{
		{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
	}
	for _, id := range staff {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID: id, Type: discordgo.PermissionOverwriteTypeRole, Allow: discordgo.PermissionViewChannel,
		})
	}
	category, err := b.api.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 b.cfg.CombatCategory,
		Type:                 discordgo.ChannelTypeGuildCategory,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return nil, fmt.Errorf("creating category %q: %w", b.cfg.CombatCategory, err)
	}
	b.logger.Info("combat category created", zap.String("category", category.ID))
	return category, nil
}

// createCombatChannel opens a private channel for the two participants.
func (b *Bot) createCombatChannel(guildID string, attacker, defender combat.Identity) (*discordgo.Channel, error) {
	staff, err := b.staffRoles(guildID)
	if err != nil {
		return nil, err
	}
	category, err := b.combatCategory(guildID, staff)
	if err != nil {
		return nil, err
	}

	overwrites := []*discordgo.PermissionOverwrite{
		{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
		{ID: attacker.ID, Type: discordgo.PermissionOverwriteTypeMember, Allow: playerPermissions},
		{ID: defender.ID, Type: discordgo.PermissionOverwriteTypeMember, Allow: playerPermissions},
	}
	for _, id := range staff {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID: id, Type: discordgo.PermissionOverwriteTypeRole, Allow: staffPermissions,
		})
	}
	return b.api.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 fmt.Sprintf("%s%d", combatChannelPrefix, rand.Intn(1<<16)),
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             category.ID,
		PermissionOverwrites: overwrites,
	})
}

// clearCombat deletes every combat channel in the combat category and stops
// the encounters running in them.
func (b *Bot) clearCombat(in incoming) {
	channels, err := b.api.GuildChannels(in.GuildID)
	if err != nil {
		b.logger.Error("listing channels", zap.Error(err))
		b.reply(in.ChannelID, "Could not list channels")
		return
	}
	var categoryID string
	for _, c := range channels {
		if c.Type == discordgo.ChannelTypeGuildCategory && strings.EqualFold(c.Name, b.cfg.CombatCategory) {
			categoryID = c.ID
		}
	}
	var targets []*discordgo.Channel
	for _, c := range channels {
		if categoryID != "" && c.ParentID == categoryID && c.Type == discordgo.ChannelTypeGuildText &&
			strings.HasPrefix(c.Name, combatChannelPrefix) {
			targets = append(targets, c)
		}
	}

	b.reply(in.ChannelID, fmt.Sprintf("Deleting %d channels, please wait...", len(targets)))
	for _, c := range targets {
		b.stopEncounter(c.ID)
		if _, err := b.api.ChannelDelete(c.ID); err != nil {
			b.logger.Warn("deleting combat channel", zap.String("channel", c.ID), zap.Error(err))
		}
	}
	b.logger.Info("combat channels cleared", zap.Int("count", len(targets)), zap.String("user", in.Author.ID))
	b.reply(in.ChannelID, "Done!")
}

func (b *Bot) status(in incoming) {
	enc, ok := b.encounters.Engine().Get(in.ChannelID)
	if !ok {
		b.reply(in.ChannelID, "There is no combat in this channel")
		return
	}
	b.reply(in.ChannelID, enc.State().String())
}
