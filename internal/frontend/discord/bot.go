// Package discord runs fleet encounters over a Discord bot: prefix commands,
// one private channel per combat, and reaction prompts.
package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/cory-johannsen/heardround/internal/config"
	"github.com/cory-johannsen/heardround/internal/game/combat"
	"github.com/cory-johannsen/heardround/internal/game/command"
	"github.com/cory-johannsen/heardround/internal/gameserver"
)

// Resumer lists encounters left unfinished by a previous process.
type Resumer interface {
	ListUnfinished(ctx context.Context) ([]combat.Snapshot, error)
}

// Bot manages the Discord session and dispatches commands and prompt answers.
type Bot struct {
	session    *discordgo.Session
	api        session
	cfg        config.DiscordConfig
	registry   *command.Registry
	encounters *gameserver.EncounterHandler
	resumer    Resumer
	waiters    *dispatcher
	logger     *zap.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// NewBot creates a Bot on a new Discord session. The gateway connection is
// opened by Start.
//
// Precondition: cfg.Token must be non-empty; registry, encounters and logger
// must be non-nil; resumer may be nil.
// Postcondition: Returns a Bot with its gateway handlers registered, or an error.
func NewBot(cfg config.DiscordConfig, registry *command.Registry, encounters *gameserver.EncounterHandler, resumer Resumer, logger *zap.Logger) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent

	b := newBot(s, cfg, registry, encounters, resumer, logger)
	b.session = s
	s.AddHandler(b.onMessageCreate)
	s.AddHandler(b.onReactionAdd)
	return b, nil
}

func newBot(api session, cfg config.DiscordConfig, registry *command.Registry, encounters *gameserver.EncounterHandler, resumer Resumer, logger *zap.Logger) *Bot {
	return &Bot{
		api:        api,
		cfg:        cfg,
		registry:   registry,
		encounters: encounters,
		resumer:    resumer,
		waiters:    newDispatcher(),
		logger:     logger,
		ctx:        context.Background(),
		cancels:    make(map[string]context.CancelFunc),
	}
}

// Start opens the gateway, resumes interrupted encounters, and blocks until
// ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()

	if b.session != nil {
		if err := b.session.Open(); err != nil {
			return fmt.Errorf("opening discord gateway: %w", err)
		}
		b.logger.Info("discord bot connected")
	}
	b.resumeAll(ctx)

	<-ctx.Done()
	return nil
}

// Stop cancels running encounters, waits for them to return, and closes the
// gateway connection.
func (b *Bot) Stop() {
	b.mu.Lock()
	for _, cancel := range b.cancels {
		cancel()
	}
	b.mu.Unlock()
	b.wg.Wait()

	if b.session != nil {
		if err := b.session.Close(); err != nil {
			b.logger.Warn("closing discord session", zap.Error(err))
		}
		b.logger.Info("discord bot disconnected")
	}
}

func (b *Bot) context() context.Context {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ctx
}

func (b *Bot) resumeAll(ctx context.Context) {
	if b.resumer == nil {
		return
	}
	snapshots, err := b.resumer.ListUnfinished(ctx)
	if err != nil {
		b.logger.Error("listing unfinished encounters", zap.Error(err))
		return
	}
	for _, sn := range snapshots {
		b.runEncounter(sn.ChannelID, func(ctx context.Context, ch gameserver.Channel) error {
			return b.encounters.Resume(ctx, ch, sn)
		})
	}
}

// runEncounter plays an encounter in channelID on its own goroutine.
func (b *Bot) runEncounter(channelID string, run func(context.Context, gameserver.Channel) error) {
	ctx, cancel := context.WithCancel(b.context())
	b.mu.Lock()
	b.cancels[channelID] = cancel
	b.mu.Unlock()

	ch := newCombatChannel(b.api, channelID, b.waiters, b.cfg.PromptTimeout)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			cancel()
			b.mu.Lock()
			delete(b.cancels, channelID)
			b.mu.Unlock()
		}()
		if err := run(ctx, ch); err != nil {
			b.logger.Info("encounter ended early", zap.String("channel", channelID), zap.Error(err))
		}
	}()
}

// stopEncounter cancels the encounter running in channelID, if any.
func (b *Bot) stopEncounter(channelID string) {
	b.mu.Lock()
	cancel, ok := b.cancels[channelID]
	b.mu.Unlock()
	if ok {
		cancel()
	}
}

// incoming is a guild message reduced to what command handling needs.
type incoming struct {
	ChannelID string
	GuildID   string
	Author    combat.Identity
	RoleIDs   []string
	Content   string
	Mentions  []string
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}
	if b.cfg.GuildID != "" && m.GuildID != b.cfg.GuildID {
		return
	}

	in := incoming{
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Author:    identityOf(m.Member, m.Author),
		Content:   m.Content,
	}
	if m.Member != nil {
		in.RoleIDs = m.Member.Roles
	}
	for _, u := range m.Mentions {
		in.Mentions = append(in.Mentions, u.ID)
	}
	b.handleMessage(in)
}

func (b *Bot) onReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if s.State != nil && s.State.User != nil && r.UserID == s.State.User.ID {
		return
	}
	b.waiters.deliverReaction(r.MessageID, r.UserID, r.Emoji.Name)
}

// identityOf names a user by guild nickname, then global name, then username.
func identityOf(member *discordgo.Member, user *discordgo.User) combat.Identity {
	name := user.Username
	switch {
	case member != nil && member.Nick != "":
		name = member.Nick
	case user.GlobalName != "":
		name = user.GlobalName
	}
	return combat.Identity{ID: user.ID, DisplayName: name}
}

func (b *Bot) reply(channelID, text string) {
	for _, part := range splitMessage(text, maxMessageLen) {
		if _, err := b.api.ChannelMessageSend(channelID, part); err != nil {
			b.logger.Warn("sending reply", zap.String("channel", channelID), zap.Error(err))
			return
		}
	}
}
