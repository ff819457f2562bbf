package discord

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
)

type sentMessage struct {
	channelID string
	id        string
	content   string
}

// fakeSession records REST calls in memory.
type fakeSession struct {
	mu        sync.Mutex
	nextID    int
	sent      []sentMessage
	edits     map[string]string
	pins      []string
	reactions map[string][]string
	channels  []*discordgo.Channel
	created   []discordgo.GuildChannelCreateData
	deleted   []string
	roles     []*discordgo.Role
	members   map[string]*discordgo.Member
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		edits:     make(map[string]string),
		reactions: make(map[string][]string),
		members:   make(map[string]*discordgo.Member),
	}
}

func (f *fakeSession) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

func (f *fakeSession) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := sentMessage{channelID: channelID, id: f.id("m"), content: content}
	f.sent = append(f.sent, m)
	return &discordgo.Message{ID: m.id, ChannelID: channelID, Content: content}, nil
}

func (f *fakeSession) ChannelMessageEdit(channelID, messageID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits[messageID] = content
	return &discordgo.Message{ID: messageID, ChannelID: channelID, Content: content}, nil
}

func (f *fakeSession) ChannelMessagePin(_, messageID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pins = append(f.pins, messageID)
	return nil
}

func (f *fakeSession) MessageReactionAdd(_, messageID, emojiID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions[messageID] = append(f.reactions[messageID], emojiID)
	return nil
}

func (f *fakeSession) GuildChannels(_ string, _ ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*discordgo.Channel(nil), f.channels...), nil
}

func (f *fakeSession) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, data)
	c := &discordgo.Channel{ID: f.id("c"), GuildID: guildID, Name: data.Name, Type: data.Type, ParentID: data.ParentID}
	f.channels = append(f.channels, c)
	return c, nil
}

func (f *fakeSession) ChannelDelete(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, channelID)
	return &discordgo.Channel{ID: channelID}, nil
}

func (f *fakeSession) GuildRoles(_ string, _ ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roles, nil
}

func (f *fakeSession) GuildMember(_, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[userID]
	if !ok {
		return nil, errors.New("HTTP 404 Not Found")
	}
	return m, nil
}

func (f *fakeSession) messagesIn(channelID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.sent {
		if m.channelID == channelID {
			out = append(out, m.content)
		}
	}
	return out
}

func (f *fakeSession) lastSent() sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

func (f *fakeSession) reactionsOn(messageID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.reactions[messageID]...)
}
