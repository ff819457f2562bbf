package discord

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/heardround/internal/game/combat"
	"github.com/cory-johannsen/heardround/internal/gameserver"
)

var (
	alice = combat.Identity{ID: "u1", DisplayName: "Alice"}
	bob   = combat.Identity{ID: "u2", DisplayName: "Bob"}
)

func TestCombatChannel_EditSummaryPinsOnce(t *testing.T) {
	api := newFakeSession()
	ch := newCombatChannel(api, "chan-1", newDispatcher(), time.Second)

	require.NoError(t, ch.EditSummary(context.Background(), "first"))
	require.NoError(t, ch.EditSummary(context.Background(), "second"))

	assert.Equal(t, []string{"first"}, api.messagesIn("chan-1"))
	require.Len(t, api.pins, 1)
	assert.Equal(t, "second", api.edits[api.pins[0]])
}

func TestCombatChannel_PromptChoiceWaitsForPromptedUser(t *testing.T) {
	api := newFakeSession()
	waiters := newDispatcher()
	ch := newCombatChannel(api, "chan-1", waiters, 5*time.Second)

	choices := []gameserver.Choice{
		{Key: gameserver.ChoiceFight, Label: "Fight"},
		{Key: gameserver.ChoiceRetreat, Label: "Retreat"},
	}
	type result struct {
		key string
		err error
	}
	done := make(chan result, 1)
	go func() {
		key, err := ch.PromptChoice(context.Background(), alice, "<@u1>, will you fight or retreat?", choices)
		done <- result{key, err}
	}()

	var msgID string
	require.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		if len(api.sent) == 0 {
			return false
		}
		msgID = api.sent[0].id
		return len(api.reactions[msgID]) == 2
	}, 2*time.Second, 5*time.Millisecond)

	want := "<@u1>, will you fight or retreat?\n" + keyEmoji[gameserver.ChoiceFight] + ": Fight\n" + keyEmoji[gameserver.ChoiceRetreat] + ": Retreat"
	assert.Equal(t, want, api.messagesIn("chan-1")[0])

	waiters.deliverReaction(msgID, bob.ID, keyEmoji[gameserver.ChoiceRetreat])
	waiters.deliverReaction(msgID, alice.ID, "🎉")
	// Clients may drop the variation selector.
	waiters.deliverReaction(msgID, alice.ID, strings.ReplaceAll(keyEmoji[gameserver.ChoiceRetreat], "\ufe0f", ""))

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Equal(t, gameserver.ChoiceRetreat, r.key)
	case <-time.After(2 * time.Second):
		t.Fatal("prompt did not return")
	}
}

func TestCombatChannel_PromptTimesOut(t *testing.T) {
	api := newFakeSession()
	ch := newCombatChannel(api, "chan-1", newDispatcher(), 20*time.Millisecond)

	_, err := ch.PromptChoice(context.Background(), alice, "pick", []gameserver.Choice{{Key: "yes", Label: "Yes"}})
	assert.ErrorIs(t, err, gameserver.ErrPromptTimeout)

	_, err = ch.AwaitMessage(context.Background(), alice)
	assert.ErrorIs(t, err, gameserver.ErrPromptTimeout)
}

func TestCombatChannel_AwaitMessageHonoursContext(t *testing.T) {
	ch := newCombatChannel(newFakeSession(), "chan-1", newDispatcher(), time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ch.AwaitMessage(ctx, alice)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCombatChannel_AwaitMessageReceivesAuthorOnly(t *testing.T) {
	waiters := newDispatcher()
	ch := newCombatChannel(newFakeSession(), "chan-1", waiters, 5*time.Second)

	done := make(chan string, 1)
	go func() {
		text, _ := ch.AwaitMessage(context.Background(), alice)
		done <- text
	}()
	require.Eventually(t, func() bool {
		return waiters.deliverMessage("chan-1", alice.ID, "F10[1,0]")
	}, 2*time.Second, 5*time.Millisecond)
	assert.False(t, waiters.deliverMessage("chan-2", alice.ID, "elsewhere"))
	assert.Equal(t, "F10[1,0]", <-done)
}

func TestAssignEmoji(t *testing.T) {
	got := assignEmoji([]gameserver.Choice{
		{Key: "2"}, {Key: "left"}, {Key: "custom"}, {Key: gameserver.ChoiceSkip}, {Key: "other"},
	})
	assert.Equal(t, []string{keyEmoji["2"], keyEmoji["left"], fallbackEmoji[0], keyEmoji[gameserver.ChoiceSkip], fallbackEmoji[1]}, got)
}

func TestAssignEmoji_Property_Distinct(t *testing.T) {
	keys := []string{"1", "2", "3", "4", "5", "left", "middle", "right", "yes", "no", "skip", "x", "y"}
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 8).Draw(rt, "n")
		var choices []gameserver.Choice
		for i := 0; i < n; i++ {
			choices = append(choices, gameserver.Choice{Key: rapid.SampledFrom(keys).Draw(rt, "key")})
		}
		got := assignEmoji(choices)
		seen := make(map[string]bool)
		for _, e := range got {
			if seen[e] {
				rt.Fatalf("emoji %q assigned twice in %v", e, got)
			}
			seen[e] = true
		}
	})
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))
	assert.Equal(t, []string{"aaaa\nbbbb", "cccc"}, splitMessage("aaaa\nbbbb\ncccc", 10))
	assert.Equal(t, []string{"abcdefghij", "klm"}, splitMessage("abcdefghijklm", 10))

	long := strings.Repeat("line of text\n", 400)
	for _, part := range splitMessage(long, maxMessageLen) {
		assert.LessOrEqual(t, len(part), maxMessageLen)
	}
}
