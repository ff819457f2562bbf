package discord

import (
	"sync"
)

// waitKey scopes a waiter to one user in one channel (messages) or on one
// message (reactions).
type waitKey struct {
	scope  string
	userID string
}

// dispatcher routes gateway events to encounter goroutines waiting on a
// specific user's message or reaction.
type dispatcher struct {
	mu        sync.Mutex
	messages  map[waitKey]chan string
	reactions map[waitKey]chan string
}

func newDispatcher() *dispatcher {
	return &dispatcher{
		messages:  make(map[waitKey]chan string),
		reactions: make(map[waitKey]chan string),
	}
}

// subscribeMessages returns the channel receiving userID's messages in
// channelID until unsubscribe is called.
func (d *dispatcher) subscribeMessages(channelID, userID string) (<-chan string, func()) {
	return d.subscribe(d.messages, waitKey{scope: channelID, userID: userID})
}

// subscribeReactions returns the channel receiving the emoji userID adds to
// messageID until unsubscribe is called.
func (d *dispatcher) subscribeReactions(messageID, userID string) (<-chan string, func()) {
	return d.subscribe(d.reactions, waitKey{scope: messageID, userID: userID})
}

func (d *dispatcher) subscribe(m map[waitKey]chan string, k waitKey) (<-chan string, func()) {
	ch := make(chan string, 8)
	d.mu.Lock()
	m[k] = ch
	d.mu.Unlock()
	return ch, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if m[k] == ch {
			delete(m, k)
		}
	}
}

// deliverMessage hands content to a waiter, reporting whether one was waiting.
func (d *dispatcher) deliverMessage(channelID, userID, content string) bool {
	return d.deliver(d.messages, waitKey{scope: channelID, userID: userID}, content)
}

// deliverReaction hands emoji to a waiter, reporting whether one was waiting.
func (d *dispatcher) deliverReaction(messageID, userID, emoji string) bool {
	return d.deliver(d.reactions, waitKey{scope: messageID, userID: userID}, emoji)
}

func (d *dispatcher) deliver(m map[waitKey]chan string, k waitKey, v string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	ch, ok := m[k]
	if !ok {
		return false
	}
	select {
	case ch <- v:
		return true
	default:
		// Waiter is saturated; drop rather than block the gateway goroutine.
		return false
	}
}
