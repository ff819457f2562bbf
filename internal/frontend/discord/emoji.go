package discord

import (
	"github.com/cory-johannsen/heardround/internal/gameserver"
)

// keyEmoji is the reaction offered for each fixed choice key.
var keyEmoji = map[string]string{
	gameserver.ChoiceFight:   "⚔️",
	gameserver.ChoiceRetreat: "🏳️",
	gameserver.ChoiceYes:     "✅",
	gameserver.ChoiceNo:      "❌",
	gameserver.ChoiceSkip:    "🚫",
	"1":                      "1️⃣",
	"2":                      "2️⃣",
	"3":                      "3️⃣",
	"4":                      "4️⃣",
	"5":                      "5️⃣",
	"left":                   "⬅️",
	"middle":                 "⏺️",
	"right":                  "➡️",
}

// fallbackEmoji labels choices whose key has no fixed reaction.
var fallbackEmoji = []string{"🇦", "🇧", "🇨", "🇩", "🇪", "🇫", "🇬", "🇭", "🇮", "🇯"}

// assignEmoji returns one distinct reaction per choice, in choice order.
//
// Precondition: len(choices) <= len(keyEmoji)+len(fallbackEmoji).
func assignEmoji(choices []gameserver.Choice) []string {
	used := make(map[string]bool, len(choices))
	out := make([]string, len(choices))
	for i, c := range choices {
		if e, ok := keyEmoji[c.Key]; ok && !used[e] {
			out[i] = e
			used[e] = true
		}
	}
	next := 0
	for i := range out {
		if out[i] != "" {
			continue
		}
		for used[fallbackEmoji[next]] {
			next++
		}
		out[i] = fallbackEmoji[next]
		used[out[i]] = true
	}
	return out
}
