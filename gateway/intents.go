// ABOUTME: Intent bitmask flags gating which event families the connection receives.
// ABOUTME: Flags are OR-combined into the single integer sent at identify time.

package gateway

// Intent is a named bitmask flag selecting an event family.
type Intent uint32

// Intent flags as defined by the platform.
const (
	IntentGuilds                 Intent = 1 << 0
	IntentGuildMembers           Intent = 1 << 1
	IntentGuildBans              Intent = 1 << 2
	IntentGuildEmojisAndStickers Intent = 1 << 3
	IntentGuildIntegrations      Intent = 1 << 4
	IntentGuildWebhooks          Intent = 1 << 5
	IntentGuildInvites           Intent = 1 << 6
	IntentGuildVoiceStates       Intent = 1 << 7
	IntentGuildPresences         Intent = 1 << 8
	IntentGuildMessages          Intent = 1 << 9
	IntentGuildMessageReactions  Intent = 1 << 10
	IntentGuildMessageTyping     Intent = 1 << 11
	IntentDirectMessages         Intent = 1 << 12
	IntentDirectMessageReactions Intent = 1 << 13
	IntentDirectMessageTyping    Intent = 1 << 14
	IntentMessageContent         Intent = 1 << 15
)

// IntentsDefault subscribes guilds and guild messages.
const IntentsDefault = IntentGuilds | IntentGuildMessages

// IntentsAll subscribes every event family.
const IntentsAll Intent = 1<<16 - 1

// combineIntents folds the selected flags into the identify bitmask.
// An empty selection falls back to IntentsDefault.
func combineIntents(intents []Intent) uint32 {
	if len(intents) == 0 {
		return uint32(IntentsDefault)
	}
	var mask uint32
	for _, in := range intents {
		mask |= uint32(in)
	}
	return mask
}
