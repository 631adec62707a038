package constants

// Action is the client's current activity, shown in user panels.
type Action uint8

const (
	ActionIdle Action = iota
	ActionAfk
	ActionPlaying
	ActionEditing
	ActionModding
	ActionMultiplayer
	ActionWatching
	ActionUnknown
	ActionTesting
	ActionSubmitting
	ActionPaused
	ActionLobby
	ActionMultiplaying
	ActionOsuDirect
)

// PresenceFilter is the scope of presence updates a client wants.
type PresenceFilter int32

const (
	PresenceFilterNil PresenceFilter = iota
	PresenceFilterAll
	PresenceFilterFriends
)

// GameModeCount covers the four vanilla modes plus the relax variants
// (std/taiko/catch; mania has no relax).
const GameModeCount = 7
