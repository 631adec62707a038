package constants

import "time"

// Bancho protocol constants. These values are fixed by the osu! client.
const (
	// ProtocolVersion is the bancho protocol revision spoken by stable builds.
	ProtocolVersion = 19

	// FrameHeaderSize is u16 packet id + u8 pad + u32 payload length.
	FrameHeaderSize = 7

	// MaxMessageLength is the hard cap on chat message bodies; longer
	// messages are truncated to TruncatedMessageLength plus an ellipsis.
	MaxMessageLength       = 2048
	TruncatedMessageLength = 2045

	// MatchSlots is the fixed slot count of a multiplayer match.
	MatchSlots = 16

	// MaxMatches is the capacity of the match table.
	MaxMatches = 64

	// NoBeatmapID is the map id the client sends for an unsubmitted map.
	NoBeatmapID int32 = -1

	// BotUserID is the reserved account id of the server-resident bot.
	BotUserID int32 = 1
)

const (
	// DisplaceWindow guards a live session against same-name relogins.
	// A second login inside the window is refused; past it, the stale
	// session is evicted.
	DisplaceWindow = 10 * time.Second

	// PingTimeout is the idle threshold for the pingout sweep.
	PingTimeout = 90 * time.Second

	// LogoutGrace drops logout requests arriving right after login; the
	// client has a habit of sending one while reconnecting.
	LogoutGrace = 2 * time.Second
)

// Dynamic channel name prefixes.
const (
	SpectatorChannelPrefix   = "#spec_"
	MultiplayerChannelPrefix = "#multi_"
	LobbyChannel             = "#lobby"
)
