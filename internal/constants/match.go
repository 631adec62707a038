package constants

// SlotStatus is the wire-level state of one multiplayer slot.
// Values are bit flags; SlotHasPlayer is the occupancy mask.
type SlotStatus uint8

const (
	SlotOpen     SlotStatus = 1 << 0
	SlotLocked   SlotStatus = 1 << 1
	SlotNotReady SlotStatus = 1 << 2
	SlotReady    SlotStatus = 1 << 3
	SlotNoMap    SlotStatus = 1 << 4
	SlotPlaying  SlotStatus = 1 << 5
	SlotComplete SlotStatus = 1 << 6
	SlotQuit     SlotStatus = 1 << 7

	SlotHasPlayer = SlotNotReady | SlotReady | SlotNoMap | SlotPlaying | SlotComplete
)

// Team is a slot's team assignment in team modes.
type Team uint8

const (
	TeamNeutral Team = iota
	TeamBlue
	TeamRed
)

// MatchType distinguishes standard matches from the unused powerplay mode.
type MatchType uint8

const (
	MatchTypeStandard MatchType = iota
	MatchTypePowerplay
)

// ScoringType is the win condition of a match.
type ScoringType uint8

const (
	ScoringScore ScoringType = iota
	ScoringAccuracy
	ScoringCombo
	ScoringScoreV2
)

// TeamType is the team arrangement of a match.
type TeamType uint8

const (
	TeamTypeHeadToHead TeamType = iota
	TeamTypeTagCoop
	TeamTypeTeamVs
	TeamTypeTagTeamVs
)
