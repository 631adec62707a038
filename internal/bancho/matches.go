package bancho

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/FireRedz/gulag/internal/bancho/serverpackets"
	"github.com/FireRedz/gulag/internal/constants"
	"github.com/FireRedz/gulag/internal/metrics"
	"github.com/FireRedz/gulag/internal/packet"
)

// MatchRegistry is the fixed table of live matches. Match ids are the
// table indexes; creation takes the lowest free one.
type MatchRegistry struct {
	srv *Server

	mu      sync.RWMutex
	matches [constants.MaxMatches]*Match
}

// NewMatchRegistry creates an empty registry.
func NewMatchRegistry(srv *Server) *MatchRegistry {
	return &MatchRegistry{srv: srv}
}

// ByID returns the match with the given id, or nil when the id is free
// or out of range.
func (mr *MatchRegistry) ByID(id int32) *Match {
	if id < 0 || id >= constants.MaxMatches {
		return nil
	}
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.matches[id]
}

// All returns a snapshot of the live matches.
func (mr *MatchRegistry) All() []*Match {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	var out []*Match
	for _, m := range mr.matches {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// Create allocates a match from a creator's settings snapshot, places
// the creator in slot 0 as host and announces the room to the lobby.
func (mr *MatchRegistry) Create(creator *Player, d packet.MatchData) (*Match, error) {
	mr.mu.Lock()

	id := int32(-1)
	for i := range mr.matches {
		if mr.matches[i] == nil {
			id = int32(i)
			break
		}
	}
	if id == -1 {
		mr.mu.Unlock()
		return nil, ErrLobbyFull
	}

	m := &Match{
		ID:          id,
		srv:         mr.srv,
		name:        d.Name,
		password:    d.Password,
		host:        creator,
		mapName:     d.MapName,
		mapID:       d.MapID,
		mapMD5:      d.MapMD5,
		mods:        constants.Mods(d.Mods),
		freemods:    d.Freemods,
		gameMode:    d.GameMode,
		matchType:   constants.MatchType(d.Type),
		teamType:    constants.TeamType(d.TeamType),
		scoringType: constants.ScoringType(d.ScoringType),
		seed:        d.Seed,
	}
	for i := range m.slots {
		m.slots[i].reset()
	}
	m.chat = &Channel{
		Name:      fmt.Sprintf("%s%d", constants.MultiplayerChannelPrefix, id),
		Topic:     fmt.Sprintf("Multiplayer room %d.", id),
		ReadPriv:  constants.PrivNormal,
		WritePriv: constants.PrivNormal,
		Instance:  true,
		members:   make(map[*Player]struct{}),
	}
	mr.matches[id] = m
	mr.mu.Unlock()

	mr.srv.channels.Add(m.chat)

	m.mu.Lock()
	s := &m.slots[0]
	s.Player = creator
	s.Status = constants.SlotNotReady
	s.Team = constants.TeamNeutral

	creator.mu.Lock()
	creator.match = m
	creator.mu.Unlock()

	creator.JoinChannel(m.chat)
	creator.Enqueue(serverpackets.MatchJoinSuccess(m.data(true)))

	if c := mr.srv.channels.Get(constants.LobbyChannel); c != nil {
		c.Enqueue(serverpackets.NewMatch(m.data(false)))
	}
	m.mu.Unlock()

	metrics.ActiveMatches.Inc()
	slog.Info("match created", "match", id, "name", d.Name, "host", creator.Name)
	return m, nil
}

// Dispose removes an emptied match and tells the lobby.
func (mr *MatchRegistry) Dispose(m *Match) {
	mr.mu.Lock()
	if mr.matches[m.ID] == m {
		mr.matches[m.ID] = nil
		metrics.ActiveMatches.Dec()
	}
	mr.mu.Unlock()

	if c := mr.srv.channels.Get(constants.LobbyChannel); c != nil {
		c.Enqueue(serverpackets.DisposeMatch(m.ID))
	}
}
