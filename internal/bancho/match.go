package bancho

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/FireRedz/gulag/internal/bancho/serverpackets"
	"github.com/FireRedz/gulag/internal/constants"
	"github.com/FireRedz/gulag/internal/packet"
)

var (
	// ErrLobbyFull means all match ids are taken.
	ErrLobbyFull = errors.New("no free match id")
	// ErrMatchFull means no open slot was available to join.
	ErrMatchFull = errors.New("no open slot")
	// ErrBadPassword means the join password did not match.
	ErrBadPassword = errors.New("incorrect match password")
)

// Slot is one of a match's sixteen player positions.
type Slot struct {
	Player  *Player
	Status  constants.SlotStatus
	Team    constants.Team
	Mods    constants.Mods
	Loaded  bool
	Skipped bool
}

// HasPlayer reports whether the slot's status carries a player.
func (s *Slot) HasPlayer() bool {
	return s.Status&constants.SlotHasPlayer != 0
}

// reset empties the slot back to its initial open state.
func (s *Slot) reset() {
	s.Player = nil
	s.Status = constants.SlotOpen
	s.Team = constants.TeamNeutral
	s.Mods = 0
	s.Loaded = false
	s.Skipped = false
}

// copyFrom moves another slot's occupant into s.
func (s *Slot) copyFrom(o *Slot) {
	s.Player = o.Player
	s.Status = o.Status
	s.Team = o.Team
	s.Mods = o.Mods
	s.Loaded = o.Loaded
	s.Skipped = o.Skipped
}

// Match is a multiplayer room and its sixteen-slot state machine.
//
// mu serializes every state transition; each mutating method broadcasts
// the resulting snapshot before releasing the lock, so no client ever
// observes a half-applied transition.
type Match struct {
	ID int32

	srv *Server

	mu          sync.Mutex
	name        string
	password    string
	host        *Player
	mapName     string
	mapID       int32
	mapMD5      string
	mods        constants.Mods
	freemods    bool
	gameMode    uint8
	matchType   constants.MatchType
	teamType    constants.TeamType
	scoringType constants.ScoringType
	inProgress  bool
	seed        int32
	slots       [constants.MatchSlots]Slot

	chat *Channel
}

func (m *Match) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fmt.Sprintf("<%d %s>", m.ID, m.name)
}

// Name returns the match's display name.
func (m *Match) Name() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name
}

// Host returns the current host.
func (m *Match) Host() *Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.host
}

// Chat returns the match's #multi_ channel.
func (m *Match) Chat() *Channel {
	return m.chat
}

// Password returns the join password, empty when unset.
func (m *Match) Password() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.password
}

// InProgress reports whether play has started.
func (m *Match) InProgress() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inProgress
}

// Slots returns a snapshot of the slot array.
func (m *Match) Slots() [constants.MatchSlots]Slot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slots
}

// slotOf returns p's slot index, or -1. Caller holds m.mu.
func (m *Match) slotOf(p *Player) int {
	for i := range m.slots {
		if m.slots[i].Player == p {
			return i
		}
	}
	return -1
}

// occupied counts slots holding a player. Caller holds m.mu.
func (m *Match) occupied() int {
	n := 0
	for i := range m.slots {
		if m.slots[i].Player != nil {
			n++
		}
	}
	return n
}

// data serializes the match for the wire. Caller holds m.mu.
func (m *Match) data(showPassword bool) packet.MatchData {
	d := packet.MatchData{
		ID:          uint16(m.ID),
		InProgress:  m.inProgress,
		Type:        uint8(m.matchType),
		Mods:        uint32(m.mods),
		Name:        m.name,
		MapName:     m.mapName,
		MapID:       m.mapID,
		MapMD5:      m.mapMD5,
		HostID:      m.host.ID,
		GameMode:    m.gameMode,
		ScoringType: uint8(m.scoringType),
		TeamType:    uint8(m.teamType),
		Freemods:    m.freemods,
		Seed:        m.seed,
	}
	if showPassword || m.password == "" {
		d.Password = m.password
	}
	for i := range m.slots {
		s := &m.slots[i]
		d.SlotStatus[i] = uint8(s.Status)
		d.SlotTeams[i] = uint8(s.Team)
		d.SlotMods[i] = uint32(s.Mods)
		if s.Player != nil {
			d.SlotIDs[i] = s.Player.ID
		}
	}
	return d
}

// Data returns the wire snapshot visible to match members.
func (m *Match) Data() packet.MatchData {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data(true)
}

// lobbyData returns the wire snapshot shown to lobby browsers, with the
// join password withheld.
func (m *Match) lobbyData() packet.MatchData {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data(false)
}

// enqueue fans data out to every slot player. Caller holds m.mu.
func (m *Match) enqueue(data []byte, exclude ...*Player) {
outer:
	for i := range m.slots {
		p := m.slots[i].Player
		if p == nil {
			continue
		}
		for _, ex := range exclude {
			if p == ex {
				continue outer
			}
		}
		p.Enqueue(data)
	}
}

// enqueueState broadcasts the current snapshot to every slot player and,
// when lobby is set, a password-stripped copy to the lobby channel.
// Caller holds m.mu.
func (m *Match) enqueueState(lobby bool) {
	m.enqueue(serverpackets.UpdateMatch(m.data(true)))
	if lobby {
		if c := m.srv.channels.Get(constants.LobbyChannel); c != nil {
			c.Enqueue(serverpackets.UpdateMatch(m.data(false)))
		}
	}
}

// Join places p in the lowest open slot after the password check. Staff
// bypass the password. On success p joins the match chat and receives
// MatchJoinSuccess with the full snapshot.
func (m *Match) Join(p *Player, password string) error {
	m.mu.Lock()

	if m.password != "" && password != m.password && p.Priv&constants.PrivStaff == 0 {
		m.mu.Unlock()
		return ErrBadPassword
	}

	slotID := -1
	for i := range m.slots {
		if m.slots[i].Status == constants.SlotOpen {
			slotID = i
			break
		}
	}
	if slotID == -1 {
		m.mu.Unlock()
		return ErrMatchFull
	}

	s := &m.slots[slotID]
	s.Player = p
	s.Status = constants.SlotNotReady
	s.Team = constants.TeamNeutral

	p.mu.Lock()
	p.match = m
	p.mu.Unlock()

	p.JoinChannel(m.chat)
	p.Enqueue(serverpackets.MatchJoinSuccess(m.data(true)))

	m.enqueueState(true)
	m.mu.Unlock()

	slog.Info("joined match", "player", p.Name, "match", m.ID)
	return nil
}

// Part removes p from the match: the slot resets, an emptied match is
// disposed, and a departing host hands the room to the first occupied
// slot's player.
func (m *Match) Part(p *Player) {
	m.mu.Lock()

	slotID := m.slotOf(p)
	if slotID == -1 {
		m.mu.Unlock()
		slog.Debug("parting match without a slot", "player", p.Name, "match", m.ID)
		return
	}
	m.slots[slotID].reset()

	p.mu.Lock()
	p.match = nil
	p.mu.Unlock()

	if m.occupied() == 0 {
		m.mu.Unlock()
		p.LeaveChannel(m.chat)
		m.srv.matches.Dispose(m)
		slog.Info("match disbanded", "match", m.ID)
		return
	}

	if m.host == p {
		for i := range m.slots {
			if next := m.slots[i].Player; next != nil {
				m.host = next
				next.Enqueue(serverpackets.MatchTransferHost())
				break
			}
		}
	}

	m.enqueueState(true)
	m.mu.Unlock()

	p.LeaveChannel(m.chat)
	slog.Info("left match", "player", p.Name, "match", m.ID)
}

// ChangeSlot moves p into the open slot to.
func (m *Match) ChangeSlot(p *Player, to int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if to < 0 || to >= constants.MatchSlots {
		slog.Warn("slot change out of range", "player", p.Name, "slot", to)
		return
	}
	if m.slots[to].Status != constants.SlotOpen {
		return
	}
	from := m.slotOf(p)
	if from == -1 {
		return
	}

	m.slots[to].copyFrom(&m.slots[from])
	m.slots[from].reset()

	m.enqueueState(true)
}

// Ready marks p's slot ready.
func (m *Match) Ready(p *Player) {
	m.setStatus(p, constants.SlotReady, true)
}

// NotReady marks p's slot not ready. Lobby viewers are not notified.
func (m *Match) NotReady(p *Player) {
	m.setStatus(p, constants.SlotNotReady, false)
}

// NoMap marks p's slot as missing the current beatmap.
func (m *Match) NoMap(p *Player) {
	m.setStatus(p, constants.SlotNoMap, true)
}

// HasMap clears a previous NoMap.
func (m *Match) HasMap(p *Player) {
	m.setStatus(p, constants.SlotNotReady, true)
}

func (m *Match) setStatus(p *Player, status constants.SlotStatus, lobby bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slotID := m.slotOf(p)
	if slotID == -1 {
		return
	}
	m.slots[slotID].Status = status

	m.enqueueState(lobby)
}

// LockSlot toggles slot i between locked and open. Locking an occupied
// slot evicts its player from the match entirely. The host's own slot
// cannot be locked.
func (m *Match) LockSlot(host *Player, i int) {
	m.mu.Lock()

	if host != m.host {
		m.mu.Unlock()
		return
	}
	if i < 0 || i >= constants.MatchSlots {
		m.mu.Unlock()
		slog.Warn("slot lock out of range", "player", host.Name, "slot", i)
		return
	}

	s := &m.slots[i]
	var evicted *Player

	if s.Status == constants.SlotLocked {
		s.Status = constants.SlotOpen
	} else {
		if s.Player == m.host {
			m.mu.Unlock()
			return
		}
		if s.Player != nil {
			evicted = s.Player
			s.reset()

			evicted.mu.Lock()
			evicted.match = nil
			evicted.mu.Unlock()
		}
		s.Status = constants.SlotLocked
	}

	m.enqueueState(true)
	m.mu.Unlock()

	if evicted != nil {
		evicted.LeaveChannel(m.chat)
		slog.Info("evicted from match", "player", evicted.Name, "match", m.ID)
	}
}

// ChangeTeam flips p's team between blue and red.
func (m *Match) ChangeTeam(p *Player) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slotID := m.slotOf(p)
	if slotID == -1 {
		return
	}
	if m.slots[slotID].Team == constants.TeamBlue {
		m.slots[slotID].Team = constants.TeamRed
	} else {
		m.slots[slotID].Team = constants.TeamBlue
	}

	m.enqueueState(false)
}

// ChangeMods applies a mod change request. Under freemods the host
// controls only the speed-changing bits while every player owns their
// slot's remaining mods; otherwise the host replaces the match mods.
func (m *Match) ChangeMods(p *Player, mods constants.Mods) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.freemods {
		if p == m.host {
			m.mods = mods & constants.ModSpeedChanging
		}
		if slotID := m.slotOf(p); slotID != -1 {
			m.slots[slotID].Mods = mods &^ constants.ModSpeedChanging
		}
	} else {
		if p != m.host {
			slog.Warn("non-host mod change", "player", p.Name, "match", m.ID)
			return
		}
		m.mods = mods
	}

	m.enqueueState(true)
}

// ChangeSettings applies a host's settings snapshot: freemods toggling
// rebalances mods between the match and the slots, a missing map
// unreadies everyone, and a map change is announced in the match chat.
func (m *Match) ChangeSettings(host *Player, new packet.MatchData) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if host != m.host {
		return
	}

	if new.Freemods != m.freemods {
		m.freemods = new.Freemods
		if new.Freemods {
			for i := range m.slots {
				if m.slots[i].Player != nil {
					m.slots[i].Mods = m.mods &^ constants.ModSpeedChanging
				}
			}
			m.mods &= constants.ModSpeedChanging
		} else {
			hostMods := constants.Mods(0)
			if slotID := m.slotOf(m.host); slotID != -1 {
				hostMods = m.slots[slotID].Mods
			}
			m.mods = m.mods&constants.ModSpeedChanging | hostMods
			for i := range m.slots {
				m.slots[i].Mods = 0
			}
		}
	}

	if new.MapID == constants.NoBeatmapID {
		// Map picker open on the host's client.
		for i := range m.slots {
			if m.slots[i].Status == constants.SlotReady {
				m.slots[i].Status = constants.SlotNotReady
			}
		}
	} else if m.mapMD5 != new.MapMD5 {
		m.chat.Enqueue(serverpackets.SendMessage(packet.Message{
			Sender:   m.srv.bot.Name,
			Text:     fmt.Sprintf("Map changed to: %s", new.MapName),
			Target:   m.chat.Name,
			SenderID: m.srv.bot.ID,
		}))
	}

	m.mapID = new.MapID
	m.mapMD5 = new.MapMD5
	m.mapName = new.MapName
	m.name = new.Name
	m.gameMode = new.GameMode
	m.matchType = constants.MatchType(new.Type)
	m.teamType = constants.TeamType(new.TeamType)
	m.scoringType = constants.ScoringType(new.ScoringType)

	m.enqueueState(true)
}

// Start moves every ready slot into play.
func (m *Match) Start(host *Player) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if host != m.host {
		return
	}

	for i := range m.slots {
		if m.slots[i].Status == constants.SlotReady {
			m.slots[i].Status = constants.SlotPlaying
			m.slots[i].Loaded = false
			m.slots[i].Skipped = false
		}
	}
	m.inProgress = true

	started := serverpackets.MatchStart(m.data(true))
	for i := range m.slots {
		if m.slots[i].Status == constants.SlotPlaying {
			m.slots[i].Player.Enqueue(started)
		}
	}

	m.enqueueState(false)
	slog.Info("match started", "match", m.ID, "map", m.mapName)
}

// LoadComplete marks p's playing slot loaded; once all playing slots are
// loaded the match is told to begin rendering.
func (m *Match) LoadComplete(p *Player) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slotID := m.slotOf(p)
	if slotID == -1 || m.slots[slotID].Status != constants.SlotPlaying {
		return
	}
	m.slots[slotID].Loaded = true

	for i := range m.slots {
		if m.slots[i].Status == constants.SlotPlaying && !m.slots[i].Loaded {
			return
		}
	}
	m.enqueue(serverpackets.MatchAllPlayersLoaded())
}

// SkipRequest marks p's intent to skip the intro; once every playing
// slot agrees the skip is broadcast.
func (m *Match) SkipRequest(p *Player) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slotID := m.slotOf(p)
	if slotID == -1 || m.slots[slotID].Status != constants.SlotPlaying {
		return
	}
	m.slots[slotID].Skipped = true
	m.enqueue(serverpackets.MatchPlayerSkipped(p.ID))

	for i := range m.slots {
		if m.slots[i].Status == constants.SlotPlaying && !m.slots[i].Skipped {
			return
		}
	}
	m.enqueue(serverpackets.MatchSkip())
}

// ScoreUpdate relays p's live score frame to the match with the sender's
// slot id written over the client-supplied one.
func (m *Match) ScoreUpdate(p *Player, frame []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slotID := m.slotOf(p)
	if slotID == -1 || m.slots[slotID].Status != constants.SlotPlaying {
		return
	}

	size, err := packet.ScoreFrameSize(frame)
	if err != nil || len(frame) < size {
		slog.Warn("malformed score frame", "player", p.Name, "len", len(frame))
		return
	}

	out := make([]byte, size)
	copy(out, frame[:size])
	out[packet.ScoreFrameSlotOffset] = byte(slotID)

	m.enqueue(serverpackets.MatchScoreFrame(out))
}

// Failed announces p failing mid-play by slot id.
func (m *Match) Failed(p *Player) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slotID := m.slotOf(p)
	if slotID == -1 || m.slots[slotID].Status != constants.SlotPlaying {
		slog.Debug("fail outside play", "player", p.Name, "match", m.ID)
		return
	}
	m.enqueue(serverpackets.MatchPlayerFailed(int32(slotID)))
}

// Complete marks p's slot finished; the last playing slot completing
// ends the round, notifies everyone once and resets finished slots.
func (m *Match) Complete(p *Player) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slotID := m.slotOf(p)
	if slotID == -1 || m.slots[slotID].Status != constants.SlotPlaying {
		return
	}
	m.slots[slotID].Status = constants.SlotComplete

	for i := range m.slots {
		if m.slots[i].Status == constants.SlotPlaying {
			return
		}
	}

	m.inProgress = false
	m.enqueue(serverpackets.MatchComplete())

	for i := range m.slots {
		s := &m.slots[i]
		if s.Status == constants.SlotComplete {
			s.Status = constants.SlotNotReady
			s.Loaded = false
			s.Skipped = false
		}
	}

	m.enqueueState(true)
	slog.Info("match round finished", "match", m.ID)
}

// TransferHost hands the match to the player in slot to.
func (m *Match) TransferHost(host *Player, to int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if host != m.host {
		return
	}
	if to < 0 || to >= constants.MatchSlots {
		slog.Warn("host transfer out of range", "player", host.Name, "slot", to)
		return
	}
	target := m.slots[to].Player
	if target == nil {
		return
	}

	m.host = target
	target.Enqueue(serverpackets.MatchTransferHost())

	m.enqueueState(true)
	slog.Info("host transferred", "match", m.ID, "to", target.Name)
}

// ChangePassword replaces the join password and tells the members.
func (m *Match) ChangePassword(host *Player, password string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if host != m.host {
		return
	}
	m.password = password
	m.enqueue(serverpackets.MatchChangePassword(password))

	m.enqueueState(false)
}

// Invite PMs target an osump:// embed for this match.
func (m *Match) Invite(from, target *Player) {
	m.mu.Lock()
	embed := fmt.Sprintf("Come join my game: [osump://%d/%s %s].", m.ID, m.password, m.name)
	m.mu.Unlock()

	target.Enqueue(serverpackets.SendMessage(packet.Message{
		Sender:   from.Name,
		Text:     embed,
		Target:   target.Name,
		SenderID: from.ID,
	}))
	slog.Info("match invite", "from", from.Name, "to", target.Name, "match", m.ID)
}

// LeaveMatch detaches the player from their current match, if any.
func (p *Player) LeaveMatch() {
	m := p.Match()
	if m == nil {
		slog.Debug("leaving match while not in one", "player", p.Name)
		return
	}
	m.Part(p)
}
