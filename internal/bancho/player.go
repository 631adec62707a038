package bancho

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/FireRedz/gulag/internal/bancho/serverpackets"
	"github.com/FireRedz/gulag/internal/beatmap"
	"github.com/FireRedz/gulag/internal/constants"
)

// maxQueuedPackets bounds a session's outbound queue. A client that never
// drains (dead long-poll) gets its oldest packets dropped with a log entry.
const maxQueuedPackets = 512

// ModeStats is one game mode's worth of player statistics.
type ModeStats struct {
	TotalScore  int64
	RankedScore int64
	PP          float64
	Accuracy    float64
	Plays       int32
	Playtime    int32
	MaxCombo    int32
	Rank        int32
}

// Status is the client's live activity snapshot, updated by ChangeAction.
type Status struct {
	Action   constants.Action
	InfoText string
	MapMD5   string
	Mods     constants.Mods
	GameMode uint8
	MapID    int32
}

// Player is one connected user: identity, live status, relations to the
// shared world, and the per-session outbound packet queue.
//
// mu guards the session fields and relations; queueMu guards only the
// outbound queue and is a leaf lock (safe to take while holding any other).
type Player struct {
	ID        int32
	Name      string
	SafeName  string
	Token     string
	Priv      constants.Privileges
	Bot       bool
	LoginTime time.Time

	srv *Server

	mu         sync.Mutex
	lastPing   time.Time
	utcOffset  int8
	pmPrivate  bool
	awayMsg    string
	silenceEnd int64
	status     Status
	stats      [constants.GameModeCount]ModeStats
	country    uint8
	countryStr string
	longitude  float32
	latitude   float32
	presFilter constants.PresenceFilter
	lastNP     *beatmap.Beatmap

	friends    map[int32]struct{}
	channels   map[*Channel]struct{}
	spectating *Player
	spectators []*Player
	match      *Match
	inLobby    bool

	queueMu sync.Mutex
	queue   [][]byte
	dropped int
}

// SafeName converts a username to its unique case-folded lookup form.
func SafeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

func (p *Player) String() string {
	return fmt.Sprintf("<%d %s>", p.ID, p.Name)
}

// URL is the player's profile page address.
func (p *Player) URL() string {
	return fmt.Sprintf("https://%s/u/%d", p.srv.cfg.Domain, p.ID)
}

// Embed is the chat hyperlink form of the player's profile.
func (p *Player) Embed() string {
	return fmt.Sprintf("[%s %s]", p.URL(), p.Name)
}

// Enqueue appends an encoded frame to the outbound queue.
func (p *Player) Enqueue(data []byte) {
	if len(data) == 0 {
		return
	}

	p.queueMu.Lock()
	defer p.queueMu.Unlock()

	if len(p.queue) >= maxQueuedPackets {
		p.queue = p.queue[1:]
		p.dropped++
	}
	p.queue = append(p.queue, data)
}

// Notify pops a toast on the player's client.
func (p *Player) Notify(msg string) {
	p.Enqueue(serverpackets.Notification(msg))
}

// Drain atomically removes and concatenates the queued frames.
func (p *Player) Drain() []byte {
	p.queueMu.Lock()
	queue := p.queue
	dropped := p.dropped
	p.queue = nil
	p.dropped = 0
	p.queueMu.Unlock()

	if dropped > 0 {
		slog.Warn("outbound queue overflow", "player", p.Name, "dropped", dropped)
	}
	if len(queue) == 0 {
		return nil
	}

	total := 0
	for _, b := range queue {
		total += len(b)
	}
	out := make([]byte, 0, total)
	for _, b := range queue {
		out = append(out, b...)
	}
	return out
}

// QueueEmpty reports whether any frames await delivery.
func (p *Player) QueueEmpty() bool {
	p.queueMu.Lock()
	defer p.queueMu.Unlock()
	return len(p.queue) == 0
}

// Touch records client activity for the pingout sweep.
func (p *Player) Touch() {
	p.mu.Lock()
	p.lastPing = time.Now()
	p.mu.Unlock()
}

// LastPing returns the time of the last client request.
func (p *Player) LastPing() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastPing
}

// Silenced reports whether the player's silence is still running.
func (p *Player) Silenced() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return time.Now().Unix() <= p.silenceEnd
}

// SilenceRemaining returns the seconds of silence left, clamped at zero.
func (p *Player) SilenceRemaining() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if rem := p.silenceEnd - time.Now().Unix(); rem > 0 {
		return int32(rem)
	}
	return 0
}

// Status returns a copy of the live status.
func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// SetStatus replaces the live status.
func (p *Player) SetStatus(s Status) {
	p.mu.Lock()
	p.status = s
	p.mu.Unlock()
}

// Relax reports whether the RX mod is part of the current status mods.
func (p *Player) Relax() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status.Mods&constants.ModRelax != 0
}

// CurrentStats returns the stats of the mode the player is currently in,
// accounting for relax (mania has no relax variant).
func (p *Player) CurrentStats() ModeStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	mode := int(p.status.GameMode)
	if mode == 3 {
		return p.stats[3]
	}
	if p.status.Mods&constants.ModRelax != 0 {
		mode += 4
	}
	return p.stats[mode]
}

// IsFriend reports whether id is on the friends list.
func (p *Player) IsFriend(id int32) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.friends[id]
	return ok
}

// Friends returns the friend ids in unspecified order.
func (p *Player) Friends() []int32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	ids := make([]int32, 0, len(p.friends))
	for id := range p.friends {
		ids = append(ids, id)
	}
	return ids
}

// Match returns the match the player currently occupies, if any.
func (p *Player) Match() *Match {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.match
}

// Spectating returns the host this player is following, if any.
func (p *Player) Spectating() *Player {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.spectating
}

// Spectators returns a snapshot of the player's followers.
func (p *Player) Spectators() []*Player {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Player, len(p.spectators))
	copy(out, p.spectators)
	return out
}

// InLobby reports whether the client has the lobby screen open.
func (p *Player) InLobby() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inLobby
}

// SetInLobby flips the lobby flag.
func (p *Player) SetInLobby(v bool) {
	p.mu.Lock()
	p.inLobby = v
	p.mu.Unlock()
}

// PresenceFilter returns the client's requested presence scope.
func (p *Player) PresenceFilter() constants.PresenceFilter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.presFilter
}

// SetPresenceFilter sets the client's requested presence scope.
func (p *Player) SetPresenceFilter(f constants.PresenceFilter) {
	p.mu.Lock()
	p.presFilter = f
	p.mu.Unlock()
}

// PMPrivate reports whether non-friend PMs are blocked.
func (p *Player) PMPrivate() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pmPrivate
}

// SetPMPrivate flips the non-friend PM block.
func (p *Player) SetPMPrivate(v bool) {
	p.mu.Lock()
	p.pmPrivate = v
	p.mu.Unlock()
}

// AwayMessage returns the away text, empty when unset.
func (p *Player) AwayMessage() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.awayMsg
}

// SetAwayMessage sets (or with "" clears) the away text.
func (p *Player) SetAwayMessage(msg string) {
	p.mu.Lock()
	p.awayMsg = msg
	p.mu.Unlock()
}

// LastNP returns the beatmap last shared by the player via /np.
func (p *Player) LastNP() *beatmap.Beatmap {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastNP
}

// SetLastNP binds the beatmap last shared via /np.
func (p *Player) SetLastNP(bm *beatmap.Beatmap) {
	p.mu.Lock()
	p.lastNP = bm
	p.mu.Unlock()
}

// statsData builds the UserStats payload for the player's current mode.
func (p *Player) statsData() serverpackets.UserStatsData {
	st := p.Status()
	ms := p.CurrentStats()
	return serverpackets.UserStatsData{
		ID:          p.ID,
		Action:      uint8(st.Action),
		InfoText:    st.InfoText,
		MapMD5:      st.MapMD5,
		Mods:        uint32(st.Mods),
		GameMode:    st.GameMode,
		MapID:       st.MapID,
		RankedScore: ms.RankedScore,
		Accuracy:    float32(ms.Accuracy),
		Plays:       ms.Plays,
		TotalScore:  ms.TotalScore,
		Rank:        ms.Rank,
		PP:          int16(ms.PP),
	}
}

// presenceData builds the UserPresence payload.
func (p *Player) presenceData() serverpackets.UserPresenceData {
	p.mu.Lock()
	defer p.mu.Unlock()
	return serverpackets.UserPresenceData{
		ID:          p.ID,
		Name:        p.Name,
		UTCOffset:   uint8(p.utcOffset),
		CountryCode: p.country,
		BanchoPriv:  p.Priv.ToBancho(),
		GameMode:    p.status.GameMode,
		Longitude:   p.longitude,
		Latitude:    p.latitude,
		Rank:        p.stats[p.status.GameMode].Rank,
	}
}

// JoinChannel adds the player to c after checking read privilege and
// non-membership. On success the player receives
// ChannelJoin and every affected client receives the updated ChannelInfo.
func (p *Player) JoinChannel(c *Channel) bool {
	if c.Contains(p) {
		slog.Debug("double channel join", "player", p.Name, "channel", c.Name)
		return false
	}
	if !c.CanRead(p.Priv) {
		slog.Warn("channel join denied", "player", p.Name, "channel", c.Name)
		return false
	}
	if c.Name == constants.LobbyChannel && !p.InLobby() {
		return false
	}

	c.addMember(p)
	p.mu.Lock()
	p.channels[c] = struct{}{}
	p.mu.Unlock()

	p.Enqueue(serverpackets.ChannelJoin(c.Name))
	p.srv.announceChannel(c)

	slog.Info("channel joined", "player", p.Name, "channel", c.Name)
	return true
}

// LeaveChannel removes the player from c, mirroring JoinChannel.
func (p *Player) LeaveChannel(c *Channel) {
	if !c.Contains(p) {
		slog.Debug("leaving channel while not a member", "player", p.Name, "channel", c.Name)
		return
	}

	c.removeMember(p)
	p.mu.Lock()
	delete(p.channels, c)
	p.mu.Unlock()

	p.Enqueue(serverpackets.ChannelKick(c.Name))
	p.srv.announceChannel(c)

	if c.Instance && c.MemberCount() == 0 {
		p.srv.channels.Remove(c.Name)
	}

	slog.Info("channel left", "player", p.Name, "channel", c.Name)
}

// AddSpectator attaches f as a follower of p: the dynamic #spec_ channel
// is created on first use, existing followers learn about f and f about
// them, and the host receives SpectatorJoined.
func (p *Player) AddSpectator(f *Player) {
	chanName := fmt.Sprintf("%s%d", constants.SpectatorChannelPrefix, p.ID)

	c := p.srv.channels.Get(chanName)
	if c == nil {
		c = &Channel{
			Name:      chanName,
			Topic:     fmt.Sprintf("%s's spectator channel.", p.Name),
			ReadPriv:  constants.PrivNormal,
			WritePriv: constants.PrivNormal,
			Instance:  true,
			members:   make(map[*Player]struct{}),
		}
		p.srv.channels.Add(c)
	}

	if !f.JoinChannel(c) {
		slog.Warn("spectator failed to join channel", "player", f.Name, "channel", chanName)
		return
	}

	joined := serverpackets.FellowSpectatorJoined(f.ID)

	p.mu.Lock()
	for _, s := range p.spectators {
		s.Enqueue(joined)
		f.Enqueue(serverpackets.FellowSpectatorJoined(s.ID))
	}
	p.spectators = append(p.spectators, f)
	p.mu.Unlock()

	f.mu.Lock()
	f.spectating = p
	f.mu.Unlock()

	p.Enqueue(serverpackets.SpectatorJoined(f.ID))
	slog.Info("spectating", "player", f.Name, "host", p.Name)
}

// RemoveSpectator detaches follower f. The last follower leaving disbands
// the dynamic spectator channel.
func (p *Player) RemoveSpectator(f *Player) {
	p.mu.Lock()
	for i, s := range p.spectators {
		if s == f {
			p.spectators = append(p.spectators[:i], p.spectators[i+1:]...)
			break
		}
	}
	remaining := len(p.spectators)
	p.mu.Unlock()

	f.mu.Lock()
	f.spectating = nil
	f.mu.Unlock()

	chanName := fmt.Sprintf("%s%d", constants.SpectatorChannelPrefix, p.ID)
	if c := p.srv.channels.Get(chanName); c != nil {
		f.LeaveChannel(c)

		if remaining == 0 {
			// Host leaves too, which disbands the instance channel.
			p.LeaveChannel(c)
		} else {
			info := serverpackets.ChannelInfo(c.Name, c.Topic, uint16(c.MemberCount()))
			left := serverpackets.FellowSpectatorLeft(f.ID)

			p.Enqueue(info)
			for _, s := range p.Spectators() {
				s.Enqueue(left)
				s.Enqueue(info)
			}
		}
	}

	p.Enqueue(serverpackets.SpectatorLeft(f.ID))
	slog.Info("stopped spectating", "player", f.Name, "host", p.Name)
}

// Logout tears the session down. Spectator relations go first, then the
// match, then channels, then the roster entry; finally everyone left is
// told about the logout.
func (p *Player) Logout() {
	p.srv.roster.RevokeToken(p.Token)

	if p.Match() != nil {
		p.LeaveMatch()
	}

	if host := p.Spectating(); host != nil {
		host.RemoveSpectator(p)
	}
	for _, f := range p.Spectators() {
		p.RemoveSpectator(f)
	}

	p.mu.Lock()
	channels := make([]*Channel, 0, len(p.channels))
	for c := range p.channels {
		channels = append(channels, c)
	}
	p.mu.Unlock()
	for _, c := range channels {
		p.LeaveChannel(c)
	}

	p.srv.roster.Remove(p)
	p.srv.roster.Enqueue(serverpackets.Logout(p.ID), p)

	slog.Info("logged out", "player", p.Name)
}
