package bancho

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FireRedz/gulag/internal/constants"
	"github.com/FireRedz/gulag/internal/packet"
)

func createTestMatch(t *testing.T, s *Server, host *Player) *Match {
	t.Helper()

	m, err := s.matches.Create(host, packet.MatchData{
		Name:     "test room",
		Password: "pass",
		MapName:  "artist - title [diff]",
		MapID:    42,
		MapMD5:   "0123456789abcdef0123456789abcdef",
	})
	require.NoError(t, err)
	return m
}

func TestMatchCreate(t *testing.T) {
	s, _ := newTestServer(t)
	host := newTestPlayer(s, 100, "host")

	m := createTestMatch(t, s, host)

	assert.Same(t, host, m.Host())
	assert.Same(t, m, host.Match())

	slots := m.Slots()
	assert.Same(t, host, slots[0].Player)
	assert.Equal(t, constants.SlotNotReady, slots[0].Status)

	assert.True(t, m.Chat().Contains(host))
	assert.Same(t, m, s.matches.ByID(m.ID))

	// Every other slot starts open, neutral and empty.
	for i := 1; i < constants.MatchSlots; i++ {
		assert.Nil(t, slots[i].Player, "slot %d", i)
		assert.Equal(t, constants.SlotOpen, slots[i].Status, "slot %d", i)
		assert.Equal(t, constants.TeamNeutral, slots[i].Team, "slot %d", i)
	}
}

func TestMatchJoinPassword(t *testing.T) {
	s, _ := newTestServer(t)
	host := newTestPlayer(s, 100, "host")
	joiner := newTestPlayer(s, 101, "joiner")

	m := createTestMatch(t, s, host)

	assert.ErrorIs(t, m.Join(joiner, "wrong"), ErrBadPassword)
	assert.Nil(t, joiner.Match())

	require.NoError(t, m.Join(joiner, "pass"))
	assert.Same(t, m, joiner.Match())

	slots := m.Slots()
	assert.Same(t, joiner, slots[1].Player)
}

func TestMatchRegistryExhaustion(t *testing.T) {
	s, _ := newTestServer(t)

	for i := range constants.MaxMatches {
		p := newTestPlayer(s, 1000+int32(i), fmt.Sprintf("host%d", i))
		_, err := s.matches.Create(p, packet.MatchData{Name: "room"})
		require.NoError(t, err)
	}

	extra := newTestPlayer(s, 2000, "latecomer")
	_, err := s.matches.Create(extra, packet.MatchData{Name: "one too many"})
	assert.ErrorIs(t, err, ErrLobbyFull)
}

func TestMatchIDBounds(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Nil(t, s.matches.ByID(-1))
	assert.Nil(t, s.matches.ByID(constants.MaxMatches))
}

func TestChangeSlotBounds(t *testing.T) {
	s, _ := newTestServer(t)
	host := newTestPlayer(s, 100, "host")
	m := createTestMatch(t, s, host)

	m.ChangeSlot(host, -1)
	m.ChangeSlot(host, constants.MatchSlots)

	slots := m.Slots()
	assert.Same(t, host, slots[0].Player)

	m.ChangeSlot(host, 5)
	slots = m.Slots()
	assert.Nil(t, slots[0].Player)
	assert.Equal(t, constants.SlotOpen, slots[0].Status)
	assert.Same(t, host, slots[5].Player)
	assert.Equal(t, constants.SlotNotReady, slots[5].Status)
}

func TestFreemodsToggle(t *testing.T) {
	s, _ := newTestServer(t)
	host := newTestPlayer(s, 100, "host")
	m := createTestMatch(t, s, host)

	m.ChangeMods(host, constants.ModDoubleTime|constants.ModHidden)

	// Toggle freemods on: speed mods stay on the match, the rest move to
	// the occupied slots.
	d := m.Data()
	d.Freemods = true
	m.ChangeSettings(host, d)

	m.mu.Lock()
	assert.Equal(t, constants.ModDoubleTime, m.mods)
	assert.Equal(t, constants.ModHidden, m.slots[0].Mods)
	m.mu.Unlock()

	// Toggle freemods off: the host slot's mods fold back in, slot mods
	// clear.
	d = m.Data()
	d.Freemods = false
	m.ChangeSettings(host, d)

	m.mu.Lock()
	assert.Equal(t, constants.ModDoubleTime|constants.ModHidden, m.mods)
	assert.Equal(t, constants.Mods(0), m.slots[0].Mods)
	m.mu.Unlock()
}

func TestFreemodsPlayerOwnsNonSpeedMods(t *testing.T) {
	s, _ := newTestServer(t)
	host := newTestPlayer(s, 100, "host")
	other := newTestPlayer(s, 101, "other")
	m := createTestMatch(t, s, host)
	require.NoError(t, m.Join(other, "pass"))

	d := m.Data()
	d.Freemods = true
	m.ChangeSettings(host, d)

	// A non-host player's speed-changing bits are discarded.
	m.ChangeMods(other, constants.ModHardRock|constants.ModDoubleTime)

	m.mu.Lock()
	assert.Equal(t, constants.ModHardRock, m.slots[1].Mods)
	assert.Equal(t, constants.Mods(0), m.mods)
	m.mu.Unlock()
}

func TestMatchCompletion(t *testing.T) {
	s, _ := newTestServer(t)
	host := newTestPlayer(s, 100, "host")
	p2 := newTestPlayer(s, 101, "second")
	p3 := newTestPlayer(s, 102, "third")

	m := createTestMatch(t, s, host)
	require.NoError(t, m.Join(p2, "pass"))
	require.NoError(t, m.Join(p3, "pass"))

	m.Ready(host)
	m.Ready(p2)
	m.Ready(p3)
	m.Start(host)
	assert.True(t, m.InProgress())

	for _, p := range []*Player{host, p2, p3} {
		p.Drain()
	}

	m.Complete(p2)
	m.Complete(host)
	assert.True(t, m.InProgress())
	m.Complete(p3)
	assert.False(t, m.InProgress())

	slots := m.Slots()
	for i := range 3 {
		assert.Equal(t, constants.SlotNotReady, slots[i].Status)
	}

	// Everyone sees MatchComplete exactly once.
	for _, p := range []*Player{host, p2, p3} {
		count := 0
		fr := packet.NewFrameReader(p.Drain())
		for fr.Next() {
			if fr.ID() == constants.ServerMatchComplete {
				count++
			}
		}
		assert.Equal(t, 1, count, "player %s", p.Name)
	}
}

func TestLockSlotEvicts(t *testing.T) {
	s, _ := newTestServer(t)
	host := newTestPlayer(s, 100, "host")
	victim := newTestPlayer(s, 101, "victim")

	m := createTestMatch(t, s, host)
	require.NoError(t, m.Join(victim, "pass"))

	m.LockSlot(host, 1)

	slots := m.Slots()
	assert.Nil(t, slots[1].Player)
	assert.Equal(t, constants.SlotLocked, slots[1].Status)
	assert.Nil(t, victim.Match())
	assert.False(t, m.Chat().Contains(victim))

	// Locking again reopens.
	m.LockSlot(host, 1)
	slots = m.Slots()
	assert.Equal(t, constants.SlotOpen, slots[1].Status)

	// The host's own slot can't be locked.
	m.LockSlot(host, 0)
	slots = m.Slots()
	assert.Same(t, host, slots[0].Player)
}

func TestPartPromotesHost(t *testing.T) {
	s, _ := newTestServer(t)
	host := newTestPlayer(s, 100, "host")
	second := newTestPlayer(s, 101, "second")

	m := createTestMatch(t, s, host)
	require.NoError(t, m.Join(second, "pass"))

	host.LeaveMatch()

	assert.Same(t, second, m.Host())
	assert.Nil(t, host.Match())

	fr := packet.NewFrameReader(second.Drain())
	found := false
	for fr.Next() {
		if fr.ID() == constants.ServerMatchTransferHost {
			found = true
		}
	}
	assert.True(t, found, "expected a host transfer frame")
}

func TestPartLastPlayerDisposes(t *testing.T) {
	s, _ := newTestServer(t)
	host := newTestPlayer(s, 100, "host")
	lurker := newTestPlayer(s, 101, "lurker")
	lurker.SetInLobby(true)
	require.True(t, lurker.JoinChannel(s.channels.Get(constants.LobbyChannel)))
	lurker.Drain()

	m := createTestMatch(t, s, host)
	id := m.ID
	host.LeaveMatch()

	assert.Nil(t, s.matches.ByID(id))
	assert.Nil(t, s.channels.Get(m.Chat().Name))

	fr := packet.NewFrameReader(lurker.Drain())
	found := false
	for fr.Next() {
		if fr.ID() == constants.ServerDisposeMatch {
			got, err := fr.Payload().ReadInt32()
			require.NoError(t, err)
			assert.Equal(t, id, got)
			found = true
		}
	}
	assert.True(t, found, "expected a dispose frame")
}

func TestScoreUpdateRewritesSlot(t *testing.T) {
	s, _ := newTestServer(t)
	host := newTestPlayer(s, 100, "host")
	p2 := newTestPlayer(s, 101, "second")

	m := createTestMatch(t, s, host)
	require.NoError(t, m.Join(p2, "pass"))
	m.Ready(host)
	m.Ready(p2)
	m.Start(host)
	host.Drain()

	frame := make([]byte, packet.ScoreFrameBaseSize)
	frame[packet.ScoreFrameSlotOffset] = 9 // client-supplied, overwritten
	m.ScoreUpdate(p2, frame)

	fr := packet.NewFrameReader(host.Drain())
	found := false
	for fr.Next() {
		if fr.ID() == constants.ServerMatchScoreUpdate {
			payload := fr.PayloadBytes()
			require.Len(t, payload, packet.ScoreFrameBaseSize)
			assert.Equal(t, byte(1), payload[packet.ScoreFrameSlotOffset])
			found = true
		}
	}
	assert.True(t, found, "expected a score frame")
}

func TestSkipAndLoadAggregation(t *testing.T) {
	s, _ := newTestServer(t)
	host := newTestPlayer(s, 100, "host")
	p2 := newTestPlayer(s, 101, "second")

	m := createTestMatch(t, s, host)
	require.NoError(t, m.Join(p2, "pass"))
	m.Ready(host)
	m.Ready(p2)
	m.Start(host)

	m.LoadComplete(host)
	host.Drain()
	m.LoadComplete(p2)

	fr := packet.NewFrameReader(host.Drain())
	loaded := false
	for fr.Next() {
		if fr.ID() == constants.ServerMatchAllPlayersLoaded {
			loaded = true
		}
	}
	assert.True(t, loaded, "expected all-players-loaded after the last load")

	m.SkipRequest(host)
	host.Drain()
	m.SkipRequest(p2)

	fr = packet.NewFrameReader(host.Drain())
	skipped := false
	for fr.Next() {
		if fr.ID() == constants.ServerMatchSkip {
			skipped = true
		}
	}
	assert.True(t, skipped, "expected skip after everyone requested it")
}
