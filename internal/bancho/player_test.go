package bancho

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FireRedz/gulag/internal/constants"
	"github.com/FireRedz/gulag/internal/packet"
)

func TestSafeName(t *testing.T) {
	assert.Equal(t, "cookiezi", SafeName("Cookiezi"))
	assert.Equal(t, "white_cat", SafeName("White Cat"))
	assert.Equal(t, "a_b_c", SafeName("A b C"))
}

func TestPlayerEmbed(t *testing.T) {
	s, _ := newTestServer(t)
	p := newTestPlayer(s, 100, "alice")

	assert.Equal(t, "https://gulag.local/u/100", p.URL())
	assert.Equal(t, "[https://gulag.local/u/100 alice]", p.Embed())
}

func TestQueueFIFO(t *testing.T) {
	s, _ := newTestServer(t)
	p := newTestPlayer(s, 100, "alice")

	p.Enqueue([]byte{1, 2})
	p.Enqueue([]byte{3})
	p.Enqueue([]byte{4, 5, 6})

	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, p.Drain())
	assert.Nil(t, p.Drain())
	assert.True(t, p.QueueEmpty())
}

func TestQueueOverflowDropsOldest(t *testing.T) {
	s, _ := newTestServer(t)
	p := newTestPlayer(s, 100, "alice")

	for i := range maxQueuedPackets + 10 {
		p.Enqueue([]byte{byte(i)})
	}

	out := p.Drain()
	assert.Len(t, out, maxQueuedPackets)
	// The oldest ten were dropped.
	assert.Equal(t, byte(10), out[0])
}

func TestJoinChannel(t *testing.T) {
	s, _ := newTestServer(t)
	p := newTestPlayer(s, 100, "alice")
	c := s.channels.Get("#osu")
	require.NotNil(t, c)

	assert.True(t, p.JoinChannel(c))
	assert.True(t, c.Contains(p))

	// Double join is refused.
	assert.False(t, p.JoinChannel(c))
}

func TestJoinChannelDenied(t *testing.T) {
	s, _ := newTestServer(t)
	p := newTestPlayer(s, 100, "alice")

	staff := NewChannel("#staff", "Staff only.", constants.PrivStaff, constants.PrivStaff, false)
	s.channels.Add(staff)

	assert.False(t, p.JoinChannel(staff))
	assert.False(t, staff.Contains(p))
}

func TestLobbyChannelRequiresLobby(t *testing.T) {
	s, _ := newTestServer(t)
	p := newTestPlayer(s, 100, "alice")
	c := s.channels.Get(constants.LobbyChannel)
	require.NotNil(t, c)

	assert.False(t, p.JoinChannel(c))

	p.SetInLobby(true)
	assert.True(t, p.JoinChannel(c))
}

func TestSpectatorInvariants(t *testing.T) {
	s, _ := newTestServer(t)
	host := newTestPlayer(s, 100, "host")
	f1 := newTestPlayer(s, 101, "follower1")
	f2 := newTestPlayer(s, 102, "follower2")

	host.AddSpectator(f1)
	host.AddSpectator(f2)

	assert.Same(t, host, f1.Spectating())
	assert.Same(t, host, f2.Spectating())
	assert.Len(t, host.Spectators(), 2)

	specChan := s.channels.Get(fmt.Sprintf("%s%d", constants.SpectatorChannelPrefix, host.ID))
	require.NotNil(t, specChan)
	assert.True(t, specChan.Contains(f1))
	assert.True(t, specChan.Contains(f2))

	host.RemoveSpectator(f1)
	assert.Nil(t, f1.Spectating())
	assert.Len(t, host.Spectators(), 1)

	// Last follower leaving disbands the channel.
	host.RemoveSpectator(f2)
	assert.Nil(t, s.channels.Get(fmt.Sprintf("%s%d", constants.SpectatorChannelPrefix, host.ID)))
}

func TestLogoutTeardown(t *testing.T) {
	s, _ := newTestServer(t)
	host := newTestPlayer(s, 100, "host")
	f := newTestPlayer(s, 101, "follower")
	other := newTestPlayer(s, 102, "other")

	c := s.channels.Get("#osu")
	require.True(t, f.JoinChannel(c))
	host.AddSpectator(f)
	other.Drain()

	f.Logout()

	assert.Nil(t, s.roster.ByID(f.ID))
	assert.Nil(t, s.roster.ByToken(f.Token))
	assert.False(t, c.Contains(f))
	assert.Empty(t, host.Spectators())

	// Everyone left observes the logout notice.
	out := other.Drain()
	fr := packet.NewFrameReader(out)
	found := false
	for fr.Next() {
		if fr.ID() == constants.ServerUserLogout {
			id, err := fr.Payload().ReadInt32()
			require.NoError(t, err)
			assert.Equal(t, f.ID, id)
			found = true
		}
	}
	assert.True(t, found, "expected a logout frame")
}

func TestMessageTruncation(t *testing.T) {
	long := make([]byte, 4000)
	for i := range long {
		long[i] = 'a'
	}

	got := truncateMessage(string(long))
	assert.Len(t, got, constants.MaxMessageLength)
	assert.Equal(t, string(long[:constants.TruncatedMessageLength])+"...", got)

	assert.Equal(t, "short", truncateMessage("short"))
}
