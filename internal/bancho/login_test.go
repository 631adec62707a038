package bancho

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/FireRedz/gulag/internal/constants"
	"github.com/FireRedz/gulag/internal/packet"
)

const testPwMD5 = "0123456789abcdef0123456789abcdef"

func seedUser(t *testing.T, store *stubStore, name string) *UserRecord {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPwMD5), bcrypt.MinCost)
	require.NoError(t, err)

	u := &UserRecord{
		ID:       store.nextID.Add(1),
		Name:     name,
		SafeName: SafeName(name),
		PWHash:   string(hash),
		Priv:     constants.PrivNormal,
	}
	store.users[u.SafeName] = u
	return u
}

func loginBody(name, pwMD5 string) []byte {
	return fmt.Appendf(nil, "%s\n%s\nb20200201|0|somewhere|somehashes|0\n", name, pwMD5)
}

// snapshotIDs extracts the packet id sequence of a login response.
func snapshotIDs(t *testing.T, resp []byte) []uint16 {
	t.Helper()

	var ids []uint16
	fr := packet.NewFrameReader(resp)
	for fr.Next() {
		ids = append(ids, fr.ID())
	}
	require.NoError(t, fr.Err())
	return ids
}

func TestLoginSuccess(t *testing.T) {
	s, store := newTestServer(t)
	u := seedUser(t, store, "alice")

	resp, token := s.Login(context.Background(), loginBody("alice", testPwMD5), "127.0.0.1")
	require.NotEqual(t, DeniedToken, token)

	p := s.roster.ByToken(token)
	require.NotNil(t, p)
	assert.Equal(t, u.ID, p.ID)

	ids := snapshotIDs(t, resp)
	require.NotEmpty(t, ids)
	assert.Equal(t, constants.ServerUserID, ids[0])
	assert.Equal(t, constants.ServerProtocolVersion, ids[1])
	assert.Equal(t, constants.ServerBanchoPrivileges, ids[2])
	assert.Contains(t, ids, constants.ServerChannelInfoEnd)
	assert.Contains(t, ids, constants.ServerFriendsList)
	assert.Contains(t, ids, constants.ServerSilenceEnd)
	assert.Contains(t, ids, constants.ServerUserPresence)

	// UserID payload carries the account id.
	fr := packet.NewFrameReader(resp)
	require.True(t, fr.Next())
	got, err := fr.Payload().ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, u.ID, got)
}

func TestLoginBadPassword(t *testing.T) {
	s, store := newTestServer(t)
	seedUser(t, store, "alice")

	resp, token := s.Login(context.Background(), loginBody("alice", strings.Repeat("f", 32)), "127.0.0.1")
	assert.Equal(t, DeniedToken, token)

	fr := packet.NewFrameReader(resp)
	require.True(t, fr.Next())
	assert.Equal(t, constants.ServerUserID, fr.ID())
	id, err := fr.Payload().ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(-1), id)
}

func TestLoginBanned(t *testing.T) {
	s, store := newTestServer(t)
	u := seedUser(t, store, "alice")
	u.Priv = 0

	resp, token := s.Login(context.Background(), loginBody("alice", testPwMD5), "127.0.0.1")
	assert.Equal(t, DeniedToken, token)

	fr := packet.NewFrameReader(resp)
	require.True(t, fr.Next())
	id, err := fr.Payload().ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(-3), id)
}

func TestLoginMalformed(t *testing.T) {
	s, _ := newTestServer(t)

	_, token := s.Login(context.Background(), []byte("just one line"), "127.0.0.1")
	assert.Equal(t, DeniedToken, token)

	_, token = s.Login(context.Background(), loginBody("alice", "tooshort"), "127.0.0.1")
	assert.Equal(t, DeniedToken, token)
}

func TestLoginRegistersUnknownName(t *testing.T) {
	s, store := newTestServer(t)

	_, token := s.Login(context.Background(), loginBody("newcomer", testPwMD5), "127.0.0.1")
	require.NotEqual(t, DeniedToken, token)

	assert.NotNil(t, store.users["newcomer"])
	assert.NotNil(t, s.roster.ByName("newcomer"))
}

func TestDisplacedRelogin(t *testing.T) {
	s, store := newTestServer(t)
	seedUser(t, store, "alice")
	witness := newTestPlayer(s, 500, "witness")

	_, t1 := s.Login(context.Background(), loginBody("alice", testPwMD5), "127.0.0.1")
	require.NotEqual(t, DeniedToken, t1)
	first := s.roster.ByToken(t1)
	require.NotNil(t, first)
	witness.Drain()

	// Within the window the second login is refused.
	_, tok := s.Login(context.Background(), loginBody("alice", testPwMD5), "127.0.0.1")
	assert.Equal(t, DeniedToken, tok)

	// Past the window the stale session is evicted.
	first.mu.Lock()
	first.lastPing = time.Now().Add(-constants.DisplaceWindow - time.Second)
	first.mu.Unlock()

	resp, t2 := s.Login(context.Background(), loginBody("alice", testPwMD5), "127.0.0.1")
	require.NotEqual(t, DeniedToken, t2)
	assert.NotEqual(t, t1, t2)
	assert.Nil(t, s.roster.ByToken(t1))
	assert.NotNil(t, s.roster.ByToken(t2))

	// The fresh snapshot is valid.
	ids := snapshotIDs(t, resp)
	assert.Equal(t, constants.ServerUserID, ids[0])

	// Other clients observed the eviction.
	fr := packet.NewFrameReader(witness.Drain())
	sawLogout := false
	for fr.Next() {
		if fr.ID() == constants.ServerUserLogout {
			sawLogout = true
		}
	}
	assert.True(t, sawLogout, "expected the witness to see a logout")
}
