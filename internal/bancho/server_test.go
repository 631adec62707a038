package bancho

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/FireRedz/gulag/internal/beatmap"
	"github.com/FireRedz/gulag/internal/config"
	"github.com/FireRedz/gulag/internal/constants"
	"github.com/FireRedz/gulag/internal/geoloc"
)

// stubStore is an in-memory Store for tests.
type stubStore struct {
	users  map[string]*UserRecord
	nextID atomic.Int32
}

func newStubStore() *stubStore {
	s := &stubStore{users: make(map[string]*UserRecord)}
	s.nextID.Store(2)
	return s
}

func (s *stubStore) UserByName(ctx context.Context, safeName string) (*UserRecord, error) {
	return s.users[safeName], nil
}

func (s *stubStore) InsertUser(ctx context.Context, name, safeName, pwHash, country string) (int32, error) {
	id := s.nextID.Add(1)
	s.users[safeName] = &UserRecord{
		ID: id, Name: name, SafeName: safeName,
		PWHash: pwHash, Priv: constants.PrivNormal, Country: country,
	}
	return id, nil
}

func (s *stubStore) InsertStats(ctx context.Context, userID int32) error { return nil }

func (s *stubStore) LoadStats(ctx context.Context, userID int32) ([constants.GameModeCount]ModeStats, error) {
	return [constants.GameModeCount]ModeStats{}, nil
}

func (s *stubStore) LoadFriends(ctx context.Context, userID int32) ([]int32, error) {
	return nil, nil
}

func (s *stubStore) AddFriend(ctx context.Context, userID, friendID int32) error    { return nil }
func (s *stubStore) RemoveFriend(ctx context.Context, userID, friendID int32) error { return nil }

func (s *stubStore) Channels(ctx context.Context) ([]ChannelRecord, error) {
	return []ChannelRecord{
		{Name: "#osu", Topic: "General discussion.", ReadPriv: constants.PrivNormal, WritePriv: constants.PrivNormal, AutoJoin: true},
		{Name: "#lobby", Topic: "Multiplayer lobby.", ReadPriv: constants.PrivNormal, WritePriv: constants.PrivNormal},
	}, nil
}

func (s *stubStore) TouchActivity(ctx context.Context, userID int32) error { return nil }

type stubGeo struct{}

func (stubGeo) Locate(ctx context.Context, ip string) (geoloc.Location, error) {
	return geoloc.Location{Code: geoloc.CountryCode("GB"), Acronym: "GB"}, nil
}

type stubBeatmaps struct{}

func (stubBeatmaps) FromBID(ctx context.Context, bid int32) (*beatmap.Beatmap, error) {
	return &beatmap.Beatmap{ID: bid, SetID: 1, Artist: "artist", Title: "title", Version: "diff"}, nil
}

func (stubBeatmaps) FromMD5(ctx context.Context, md5 string) (*beatmap.Beatmap, error) {
	return &beatmap.Beatmap{ID: 1, SetID: 1, MD5: md5}, nil
}

// newTestServer builds a Server over in-memory collaborators, with the
// static test channels already loaded.
func newTestServer(t *testing.T) (*Server, *stubStore) {
	t.Helper()

	store := newStubStore()
	s := NewServer(config.Default(), store, stubGeo{}, stubBeatmaps{})
	if err := s.LoadChannels(context.Background()); err != nil {
		t.Fatalf("loading channels: %v", err)
	}
	return s, store
}

// newTestPlayer creates a logged-in player directly, bypassing the
// login handshake.
func newTestPlayer(s *Server, id int32, name string) *Player {
	p := &Player{
		ID:        id,
		Name:      name,
		SafeName:  SafeName(name),
		Token:     uuid.NewString(),
		Priv:      constants.PrivNormal,
		LoginTime: time.Now(),
		srv:       s,
		friends:   make(map[int32]struct{}),
		channels:  make(map[*Channel]struct{}),
	}
	p.lastPing = time.Now()
	s.roster.Add(p)
	return p
}
