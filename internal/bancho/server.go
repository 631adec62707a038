// Package bancho implements the session server: online players, chat
// channels, spectating and multiplayer matches, driven by the binary
// packet protocol osu! clients speak.
package bancho

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FireRedz/gulag/internal/bancho/serverpackets"
	"github.com/FireRedz/gulag/internal/beatmap"
	"github.com/FireRedz/gulag/internal/config"
	"github.com/FireRedz/gulag/internal/constants"
	"github.com/FireRedz/gulag/internal/geoloc"
	"github.com/FireRedz/gulag/internal/metrics"
	"github.com/FireRedz/gulag/internal/packet"
)

// UserRecord is an account row loaded from the store.
type UserRecord struct {
	ID         int32
	Name       string
	SafeName   string
	PWHash     string
	Priv       constants.Privileges
	Country    string
	SilenceEnd int64
}

// ChannelRecord is a static channel definition loaded from the store.
type ChannelRecord struct {
	Name      string
	Topic     string
	ReadPriv  constants.Privileges
	WritePriv constants.Privileges
	AutoJoin  bool
}

// Store is the persistence surface the session server needs.
type Store interface {
	UserByName(ctx context.Context, safeName string) (*UserRecord, error)
	InsertUser(ctx context.Context, name, safeName, pwHash, country string) (int32, error)
	InsertStats(ctx context.Context, userID int32) error
	LoadStats(ctx context.Context, userID int32) ([constants.GameModeCount]ModeStats, error)
	LoadFriends(ctx context.Context, userID int32) ([]int32, error)
	AddFriend(ctx context.Context, userID, friendID int32) error
	RemoveFriend(ctx context.Context, userID, friendID int32) error
	Channels(ctx context.Context) ([]ChannelRecord, error)
	TouchActivity(ctx context.Context, userID int32) error
}

// Geolocator resolves a client address to a rough location.
type Geolocator interface {
	Locate(ctx context.Context, ip string) (geoloc.Location, error)
}

// CommandResult is a chat command's outcome. Public responses go to the
// whole channel; private ones reach staff plus the invoker only.
type CommandResult struct {
	Public bool
	Resp   string
}

// CommandProcessor handles bot-prefixed chat messages. The boolean
// reports whether the message was a command at all.
type CommandProcessor interface {
	Process(ctx context.Context, p *Player, target, msg string) (*CommandResult, bool)
}

// BeatmapSource resolves beatmaps for /np handling and map lookups.
type BeatmapSource interface {
	FromBID(ctx context.Context, bid int32) (*beatmap.Beatmap, error)
	FromMD5(ctx context.Context, md5 string) (*beatmap.Beatmap, error)
}

type handlerFunc func(ctx context.Context, p *Player, r *packet.Reader)

// Server is the shared world: every registry, the bot and the
// collaborators, plus the packet handler table.
type Server struct {
	cfg      *config.Config
	store    Store
	geo      Geolocator
	commands CommandProcessor
	beatmaps BeatmapSource

	roster   *Roster
	channels *ChannelRegistry
	matches  *MatchRegistry
	bot      *Player

	handlers map[uint16]handlerFunc

	// Verified password-token → bcrypt-hash pairs, so repeat logins skip
	// the bcrypt evaluation. A lookup cache, not a security boundary.
	pwCache sync.Map
}

// NewServer assembles the world. Static channels are loaded separately
// with LoadChannels so construction stays free of I/O.
func NewServer(cfg *config.Config, store Store, geo Geolocator, beatmaps BeatmapSource) *Server {
	s := &Server{
		cfg:      cfg,
		store:    store,
		geo:      geo,
		beatmaps: beatmaps,
		roster:   NewRoster(),
		channels: NewChannelRegistry(),
	}
	s.matches = NewMatchRegistry(s)

	s.bot = &Player{
		ID:        constants.BotUserID,
		Name:      cfg.BotName,
		SafeName:  SafeName(cfg.BotName),
		Token:     uuid.NewString(),
		Priv:      constants.PrivNormal | constants.PrivStaff,
		Bot:       true,
		LoginTime: time.Now(),
		srv:       s,
		friends:   make(map[int32]struct{}),
		channels:  make(map[*Channel]struct{}),
	}
	s.bot.lastPing = time.Now()
	s.roster.Add(s.bot)

	s.registerHandlers()
	return s
}

// SetCommandProcessor wires the chat command collaborator. Done after
// construction because the processor needs the server to act on.
func (s *Server) SetCommandProcessor(cp CommandProcessor) {
	s.commands = cp
}

// Bot returns the server-resident bot player.
func (s *Server) Bot() *Player {
	return s.bot
}

// Roster returns the online player set.
func (s *Server) Roster() *Roster {
	return s.roster
}

// Channels returns the live channel registry.
func (s *Server) Channels() *ChannelRegistry {
	return s.channels
}

// Matches returns the live match table.
func (s *Server) Matches() *MatchRegistry {
	return s.matches
}

// LoadChannels populates the registry from the store's static channels.
func (s *Server) LoadChannels(ctx context.Context) error {
	records, err := s.store.Channels(ctx)
	if err != nil {
		return err
	}
	for _, rec := range records {
		s.channels.Add(NewChannel(rec.Name, rec.Topic, rec.ReadPriv, rec.WritePriv, rec.AutoJoin))
	}
	slog.Info("channels loaded", "count", len(records))
	return nil
}

// announceChannel pushes a channel's updated member count to everyone
// entitled to see it. Instance channels are visible to members only.
func (s *Server) announceChannel(c *Channel) {
	info := serverpackets.ChannelInfo(c.Name, c.Topic, uint16(c.MemberCount()))
	if c.Instance {
		c.Enqueue(info)
		return
	}
	for _, p := range s.roster.All() {
		if c.CanRead(p.Priv) {
			p.Enqueue(info)
		}
	}
}

// NotifyAll pops a toast on every connected client.
func (s *Server) NotifyAll(msg string) {
	s.roster.Enqueue(serverpackets.Notification(msg))
}

// sweepInterval is how often idle sessions are checked.
const sweepInterval = 30 * time.Second

// SweepInactive logs out sessions whose client stopped pinging. Runs
// until ctx is cancelled.
func (s *Server) SweepInactive(ctx context.Context) error {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, p := range s.roster.All() {
				if p.Bot {
					continue
				}
				if idle := time.Since(p.LastPing()); idle > constants.PingTimeout {
					slog.Info("pinged out", "player", p.Name, "idle", idle.Round(time.Second))
					p.Logout()
					metrics.Pingouts.Inc()
				}
			}
			metrics.OnlinePlayers.Set(float64(s.roster.Len() - 1))
		}
	}
}
