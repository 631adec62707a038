package bancho

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/FireRedz/gulag/internal/bancho/serverpackets"
	"github.com/FireRedz/gulag/internal/constants"
	"github.com/FireRedz/gulag/internal/metrics"
	"github.com/FireRedz/gulag/internal/packet"
)

// DeniedToken is the cho-token value returned for refused logins.
const DeniedToken = "no"

// loginRequest is the parsed three-line login body.
type loginRequest struct {
	Username  string
	PwMD5     string
	OsuVer    string
	UTCOffset int8
	PMPrivate bool
}

func parseLoginBody(body []byte) (loginRequest, error) {
	var req loginRequest

	lines := strings.SplitN(string(body), "\n", 4)
	if len(lines) < 3 {
		return req, fmt.Errorf("login body: %d lines", len(lines))
	}
	req.Username = lines[0]
	req.PwMD5 = lines[1]

	// osu_ver|utc_offset|display_city|client_hashes|pm_private
	info := strings.Split(lines[2], "|")
	if len(info) != 5 {
		return req, fmt.Errorf("login client info: %d fields", len(info))
	}
	req.OsuVer = info[0]

	utc, err := strconv.Atoi(info[1])
	if err != nil {
		return req, fmt.Errorf("login utc offset: %w", err)
	}
	req.UTCOffset = int8(utc)
	req.PMPrivate = info[4] == "1"

	if req.Username == "" || len(req.PwMD5) != 32 {
		return req, fmt.Errorf("login credentials malformed")
	}
	return req, nil
}

// Login handles an initial (token-less) client request. It returns the
// response body and the cho-token to hand back; DeniedToken marks a
// refused attempt.
func (s *Server) Login(ctx context.Context, body []byte, ip string) ([]byte, string) {
	req, err := parseLoginBody(body)
	if err != nil {
		slog.Warn("malformed login request", "ip", ip, "err", err)
		return serverpackets.UserID(-1), DeniedToken
	}

	// Same-name session handling: refuse inside the displacement window,
	// evict past it.
	if old := s.roster.ByName(req.Username); old != nil && !old.Bot {
		if time.Since(old.LastPing()) <= constants.DisplaceWindow {
			slog.Info("login refused, session alive", "player", req.Username)
			w := append(serverpackets.Notification("User already logged in."), serverpackets.UserID(-1)...)
			return w, DeniedToken
		}
		slog.Info("displacing stale session", "player", old.Name)
		old.Logout()
	}

	user, err := s.store.UserByName(ctx, SafeName(req.Username))
	if err != nil {
		slog.Error("login user lookup", "player", req.Username, "err", err)
		w := append(serverpackets.Notification("Server error, please try again."), serverpackets.UserID(-1)...)
		return w, DeniedToken
	}

	registered := false
	if user == nil {
		if user, err = s.register(ctx, req); err != nil {
			slog.Error("login registration", "player", req.Username, "err", err)
			w := append(serverpackets.Notification("Server error, please try again."), serverpackets.UserID(-1)...)
			return w, DeniedToken
		}
		registered = true
	} else {
		if user.Priv&constants.PrivNormal == 0 {
			slog.Info("login refused, banned", "player", user.Name)
			return serverpackets.UserID(-3), DeniedToken
		}
		if !s.checkPassword(req.PwMD5, user.PWHash) {
			slog.Info("login refused, bad password", "player", user.Name)
			return serverpackets.UserID(-1), DeniedToken
		}
	}

	p := &Player{
		ID:        user.ID,
		Name:      user.Name,
		SafeName:  user.SafeName,
		Token:     uuid.NewString(),
		Priv:      user.Priv,
		LoginTime: time.Now(),
		srv:       s,
		friends:   make(map[int32]struct{}),
		channels:  make(map[*Channel]struct{}),
	}
	p.lastPing = p.LoginTime
	p.utcOffset = req.UTCOffset
	p.pmPrivate = req.PMPrivate
	p.silenceEnd = user.SilenceEnd

	if loc, err := s.geo.Locate(ctx, ip); err != nil {
		slog.Warn("geolocation failed", "player", p.Name, "ip", ip, "err", err)
	} else {
		p.country = loc.Code
		p.countryStr = loc.Acronym
		p.longitude = loc.Longitude
		p.latitude = loc.Latitude
	}

	if p.stats, err = s.store.LoadStats(ctx, p.ID); err != nil {
		slog.Error("login stats load", "player", p.Name, "err", err)
	}
	friends, err := s.store.LoadFriends(ctx, p.ID)
	if err != nil {
		slog.Error("login friends load", "player", p.Name, "err", err)
	}
	for _, id := range friends {
		p.friends[id] = struct{}{}
	}

	s.roster.Add(p)

	// Initial snapshot, in the order the client expects.
	p.Enqueue(serverpackets.UserID(p.ID))
	p.Enqueue(serverpackets.ProtocolVersion(constants.ProtocolVersion))
	p.Enqueue(serverpackets.BanchoPrivileges(p.Priv.ToBancho()))
	p.Enqueue(serverpackets.Notification(s.cfg.WelcomeMsg))
	p.Enqueue(serverpackets.ChannelInfoEnd())

	for _, c := range s.channels.All() {
		if c.Instance || !c.CanRead(p.Priv) {
			continue
		}
		if c.AutoJoin {
			p.JoinChannel(c)
		}
		p.Enqueue(serverpackets.ChannelInfo(c.Name, c.Topic, uint16(c.MemberCount())))
	}

	presence := serverpackets.UserPresence(p.presenceData())
	stats := serverpackets.UserStats(p.statsData())
	p.Enqueue(presence)
	p.Enqueue(stats)

	for _, o := range s.roster.All() {
		if o == p {
			continue
		}
		p.Enqueue(serverpackets.UserPresence(o.presenceData()))
		p.Enqueue(serverpackets.UserStats(o.statsData()))
		o.Enqueue(presence)
		o.Enqueue(stats)
	}

	p.Enqueue(serverpackets.MainMenuIcon(s.cfg.MenuIcon()))
	p.Enqueue(serverpackets.FriendsList(p.Friends()))
	p.Enqueue(serverpackets.SilenceEnd(p.SilenceRemaining()))

	if registered {
		p.Enqueue(serverpackets.SendMessage(packet.Message{
			Sender:   s.bot.Name,
			Text:     fmt.Sprintf("Welcome to %s, %s!", s.cfg.Domain, p.Name),
			Target:   p.Name,
			SenderID: s.bot.ID,
		}))
	}

	if err := s.store.TouchActivity(ctx, p.ID); err != nil {
		slog.Warn("activity touch failed", "player", p.Name, "err", err)
	}

	metrics.Logins.Inc()
	slog.Info("logged in", "player", p.Name, "id", p.ID, "ver", req.OsuVer, "ip", ip)
	return p.Drain(), p.Token
}

// checkPassword verifies a client password token against the stored
// bcrypt hash, short-circuiting via the verified-pair cache.
func (s *Server) checkPassword(pwMD5, hash string) bool {
	if cached, ok := s.pwCache.Load(pwMD5); ok {
		return cached.(string) == hash
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(pwMD5)) != nil {
		return false
	}
	s.pwCache.Store(pwMD5, hash)
	return true
}

// register creates an account from a first-time login.
func (s *Server) register(ctx context.Context, req loginRequest) (*UserRecord, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.PwMD5), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	safeName := SafeName(req.Username)
	id, err := s.store.InsertUser(ctx, req.Username, safeName, string(hash), "xx")
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if err := s.store.InsertStats(ctx, id); err != nil {
		return nil, fmt.Errorf("insert stats: %w", err)
	}

	s.pwCache.Store(req.PwMD5, string(hash))
	slog.Info("registered account", "player", req.Username, "id", id)

	return &UserRecord{
		ID:       id,
		Name:     req.Username,
		SafeName: safeName,
		PWHash:   string(hash),
		Priv:     constants.PrivNormal,
	}, nil
}
