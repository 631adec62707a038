package bancho

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/FireRedz/gulag/internal/bancho/serverpackets"
	"github.com/FireRedz/gulag/internal/beatmap"
	"github.com/FireRedz/gulag/internal/constants"
	"github.com/FireRedz/gulag/internal/packet"
)

// truncateMessage caps chat bodies at the protocol limit.
func truncateMessage(text string) string {
	if len(text) > constants.MaxMessageLength {
		return text[:constants.TruncatedMessageLength] + "..."
	}
	return text
}

// resolveChannel maps a client-side channel name to a live channel. The
// symbolic #spectator and #multiplayer names resolve to the sender's
// dynamic rooms.
func (s *Server) resolveChannel(p *Player, name string) *Channel {
	switch name {
	case "#spectator":
		hostID := p.ID
		if host := p.Spectating(); host != nil {
			hostID = host.ID
		}
		name = fmt.Sprintf("%s%d", constants.SpectatorChannelPrefix, hostID)
	case "#multiplayer":
		m := p.Match()
		if m == nil {
			return nil
		}
		name = m.chat.Name
	}
	return s.channels.Get(name)
}

func (s *Server) handleChangeAction(ctx context.Context, p *Player, r *packet.Reader) {
	action, err := r.ReadByte()
	if err != nil {
		return
	}
	infoText, err := r.ReadString()
	if err != nil {
		return
	}
	mapMD5, err := r.ReadString()
	if err != nil {
		return
	}
	mods, err := r.ReadUint32()
	if err != nil {
		return
	}
	mode, err := r.ReadByte()
	if err != nil {
		return
	}
	mapID, err := r.ReadInt32()
	if err != nil {
		return
	}

	if mode >= 4 {
		slog.Warn("bogus game mode in action change", "player", p.Name, "mode", mode)
		return
	}

	p.SetStatus(Status{
		Action:   constants.Action(action),
		InfoText: infoText,
		MapMD5:   mapMD5,
		Mods:     constants.Mods(mods),
		GameMode: mode,
		MapID:    mapID,
	})

	s.roster.Enqueue(serverpackets.UserStats(p.statsData()))
}

func (s *Server) handlePublicMessage(ctx context.Context, p *Player, r *packet.Reader) {
	msg, err := r.ReadMessage()
	if err != nil {
		slog.Warn("malformed public message", "player", p.Name, "err", err)
		return
	}

	if p.Silenced() {
		slog.Info("silenced player tried to chat", "player", p.Name)
		return
	}

	c := s.resolveChannel(p, msg.Target)
	if c == nil {
		slog.Warn("message to unknown channel", "player", p.Name, "channel", msg.Target)
		return
	}
	if !c.Contains(p) {
		slog.Warn("message to channel without membership", "player", p.Name, "channel", c.Name)
		return
	}
	if !c.CanWrite(p.Priv) {
		slog.Warn("message without write privilege", "player", p.Name, "channel", c.Name)
		return
	}

	text := truncateMessage(strings.TrimRight(msg.Text, " "))
	if text == "" {
		return
	}

	var (
		res   *CommandResult
		isCmd bool
	)
	if strings.HasPrefix(text, s.cfg.CommandPrefix) && s.commands != nil {
		res, isCmd = s.commands.Process(ctx, p, c.Name, text)
	}

	if isCmd && (res == nil || !res.Public) {
		// The invocation of a staff-scoped command stays between the
		// invoker and the staff; the rest of the channel sees nothing.
		c.SendSelective(p, text, s.roster.Staff())
		if res != nil && res.Resp != "" {
			targets := s.roster.Staff()
			if p.Priv&constants.PrivStaff == 0 {
				targets = append(targets, p)
			}
			c.SendSelective(s.bot, res.Resp, targets)
		}
	} else {
		c.Send(p, text)
		if isCmd && res != nil && res.Resp != "" {
			c.Enqueue(serverpackets.SendMessage(packet.Message{
				Sender:   s.bot.Name,
				Text:     res.Resp,
				Target:   c.Name,
				SenderID: s.bot.ID,
			}))
		}
	}

	if bid, ok := beatmap.ParseNowPlaying(text); ok {
		s.bindNowPlaying(ctx, p, bid)
	}
}

func (s *Server) handlePrivateMessage(ctx context.Context, p *Player, r *packet.Reader) {
	msg, err := r.ReadMessage()
	if err != nil {
		slog.Warn("malformed private message", "player", p.Name, "err", err)
		return
	}

	if p.Silenced() {
		slog.Info("silenced player tried to pm", "player", p.Name)
		return
	}

	target := s.roster.ByName(msg.Target)
	if target == nil {
		slog.Warn("pm to offline player", "player", p.Name, "target", msg.Target)
		return
	}
	if target.PMPrivate() && !target.IsFriend(p.ID) {
		p.Enqueue(serverpackets.UserPMBlocked(target.Name))
		slog.Info("pm blocked", "player", p.Name, "target", target.Name)
		return
	}
	if target.Silenced() {
		p.Enqueue(serverpackets.TargetIsSilenced(target.Name))
		return
	}

	text := truncateMessage(strings.TrimRight(msg.Text, " "))
	if text == "" {
		return
	}

	if target.Bot {
		s.handleBotMessage(ctx, p, text)
		return
	}

	if away := target.AwayMessage(); away != "" {
		p.Enqueue(serverpackets.SendMessage(packet.Message{
			Sender:   target.Name,
			Text:     fmt.Sprintf("\x01ACTION is away: %s\x01", away),
			Target:   p.Name,
			SenderID: target.ID,
		}))
	}

	target.Enqueue(serverpackets.SendMessage(packet.Message{
		Sender:   p.Name,
		Text:     text,
		Target:   target.Name,
		SenderID: p.ID,
	}))
}

// handleBotMessage routes a PM addressed to the bot: now-playing lines
// get a PP listing, prefixed messages run through the command processor.
func (s *Server) handleBotMessage(ctx context.Context, p *Player, text string) {
	reply := func(text string) {
		p.Enqueue(serverpackets.SendMessage(packet.Message{
			Sender:   s.bot.Name,
			Text:     text,
			Target:   p.Name,
			SenderID: s.bot.ID,
		}))
	}

	if bid, ok := beatmap.ParseNowPlaying(text); ok {
		bm := s.bindNowPlaying(ctx, p, bid)
		if bm == nil {
			reply("Could not find that map.")
			return
		}
		reply(bm.PPString())
		return
	}

	if strings.HasPrefix(text, s.cfg.CommandPrefix) && s.commands != nil {
		if res, ok := s.commands.Process(ctx, p, s.bot.Name, text); ok && res != nil && res.Resp != "" {
			reply(res.Resp)
		}
	}
}

// bindNowPlaying resolves a /np beatmap id and remembers it on the player.
func (s *Server) bindNowPlaying(ctx context.Context, p *Player, bid int32) *beatmap.Beatmap {
	bm, err := s.beatmaps.FromBID(ctx, bid)
	if err != nil {
		slog.Warn("now-playing lookup failed", "player", p.Name, "bid", bid, "err", err)
		return nil
	}
	p.SetLastNP(bm)
	return bm
}

func (s *Server) handleLogout(ctx context.Context, p *Player, r *packet.Reader) {
	// The client fires a logout right after login while reconnecting.
	if time.Since(p.LoginTime) < constants.LogoutGrace {
		slog.Debug("ignoring logout within grace", "player", p.Name)
		return
	}
	p.Logout()
}

func (s *Server) handleRequestStatusUpdate(ctx context.Context, p *Player, r *packet.Reader) {
	p.Enqueue(serverpackets.UserStats(p.statsData()))
}

func (s *Server) handlePing(ctx context.Context, p *Player, r *packet.Reader) {
	// Presence is already refreshed per request; nothing to answer.
}

func (s *Server) handleStartSpectating(ctx context.Context, p *Player, r *packet.Reader) {
	hostID, err := r.ReadInt32()
	if err != nil {
		return
	}

	host := s.roster.ByID(hostID)
	if host == nil {
		slog.Warn("spectate request for offline player", "player", p.Name, "host", hostID)
		return
	}
	if host == p || host.Bot {
		return
	}

	if old := p.Spectating(); old != nil {
		old.RemoveSpectator(p)
	}
	host.AddSpectator(p)
}

func (s *Server) handleStopSpectating(ctx context.Context, p *Player, r *packet.Reader) {
	host := p.Spectating()
	if host == nil {
		slog.Debug("stop spectating while not spectating", "player", p.Name)
		return
	}
	host.RemoveSpectator(p)
}

func (s *Server) handleSpectateFrames(ctx context.Context, p *Player, r *packet.Reader) {
	frame := serverpackets.SpectateFrames(r.ReadRemaining())
	for _, f := range p.Spectators() {
		f.Enqueue(frame)
	}
}

func (s *Server) handleCantSpectate(ctx context.Context, p *Player, r *packet.Reader) {
	host := p.Spectating()
	if host == nil {
		slog.Debug("cant-spectate outside spectating", "player", p.Name)
		return
	}

	frame := serverpackets.SpectatorCantSpectate(p.ID)
	host.Enqueue(frame)
	for _, f := range host.Spectators() {
		if f != p {
			f.Enqueue(frame)
		}
	}
}

func (s *Server) handleChannelJoin(ctx context.Context, p *Player, r *packet.Reader) {
	name, err := r.ReadString()
	if err != nil {
		return
	}

	c := s.resolveChannel(p, name)
	if c == nil {
		slog.Warn("join of unknown channel", "player", p.Name, "channel", name)
		return
	}
	p.JoinChannel(c)
}

func (s *Server) handleChannelPart(ctx context.Context, p *Player, r *packet.Reader) {
	name, err := r.ReadString()
	if err != nil || name == "" {
		return
	}

	c := s.resolveChannel(p, name)
	if c == nil {
		slog.Debug("part of unknown channel", "player", p.Name, "channel", name)
		return
	}
	p.LeaveChannel(c)
}

func (s *Server) handleFriendAdd(ctx context.Context, p *Player, r *packet.Reader) {
	friendID, err := r.ReadInt32()
	if err != nil {
		return
	}
	if friendID == p.ID || friendID == s.bot.ID {
		return
	}

	p.mu.Lock()
	p.friends[friendID] = struct{}{}
	p.mu.Unlock()

	if err := s.store.AddFriend(ctx, p.ID, friendID); err != nil {
		slog.Error("friend add persist", "player", p.Name, "friend", friendID, "err", err)
	}
	slog.Info("friend added", "player", p.Name, "friend", friendID)
}

func (s *Server) handleFriendRemove(ctx context.Context, p *Player, r *packet.Reader) {
	friendID, err := r.ReadInt32()
	if err != nil {
		return
	}
	if friendID == p.ID || friendID == s.bot.ID {
		return
	}

	p.mu.Lock()
	delete(p.friends, friendID)
	p.mu.Unlock()

	if err := s.store.RemoveFriend(ctx, p.ID, friendID); err != nil {
		slog.Error("friend remove persist", "player", p.Name, "friend", friendID, "err", err)
	}
	slog.Info("friend removed", "player", p.Name, "friend", friendID)
}

func (s *Server) handleReceiveUpdates(ctx context.Context, p *Player, r *packet.Reader) {
	filter, err := r.ReadInt32()
	if err != nil {
		return
	}
	if filter < int32(constants.PresenceFilterNil) || filter > int32(constants.PresenceFilterFriends) {
		slog.Warn("bogus presence filter", "player", p.Name, "filter", filter)
		return
	}
	p.SetPresenceFilter(constants.PresenceFilter(filter))
}

func (s *Server) handleSetAwayMessage(ctx context.Context, p *Player, r *packet.Reader) {
	msg, err := r.ReadMessage()
	if err != nil {
		return
	}
	p.SetAwayMessage(truncateMessage(msg.Text))
}

func (s *Server) handleUserStatsRequest(ctx context.Context, p *Player, r *packet.Reader) {
	// The client sends at least a u16 count and one id; shorter payloads
	// are noise from old builds.
	if r.Remaining() < 6 {
		return
	}
	ids, err := r.ReadI32List()
	if err != nil {
		return
	}

	for _, id := range ids {
		o := s.roster.ByID(id)
		if o == nil {
			continue
		}
		p.Enqueue(serverpackets.UserStats(o.statsData()))
	}
}

func (s *Server) handleUserPresenceRequest(ctx context.Context, p *Player, r *packet.Reader) {
	ids, err := r.ReadI32List()
	if err != nil {
		return
	}
	for _, id := range ids {
		o := s.roster.ByID(id)
		if o == nil {
			continue
		}
		p.Enqueue(serverpackets.UserPresence(o.presenceData()))
	}
}

func (s *Server) handleTogglePrivatePM(ctx context.Context, p *Player, r *packet.Reader) {
	v, err := r.ReadInt32()
	if err != nil {
		return
	}
	p.SetPMPrivate(v == 1)
}

func (s *Server) handleBeatmapInfoRequest(ctx context.Context, p *Player, r *packet.Reader) {
	// Consumed without effect; modern clients cope without a reply.
}
