package bancho

import (
	"context"
	"errors"
	"log/slog"

	"github.com/FireRedz/gulag/internal/bancho/serverpackets"
	"github.com/FireRedz/gulag/internal/constants"
	"github.com/FireRedz/gulag/internal/packet"
)

// matchOf resolves the sender's match for the in-match handlers; absence
// is logged, not an error, since parting races are routine.
func matchOf(p *Player, op string) *Match {
	m := p.Match()
	if m == nil {
		slog.Debug("match packet outside a match", "player", p.Name, "op", op)
	}
	return m
}

func (s *Server) handleJoinLobby(ctx context.Context, p *Player, r *packet.Reader) {
	p.SetInLobby(true)
	for _, m := range s.matches.All() {
		p.Enqueue(serverpackets.NewMatch(m.lobbyData()))
	}
}

func (s *Server) handlePartLobby(ctx context.Context, p *Player, r *packet.Reader) {
	p.SetInLobby(false)
}

func (s *Server) handleCreateMatch(ctx context.Context, p *Player, r *packet.Reader) {
	d, err := r.ReadMatch()
	if err != nil {
		slog.Warn("malformed match in create", "player", p.Name, "err", err)
		return
	}

	if _, err := s.matches.Create(p, d); err != nil {
		if errors.Is(err, ErrLobbyFull) {
			p.Enqueue(serverpackets.MatchJoinFail())
			p.Enqueue(serverpackets.Notification("All multiplayer rooms are in use."))
		}
		slog.Warn("match create failed", "player", p.Name, "err", err)
	}
}

func (s *Server) handleJoinMatch(ctx context.Context, p *Player, r *packet.Reader) {
	matchID, err := r.ReadInt32()
	if err != nil {
		return
	}
	password, err := r.ReadString()
	if err != nil {
		return
	}

	m := s.matches.ByID(matchID)
	if m == nil {
		slog.Warn("join of unknown match", "player", p.Name, "match", matchID)
		p.Enqueue(serverpackets.MatchJoinFail())
		return
	}
	if p.Match() != nil {
		p.Enqueue(serverpackets.MatchJoinFail())
		return
	}

	if err := m.Join(p, password); err != nil {
		slog.Info("match join refused", "player", p.Name, "match", matchID, "err", err)
		p.Enqueue(serverpackets.MatchJoinFail())
	}
}

func (s *Server) handlePartMatch(ctx context.Context, p *Player, r *packet.Reader) {
	p.LeaveMatch()
}

func (s *Server) handleMatchChangeSlot(ctx context.Context, p *Player, r *packet.Reader) {
	slotID, err := r.ReadInt32()
	if err != nil {
		return
	}
	if m := matchOf(p, "change slot"); m != nil {
		m.ChangeSlot(p, int(slotID))
	}
}

func (s *Server) handleMatchReady(ctx context.Context, p *Player, r *packet.Reader) {
	if m := matchOf(p, "ready"); m != nil {
		m.Ready(p)
	}
}

func (s *Server) handleMatchNotReady(ctx context.Context, p *Player, r *packet.Reader) {
	if m := matchOf(p, "not ready"); m != nil {
		m.NotReady(p)
	}
}

func (s *Server) handleMatchLock(ctx context.Context, p *Player, r *packet.Reader) {
	slotID, err := r.ReadInt32()
	if err != nil {
		return
	}
	if m := matchOf(p, "lock slot"); m != nil {
		m.LockSlot(p, int(slotID))
	}
}

func (s *Server) handleMatchChangeSettings(ctx context.Context, p *Player, r *packet.Reader) {
	d, err := r.ReadMatch()
	if err != nil {
		slog.Warn("malformed match in settings change", "player", p.Name, "err", err)
		return
	}
	if m := matchOf(p, "change settings"); m != nil {
		m.ChangeSettings(p, d)
	}
}

func (s *Server) handleMatchStart(ctx context.Context, p *Player, r *packet.Reader) {
	if m := matchOf(p, "start"); m != nil {
		m.Start(p)
	}
}

func (s *Server) handleMatchScoreUpdate(ctx context.Context, p *Player, r *packet.Reader) {
	if m := matchOf(p, "score update"); m != nil {
		m.ScoreUpdate(p, r.ReadRemaining())
	}
}

func (s *Server) handleMatchComplete(ctx context.Context, p *Player, r *packet.Reader) {
	if m := matchOf(p, "complete"); m != nil {
		m.Complete(p)
	}
}

func (s *Server) handleMatchChangeMods(ctx context.Context, p *Player, r *packet.Reader) {
	mods, err := r.ReadInt32()
	if err != nil {
		return
	}
	if m := matchOf(p, "change mods"); m != nil {
		m.ChangeMods(p, constants.Mods(uint32(mods)))
	}
}

func (s *Server) handleMatchLoadComplete(ctx context.Context, p *Player, r *packet.Reader) {
	if m := matchOf(p, "load complete"); m != nil {
		m.LoadComplete(p)
	}
}

func (s *Server) handleMatchNoBeatmap(ctx context.Context, p *Player, r *packet.Reader) {
	if m := matchOf(p, "no beatmap"); m != nil {
		m.NoMap(p)
	}
}

func (s *Server) handleMatchHasBeatmap(ctx context.Context, p *Player, r *packet.Reader) {
	if m := matchOf(p, "has beatmap"); m != nil {
		m.HasMap(p)
	}
}

func (s *Server) handleMatchFailed(ctx context.Context, p *Player, r *packet.Reader) {
	if m := matchOf(p, "failed"); m != nil {
		m.Failed(p)
	}
}

func (s *Server) handleMatchSkipRequest(ctx context.Context, p *Player, r *packet.Reader) {
	if m := matchOf(p, "skip request"); m != nil {
		m.SkipRequest(p)
	}
}

func (s *Server) handleMatchTransferHost(ctx context.Context, p *Player, r *packet.Reader) {
	slotID, err := r.ReadInt32()
	if err != nil {
		return
	}
	if m := matchOf(p, "transfer host"); m != nil {
		m.TransferHost(p, int(slotID))
	}
}

func (s *Server) handleMatchChangePassword(ctx context.Context, p *Player, r *packet.Reader) {
	d, err := r.ReadMatch()
	if err != nil {
		slog.Warn("malformed match in password change", "player", p.Name, "err", err)
		return
	}
	if m := matchOf(p, "change password"); m != nil {
		m.ChangePassword(p, d.Password)
	}
}

func (s *Server) handleMatchChangeTeam(ctx context.Context, p *Player, r *packet.Reader) {
	if m := matchOf(p, "change team"); m != nil {
		m.ChangeTeam(p)
	}
}

func (s *Server) handleMatchInvite(ctx context.Context, p *Player, r *packet.Reader) {
	userID, err := r.ReadInt32()
	if err != nil {
		return
	}
	m := matchOf(p, "invite")
	if m == nil {
		return
	}

	target := s.roster.ByID(userID)
	if target == nil {
		slog.Warn("match invite to offline player", "player", p.Name, "target", userID)
		return
	}
	if target.Bot {
		return
	}
	m.Invite(p, target)
}
