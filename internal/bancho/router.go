package bancho

import (
	"context"
	"errors"
	"log/slog"

	"github.com/FireRedz/gulag/internal/bancho/serverpackets"
	"github.com/FireRedz/gulag/internal/constants"
	"github.com/FireRedz/gulag/internal/metrics"
	"github.com/FireRedz/gulag/internal/packet"
)

// registerHandlers builds the static packet id → handler table.
func (s *Server) registerHandlers() {
	s.handlers = map[uint16]handlerFunc{
		constants.ClientChangeAction:        s.handleChangeAction,
		constants.ClientSendPublicMessage:   s.handlePublicMessage,
		constants.ClientLogout:              s.handleLogout,
		constants.ClientRequestStatusUpdate: s.handleRequestStatusUpdate,
		constants.ClientPing:                s.handlePing,
		constants.ClientStartSpectating:     s.handleStartSpectating,
		constants.ClientStopSpectating:      s.handleStopSpectating,
		constants.ClientSpectateFrames:      s.handleSpectateFrames,
		constants.ClientCantSpectate:        s.handleCantSpectate,
		constants.ClientSendPrivateMessage:  s.handlePrivateMessage,
		constants.ClientPartLobby:           s.handlePartLobby,
		constants.ClientJoinLobby:           s.handleJoinLobby,
		constants.ClientCreateMatch:         s.handleCreateMatch,
		constants.ClientJoinMatch:           s.handleJoinMatch,
		constants.ClientPartMatch:           s.handlePartMatch,
		constants.ClientMatchChangeSlot:     s.handleMatchChangeSlot,
		constants.ClientMatchReady:          s.handleMatchReady,
		constants.ClientMatchLock:           s.handleMatchLock,
		constants.ClientMatchChangeSettings: s.handleMatchChangeSettings,
		constants.ClientMatchStart:          s.handleMatchStart,
		constants.ClientMatchScoreUpdate:    s.handleMatchScoreUpdate,
		constants.ClientMatchComplete:       s.handleMatchComplete,
		constants.ClientMatchChangeMods:     s.handleMatchChangeMods,
		constants.ClientMatchLoadComplete:   s.handleMatchLoadComplete,
		constants.ClientMatchNoBeatmap:      s.handleMatchNoBeatmap,
		constants.ClientMatchNotReady:       s.handleMatchNotReady,
		constants.ClientMatchFailed:         s.handleMatchFailed,
		constants.ClientMatchHasBeatmap:     s.handleMatchHasBeatmap,
		constants.ClientMatchSkipRequest:    s.handleMatchSkipRequest,
		constants.ClientChannelJoin:         s.handleChannelJoin,
		constants.ClientBeatmapInfoRequest:  s.handleBeatmapInfoRequest,
		constants.ClientMatchTransferHost:   s.handleMatchTransferHost,
		constants.ClientFriendAdd:           s.handleFriendAdd,
		constants.ClientFriendRemove:        s.handleFriendRemove,
		constants.ClientMatchChangeTeam:     s.handleMatchChangeTeam,
		constants.ClientChannelPart:         s.handleChannelPart,
		constants.ClientReceiveUpdates:      s.handleReceiveUpdates,
		constants.ClientSetAwayMessage:      s.handleSetAwayMessage,
		constants.ClientUserStatsRequest:    s.handleUserStatsRequest,
		constants.ClientMatchInvite:         s.handleMatchInvite,
		constants.ClientMatchChangePassword: s.handleMatchChangePassword,
		constants.ClientUserPresenceRequest: s.handleUserPresenceRequest,
		constants.ClientTogglePrivatePM:     s.handleTogglePrivatePM,
	}
}

// HandleRequest runs one session request: resolve the token, dispatch
// every frame in the body, drain the response. A token that no longer
// resolves gets a restart order so the client re-logs.
func (s *Server) HandleRequest(ctx context.Context, token string, body []byte) []byte {
	p := s.roster.ByToken(token)
	if p == nil {
		slog.Debug("unknown session token", "token", token)
		return append(
			serverpackets.Notification("Server has restarted."),
			serverpackets.Restart(0)...,
		)
	}
	p.Touch()

	var handled []uint16

	fr := packet.NewFrameReader(body)
frames:
	for fr.Next() {
		id := fr.ID()

		// The client occasionally repeats a packet within one request;
		// only the first of each id is processed.
		for _, seen := range handled {
			if seen == id {
				continue frames
			}
		}
		handled = append(handled, id)

		h, ok := s.handlers[id]
		if !ok {
			slog.Debug("unhandled packet", "player", p.Name, "id", id)
			continue
		}
		h(ctx, p, fr.Payload())
		metrics.PacketsHandled.Inc()
	}
	if err := fr.Err(); err != nil {
		if errors.Is(err, packet.ErrMalformed) {
			slog.Warn("malformed request body", "player", p.Name, "err", err)
		} else {
			slog.Error("request body read", "player", p.Name, "err", err)
		}
	}

	return p.Drain()
}
