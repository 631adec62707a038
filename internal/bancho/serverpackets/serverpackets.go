// Package serverpackets encodes every server→client bancho packet as a
// ready-to-queue frame. One function per packet id.
package serverpackets

import (
	"github.com/FireRedz/gulag/internal/constants"
	"github.com/FireRedz/gulag/internal/packet"
)

// UserID replies to a login attempt. Negative values are sentinels:
// -1 invalid credentials, -3 banned.
func UserID(id int32) []byte {
	w := packet.NewWriter()
	w.WriteInt32(id)
	return w.Frame(constants.ServerUserID)
}

// SendMessage carries a chat message to a client.
func SendMessage(m packet.Message) []byte {
	w := packet.NewWriter()
	w.WriteMessage(m)
	return w.Frame(constants.ServerSendMessage)
}

// Pong is an empty keepalive reply.
func Pong() []byte {
	return packet.NewWriter().Frame(constants.ServerPong)
}

// UserStatsData is the panel payload of UserStats.
type UserStatsData struct {
	ID          int32
	Action      uint8
	InfoText    string
	MapMD5      string
	Mods        uint32
	GameMode    uint8
	MapID       int32
	RankedScore int64
	Accuracy    float32
	Plays       int32
	TotalScore  int64
	Rank        int32
	PP          int16
}

// UserStats sends a player's live status and stats panel.
func UserStats(d UserStatsData) []byte {
	w := packet.NewWriter()
	w.WriteInt32(d.ID)
	w.WriteUint8(d.Action)
	w.WriteString(d.InfoText)
	w.WriteString(d.MapMD5)
	w.WriteUint32(d.Mods)
	w.WriteUint8(d.GameMode)
	w.WriteInt32(d.MapID)
	w.WriteInt64(d.RankedScore)
	w.WriteFloat32(d.Accuracy)
	w.WriteInt32(d.Plays)
	w.WriteInt64(d.TotalScore)
	w.WriteInt32(d.Rank)
	w.WriteUint16(uint16(d.PP))
	return w.Frame(constants.ServerUserStats)
}

// Logout announces a player leaving to the rest of the server.
func Logout(userID int32) []byte {
	w := packet.NewWriter()
	w.WriteInt32(userID)
	w.WriteUint8(0)
	return w.Frame(constants.ServerUserLogout)
}

// SpectatorJoined tells a host one of their spectators arrived.
func SpectatorJoined(id int32) []byte {
	w := packet.NewWriter()
	w.WriteInt32(id)
	return w.Frame(constants.ServerSpectatorJoined)
}

// SpectatorLeft tells a host one of their spectators left.
func SpectatorLeft(id int32) []byte {
	w := packet.NewWriter()
	w.WriteInt32(id)
	return w.Frame(constants.ServerSpectatorLeft)
}

// SpectateFrames relays a host's replay frames verbatim.
func SpectateFrames(data []byte) []byte {
	w := packet.NewWriter()
	w.WriteRaw(data)
	return w.Frame(constants.ServerSpectateFrames)
}

// SpectatorCantSpectate tells a spectate group one member lacks the map.
func SpectatorCantSpectate(id int32) []byte {
	w := packet.NewWriter()
	w.WriteInt32(id)
	return w.Frame(constants.ServerSpectatorCantSpectate)
}

// Notification pops a toast in the client.
func Notification(msg string) []byte {
	w := packet.NewWriter()
	w.WriteString(msg)
	return w.Frame(constants.ServerNotification)
}

// UpdateMatch pushes the full match snapshot.
func UpdateMatch(m packet.MatchData) []byte {
	w := packet.NewWriter()
	w.WriteMatch(m)
	return w.Frame(constants.ServerUpdateMatch)
}

// NewMatch announces a freshly created match to lobby viewers.
func NewMatch(m packet.MatchData) []byte {
	w := packet.NewWriter()
	w.WriteMatch(m)
	return w.Frame(constants.ServerNewMatch)
}

// DisposeMatch announces a disbanded match to lobby viewers.
func DisposeMatch(id int32) []byte {
	w := packet.NewWriter()
	w.WriteInt32(id)
	return w.Frame(constants.ServerDisposeMatch)
}

// MatchJoinSuccess confirms a join with the joined match's snapshot.
func MatchJoinSuccess(m packet.MatchData) []byte {
	w := packet.NewWriter()
	w.WriteMatch(m)
	return w.Frame(constants.ServerMatchJoinSuccess)
}

// MatchJoinFail refuses a join attempt.
func MatchJoinFail() []byte {
	return packet.NewWriter().Frame(constants.ServerMatchJoinFail)
}

// FellowSpectatorJoined tells spectators about each other.
func FellowSpectatorJoined(id int32) []byte {
	w := packet.NewWriter()
	w.WriteInt32(id)
	return w.Frame(constants.ServerFellowSpectatorJoined)
}

// FellowSpectatorLeft mirrors FellowSpectatorJoined.
func FellowSpectatorLeft(id int32) []byte {
	w := packet.NewWriter()
	w.WriteInt32(id)
	return w.Frame(constants.ServerFellowSpectatorLeft)
}

// MatchStart moves the whole match into play.
func MatchStart(m packet.MatchData) []byte {
	w := packet.NewWriter()
	w.WriteMatch(m)
	return w.Frame(constants.ServerMatchStart)
}

// MatchScoreFrame relays a (slot-rewritten) score frame to the match.
func MatchScoreFrame(frame []byte) []byte {
	w := packet.NewWriter()
	w.WriteRaw(frame)
	return w.Frame(constants.ServerMatchScoreUpdate)
}

// MatchTransferHost tells the new host they now hold the match.
func MatchTransferHost() []byte {
	return packet.NewWriter().Frame(constants.ServerMatchTransferHost)
}

// MatchAllPlayersLoaded signals everyone finished loading the map.
func MatchAllPlayersLoaded() []byte {
	return packet.NewWriter().Frame(constants.ServerMatchAllPlayersLoaded)
}

// MatchPlayerFailed announces a player failing mid-play by slot id.
func MatchPlayerFailed(slotID int32) []byte {
	w := packet.NewWriter()
	w.WriteInt32(slotID)
	return w.Frame(constants.ServerMatchPlayerFailed)
}

// MatchComplete signals the whole match finished the map.
func MatchComplete() []byte {
	return packet.NewWriter().Frame(constants.ServerMatchComplete)
}

// MatchSkip signals the intro skip after every player requested it.
func MatchSkip() []byte {
	return packet.NewWriter().Frame(constants.ServerMatchSkip)
}

// ChannelJoin confirms the client joined a channel.
func ChannelJoin(name string) []byte {
	w := packet.NewWriter()
	w.WriteString(name)
	return w.Frame(constants.ServerChannelJoinSuccess)
}

// ChannelInfo advertises a channel and its member count.
func ChannelInfo(name, topic string, count uint16) []byte {
	w := packet.NewWriter()
	w.WriteChannel(packet.Channel{Name: name, Topic: topic, Count: count})
	return w.Frame(constants.ServerChannelInfo)
}

// ChannelKick removes the client from a channel.
func ChannelKick(name string) []byte {
	w := packet.NewWriter()
	w.WriteString(name)
	return w.Frame(constants.ServerChannelKicked)
}

// ChannelInfoEnd terminates the login-time channel listing.
func ChannelInfoEnd() []byte {
	return packet.NewWriter().Frame(constants.ServerChannelInfoEnd)
}

// BanchoPrivileges sends the client-facing privilege bitset.
func BanchoPrivileges(priv constants.BanchoPrivileges) []byte {
	w := packet.NewWriter()
	w.WriteInt32(int32(priv))
	return w.Frame(constants.ServerBanchoPrivileges)
}

// FriendsList sends the player's friend ids.
func FriendsList(friends []int32) []byte {
	w := packet.NewWriter()
	w.WriteI32List(friends)
	return w.Frame(constants.ServerFriendsList)
}

// ProtocolVersion pins the bancho protocol revision.
func ProtocolVersion(ver int32) []byte {
	w := packet.NewWriter()
	w.WriteInt32(ver)
	return w.Frame(constants.ServerProtocolVersion)
}

// MainMenuIcon sets the in-game menu banner ("imageurl|clickurl").
func MainMenuIcon(icon string) []byte {
	w := packet.NewWriter()
	w.WriteString(icon)
	return w.Frame(constants.ServerMainMenuIcon)
}

// MatchPlayerSkipped announces one player's intro skip request.
func MatchPlayerSkipped(userID int32) []byte {
	w := packet.NewWriter()
	w.WriteInt32(userID)
	return w.Frame(constants.ServerMatchPlayerSkipped)
}

// UserPresenceData is the identity payload of UserPresence.
type UserPresenceData struct {
	ID          int32
	Name        string
	UTCOffset   uint8
	CountryCode uint8
	BanchoPriv  constants.BanchoPrivileges
	GameMode    uint8
	Longitude   float32
	Latitude    float32
	Rank        int32
}

// UserPresence sends a player's identity card.
func UserPresence(d UserPresenceData) []byte {
	w := packet.NewWriter()
	w.WriteInt32(d.ID)
	w.WriteString(d.Name)
	w.WriteUint8(d.UTCOffset + 24)
	w.WriteUint8(d.CountryCode)
	w.WriteUint8(uint8(d.BanchoPriv) | d.GameMode<<5)
	w.WriteFloat32(d.Longitude)
	w.WriteFloat32(d.Latitude)
	w.WriteInt32(d.Rank)
	return w.Frame(constants.ServerUserPresence)
}

// Restart tells the client to reconnect after ms milliseconds.
func Restart(ms int32) []byte {
	w := packet.NewWriter()
	w.WriteInt32(ms)
	return w.Frame(constants.ServerRestart)
}

// MatchChangePassword pushes the new match password to members.
func MatchChangePassword(passwd string) []byte {
	w := packet.NewWriter()
	w.WriteString(passwd)
	return w.Frame(constants.ServerMatchChangePassword)
}

// SilenceEnd tells the client how many seconds of silence remain.
func SilenceEnd(delta int32) []byte {
	w := packet.NewWriter()
	w.WriteInt32(delta)
	return w.Frame(constants.ServerSilenceEnd)
}

// UserSilenced announces a silence to the server.
func UserSilenced(userID int32) []byte {
	w := packet.NewWriter()
	w.WriteInt32(userID)
	return w.Frame(constants.ServerUserSilenced)
}

// UserPMBlocked tells the sender their PM was blocked by the target.
func UserPMBlocked(target string) []byte {
	w := packet.NewWriter()
	w.WriteMessage(packet.Message{Target: target})
	return w.Frame(constants.ServerUserPMBlocked)
}

// TargetIsSilenced tells the sender the PM target is silenced.
func TargetIsSilenced(target string) []byte {
	w := packet.NewWriter()
	w.WriteMessage(packet.Message{Target: target})
	return w.Frame(constants.ServerTargetIsSilenced)
}
