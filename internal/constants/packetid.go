package constants

// Bancho packet IDs, shared between client and server directions.
// IDs marked unused by the client are omitted.

// Client → server.
const (
	ClientChangeAction        uint16 = 0
	ClientSendPublicMessage   uint16 = 1
	ClientLogout              uint16 = 2
	ClientRequestStatusUpdate uint16 = 3
	ClientPing                uint16 = 4
	ClientStartSpectating     uint16 = 16
	ClientStopSpectating      uint16 = 17
	ClientSpectateFrames      uint16 = 18
	ClientCantSpectate        uint16 = 21
	ClientSendPrivateMessage  uint16 = 25
	ClientPartLobby           uint16 = 29
	ClientJoinLobby           uint16 = 30
	ClientCreateMatch         uint16 = 31
	ClientJoinMatch           uint16 = 32
	ClientPartMatch           uint16 = 33
	ClientMatchChangeSlot     uint16 = 38
	ClientMatchReady          uint16 = 39
	ClientMatchLock           uint16 = 40
	ClientMatchChangeSettings uint16 = 41
	ClientMatchStart          uint16 = 44
	ClientMatchScoreUpdate    uint16 = 48
	ClientMatchComplete       uint16 = 49
	ClientMatchChangeMods     uint16 = 51
	ClientMatchLoadComplete   uint16 = 52
	ClientMatchNoBeatmap      uint16 = 54
	ClientMatchNotReady       uint16 = 55
	ClientMatchFailed         uint16 = 56
	ClientMatchHasBeatmap     uint16 = 59
	ClientMatchSkipRequest    uint16 = 60
	ClientChannelJoin         uint16 = 63
	ClientBeatmapInfoRequest  uint16 = 68
	ClientMatchTransferHost   uint16 = 70
	ClientFriendAdd           uint16 = 73
	ClientFriendRemove        uint16 = 74
	ClientMatchChangeTeam     uint16 = 77
	ClientChannelPart         uint16 = 78
	ClientReceiveUpdates      uint16 = 79
	ClientSetAwayMessage      uint16 = 82
	ClientUserStatsRequest    uint16 = 85
	ClientMatchInvite         uint16 = 87
	ClientMatchChangePassword uint16 = 90
	ClientUserPresenceRequest uint16 = 97
	ClientTogglePrivatePM     uint16 = 99
)

// Server → client.
const (
	ServerUserID                uint16 = 5
	ServerSendMessage           uint16 = 7
	ServerPong                  uint16 = 8
	ServerUserStats             uint16 = 11
	ServerUserLogout            uint16 = 12
	ServerSpectatorJoined       uint16 = 13
	ServerSpectatorLeft         uint16 = 14
	ServerSpectateFrames        uint16 = 15
	ServerVersionUpdate         uint16 = 19
	ServerSpectatorCantSpectate uint16 = 22
	ServerGetAttention          uint16 = 23
	ServerNotification          uint16 = 24
	ServerUpdateMatch           uint16 = 26
	ServerNewMatch              uint16 = 27
	ServerDisposeMatch          uint16 = 28
	ServerMatchJoinSuccess      uint16 = 36
	ServerMatchJoinFail         uint16 = 37
	ServerFellowSpectatorJoined uint16 = 42
	ServerFellowSpectatorLeft   uint16 = 43
	ServerAllPlayersLoaded      uint16 = 45
	ServerMatchStart            uint16 = 46
	ServerMatchScoreUpdate      uint16 = 48
	ServerMatchTransferHost     uint16 = 50
	ServerMatchAllPlayersLoaded uint16 = 53
	ServerMatchPlayerFailed     uint16 = 57
	ServerMatchComplete         uint16 = 58
	ServerMatchSkip             uint16 = 61
	ServerChannelJoinSuccess    uint16 = 64
	ServerChannelInfo           uint16 = 65
	ServerChannelKicked         uint16 = 66
	ServerChannelAutoJoin       uint16 = 67
	ServerBanchoPrivileges      uint16 = 71
	ServerFriendsList           uint16 = 72
	ServerProtocolVersion       uint16 = 75
	ServerMainMenuIcon          uint16 = 76
	ServerMatchPlayerSkipped    uint16 = 81
	ServerUserPresence          uint16 = 83
	ServerRestart               uint16 = 86
	ServerMatchInvite           uint16 = 88
	ServerChannelInfoEnd        uint16 = 89
	ServerMatchChangePassword   uint16 = 91
	ServerSilenceEnd            uint16 = 92
	ServerUserSilenced          uint16 = 94
	ServerUserPMBlocked         uint16 = 100
	ServerTargetIsSilenced      uint16 = 101
)
