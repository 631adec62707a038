package packet

import "github.com/FireRedz/gulag/internal/constants"

// Message is the composite chat message type.
type Message struct {
	Sender   string
	Text     string
	Target   string
	SenderID int32
}

// ReadMessage reads a chat message (three strings and a sender id).
func (r *Reader) ReadMessage() (Message, error) {
	var m Message
	var err error

	if m.Sender, err = r.ReadString(); err != nil {
		return m, err
	}
	if m.Text, err = r.ReadString(); err != nil {
		return m, err
	}
	if m.Target, err = r.ReadString(); err != nil {
		return m, err
	}
	m.SenderID, err = r.ReadInt32()
	return m, err
}

// WriteMessage writes a chat message.
func (w *Writer) WriteMessage(m Message) {
	w.WriteString(m.Sender)
	w.WriteString(m.Text)
	w.WriteString(m.Target)
	w.WriteInt32(m.SenderID)
}

// Channel is the composite channel-info type.
type Channel struct {
	Name  string
	Topic string
	Count uint16
}

// WriteChannel writes channel info (two strings and a member count).
func (w *Writer) WriteChannel(c Channel) {
	w.WriteString(c.Name)
	w.WriteString(c.Topic)
	w.WriteUint16(c.Count)
}

// MatchData is the wire form of a multiplayer match. Slot players are
// carried as user ids; the session layer resolves them against the roster.
type MatchData struct {
	ID         uint16
	InProgress bool
	Type       uint8
	Mods       uint32
	Name       string
	Password   string

	MapName string
	MapID   int32
	MapMD5  string

	SlotStatus [constants.MatchSlots]uint8
	SlotTeams  [constants.MatchSlots]uint8
	SlotIDs    [constants.MatchSlots]int32

	HostID      int32
	GameMode    uint8
	ScoringType uint8
	TeamType    uint8
	Freemods    bool
	SlotMods    [constants.MatchSlots]uint32
	Seed        int32
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// ReadMatch reads a serialized match.
func (r *Reader) ReadMatch() (MatchData, error) {
	var m MatchData
	var err error

	if m.ID, err = r.ReadUint16(); err != nil {
		return m, err
	}

	inProgress, err := r.ReadByte()
	if err != nil {
		return m, err
	}
	m.InProgress = inProgress != 0

	if m.Type, err = r.ReadByte(); err != nil {
		return m, err
	}
	if m.Mods, err = r.ReadUint32(); err != nil {
		return m, err
	}
	if m.Name, err = r.ReadString(); err != nil {
		return m, err
	}
	if m.Password, err = r.ReadString(); err != nil {
		return m, err
	}
	if m.MapName, err = r.ReadString(); err != nil {
		return m, err
	}
	if m.MapID, err = r.ReadInt32(); err != nil {
		return m, err
	}
	if m.MapMD5, err = r.ReadString(); err != nil {
		return m, err
	}

	for i := range m.SlotStatus {
		if m.SlotStatus[i], err = r.ReadByte(); err != nil {
			return m, err
		}
	}
	for i := range m.SlotTeams {
		if m.SlotTeams[i], err = r.ReadByte(); err != nil {
			return m, err
		}
	}
	for i, status := range m.SlotStatus {
		if constants.SlotStatus(status)&constants.SlotHasPlayer == 0 {
			continue
		}
		if m.SlotIDs[i], err = r.ReadInt32(); err != nil {
			return m, err
		}
	}

	if m.HostID, err = r.ReadInt32(); err != nil {
		return m, err
	}
	if m.GameMode, err = r.ReadByte(); err != nil {
		return m, err
	}
	if m.ScoringType, err = r.ReadByte(); err != nil {
		return m, err
	}
	if m.TeamType, err = r.ReadByte(); err != nil {
		return m, err
	}

	freemods, err := r.ReadByte()
	if err != nil {
		return m, err
	}
	m.Freemods = freemods != 0

	if m.Freemods {
		for i := range m.SlotMods {
			if m.SlotMods[i], err = r.ReadUint32(); err != nil {
				return m, err
			}
		}
	}

	m.Seed, err = r.ReadInt32()
	return m, err
}

// WriteMatch writes a serialized match.
func (w *Writer) WriteMatch(m MatchData) {
	w.WriteUint16(m.ID)
	w.WriteUint8(boolByte(m.InProgress))
	w.WriteUint8(m.Type)
	w.WriteUint32(m.Mods)
	w.WriteString(m.Name)
	w.WriteString(m.Password)
	w.WriteString(m.MapName)
	w.WriteInt32(m.MapID)
	w.WriteString(m.MapMD5)

	for _, s := range m.SlotStatus {
		w.WriteUint8(s)
	}
	for _, t := range m.SlotTeams {
		w.WriteUint8(t)
	}
	for i, status := range m.SlotStatus {
		if constants.SlotStatus(status)&constants.SlotHasPlayer != 0 {
			w.WriteInt32(m.SlotIDs[i])
		}
	}

	w.WriteInt32(m.HostID)
	w.WriteUint8(m.GameMode)
	w.WriteUint8(m.ScoringType)
	w.WriteUint8(m.TeamType)
	w.WriteUint8(boolByte(m.Freemods))

	if m.Freemods {
		for _, mods := range m.SlotMods {
			w.WriteUint32(mods)
		}
	}

	w.WriteInt32(m.Seed)
}

// ScoreFrame layout constants. A frame is 29 bytes, or 37 with the two
// scorev2 portions; the selector is the score_v2 byte at offset 28, and
// the slot id the server rewrites sits at offset 4.
const (
	ScoreFrameBaseSize    = 29
	ScoreFrameV2Size      = 37
	ScoreFrameSlotOffset  = 4
	ScoreFrameV2FlagIndex = 28
)

// ScoreFrameSize returns the full size of the score frame starting at
// data[0], based on the scorev2 selector byte.
func ScoreFrameSize(data []byte) (int, error) {
	if len(data) < ScoreFrameBaseSize {
		return 0, ErrMalformed
	}
	if data[ScoreFrameV2FlagIndex] != 0 {
		return ScoreFrameV2Size, nil
	}
	return ScoreFrameBaseSize, nil
}

// ScoreFrame is a live play score snapshot relayed during matches and
// spectating sessions.
type ScoreFrame struct {
	Time         int32
	ID           uint8
	Num300       uint16
	Num100       uint16
	Num50        uint16
	NumGeki      uint16
	NumKatu      uint16
	NumMiss      uint16
	TotalScore   int32
	CurrentCombo uint16
	MaxCombo     uint16
	Perfect      bool
	CurrentHP    uint8
	TagByte      uint8

	ScoreV2      bool
	ComboPortion float32
	BonusPortion float32
}

// ReadScoreFrame reads a score frame.
func (r *Reader) ReadScoreFrame() (ScoreFrame, error) {
	var s ScoreFrame
	var err error

	if s.Time, err = r.ReadInt32(); err != nil {
		return s, err
	}
	if s.ID, err = r.ReadByte(); err != nil {
		return s, err
	}
	if s.Num300, err = r.ReadUint16(); err != nil {
		return s, err
	}
	if s.Num100, err = r.ReadUint16(); err != nil {
		return s, err
	}
	if s.Num50, err = r.ReadUint16(); err != nil {
		return s, err
	}
	if s.NumGeki, err = r.ReadUint16(); err != nil {
		return s, err
	}
	if s.NumKatu, err = r.ReadUint16(); err != nil {
		return s, err
	}
	if s.NumMiss, err = r.ReadUint16(); err != nil {
		return s, err
	}
	if s.TotalScore, err = r.ReadInt32(); err != nil {
		return s, err
	}
	if s.CurrentCombo, err = r.ReadUint16(); err != nil {
		return s, err
	}
	if s.MaxCombo, err = r.ReadUint16(); err != nil {
		return s, err
	}

	perfect, err := r.ReadByte()
	if err != nil {
		return s, err
	}
	s.Perfect = perfect != 0

	if s.CurrentHP, err = r.ReadByte(); err != nil {
		return s, err
	}
	if s.TagByte, err = r.ReadByte(); err != nil {
		return s, err
	}

	scoreV2, err := r.ReadByte()
	if err != nil {
		return s, err
	}
	s.ScoreV2 = scoreV2 != 0

	if s.ScoreV2 {
		if s.ComboPortion, err = r.ReadFloat32(); err != nil {
			return s, err
		}
		if s.BonusPortion, err = r.ReadFloat32(); err != nil {
			return s, err
		}
	}
	return s, nil
}

// WriteScoreFrame writes a score frame.
func (w *Writer) WriteScoreFrame(s ScoreFrame) {
	w.WriteInt32(s.Time)
	w.WriteUint8(s.ID)
	w.WriteUint16(s.Num300)
	w.WriteUint16(s.Num100)
	w.WriteUint16(s.Num50)
	w.WriteUint16(s.NumGeki)
	w.WriteUint16(s.NumKatu)
	w.WriteUint16(s.NumMiss)
	w.WriteInt32(s.TotalScore)
	w.WriteUint16(s.CurrentCombo)
	w.WriteUint16(s.MaxCombo)
	w.WriteUint8(boolByte(s.Perfect))
	w.WriteUint8(s.CurrentHP)
	w.WriteUint8(s.TagByte)
	w.WriteUint8(boolByte(s.ScoreV2))
	if s.ScoreV2 {
		w.WriteFloat32(s.ComboPortion)
		w.WriteFloat32(s.BonusPortion)
	}
}
