package constants

// Mods is the osu! game modifier bitset as sent over the wire.
type Mods uint32

const (
	ModNoMod       Mods = 0
	ModNoFail      Mods = 1 << 0
	ModEasy        Mods = 1 << 1
	ModTouchscreen Mods = 1 << 2
	ModHidden      Mods = 1 << 3
	ModHardRock    Mods = 1 << 4
	ModSuddenDeath Mods = 1 << 5
	ModDoubleTime  Mods = 1 << 6
	ModRelax       Mods = 1 << 7
	ModHalfTime    Mods = 1 << 8
	ModNightcore   Mods = 1 << 9
	ModFlashlight  Mods = 1 << 10
	ModAutoplay    Mods = 1 << 11
	ModSpunOut     Mods = 1 << 12
	ModAutopilot   Mods = 1 << 13
	ModPerfect     Mods = 1 << 14
	ModScoreV2     Mods = 1 << 29

	// ModSpeedChanging is the subset of mods affecting playback rate.
	// In freemods matches only these stay under host control.
	ModSpeedChanging = ModDoubleTime | ModNightcore | ModHalfTime
)

// Readable returns the short mod acronym string ("HDDT" etc).
// Empty string for nomod.
func (m Mods) Readable() string {
	if m == 0 {
		return ""
	}

	var s []byte
	appendIf := func(flag Mods, acr string) {
		if m&flag != 0 {
			s = append(s, acr...)
		}
	}

	appendIf(ModNoFail, "NF")
	appendIf(ModEasy, "EZ")
	appendIf(ModTouchscreen, "TD")
	appendIf(ModHidden, "HD")
	appendIf(ModHardRock, "HR")
	if m&ModNightcore != 0 {
		s = append(s, "NC"...)
	} else if m&ModDoubleTime != 0 {
		s = append(s, "DT"...)
	}
	appendIf(ModRelax, "RX")
	appendIf(ModHalfTime, "HT")
	appendIf(ModFlashlight, "FL")
	appendIf(ModSpunOut, "SO")
	appendIf(ModScoreV2, "V2")
	return string(s)
}
