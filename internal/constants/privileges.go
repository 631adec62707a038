package constants

// Privileges is the server-side privilege bitset stored in the users table.
// A user without PrivNormal is banned.
type Privileges uint32

const (
	PrivNormal      Privileges = 1 << 0
	PrivWhitelisted Privileges = 1 << 1
	PrivSupporter   Privileges = 1 << 4
	PrivPremium     Privileges = 1 << 5
	PrivAlumni      Privileges = 1 << 7
	PrivTournament  Privileges = 1 << 10
	PrivNominator   Privileges = 1 << 11
	PrivMod         Privileges = 1 << 12
	PrivAdmin       Privileges = 1 << 13
	PrivDangerous   Privileges = 1 << 14

	PrivStaff = PrivMod | PrivAdmin | PrivDangerous
)

// BanchoPrivileges is the client-facing privilege bitset sent at login.
type BanchoPrivileges uint32

const (
	BanchoPrivPlayer     BanchoPrivileges = 1 << 0
	BanchoPrivModerator  BanchoPrivileges = 1 << 1
	BanchoPrivSupporter  BanchoPrivileges = 1 << 2
	BanchoPrivOwner      BanchoPrivileges = 1 << 3
	BanchoPrivDeveloper  BanchoPrivileges = 1 << 4
	BanchoPrivTournament BanchoPrivileges = 1 << 5
)

// ToBancho maps server privileges to the client-facing bitset.
// Every unbanned player gets supporter, which unlocks osu!direct and
// multiplayer on cutting-edge builds.
func (p Privileges) ToBancho() BanchoPrivileges {
	var b BanchoPrivileges
	if p&PrivNormal != 0 {
		b |= BanchoPrivPlayer | BanchoPrivSupporter
	}
	if p&PrivMod != 0 {
		b |= BanchoPrivModerator
	}
	if p&PrivAdmin != 0 {
		b |= BanchoPrivDeveloper
	}
	if p&PrivDangerous != 0 {
		b |= BanchoPrivOwner
	}
	return b
}
