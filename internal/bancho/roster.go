package bancho

import (
	"sync"

	"github.com/FireRedz/gulag/internal/constants"
)

// Roster is the set of online players, indexed by user id, case-folded
// name and session token. All three views stay consistent under one lock.
type Roster struct {
	mu      sync.RWMutex
	byID    map[int32]*Player
	byName  map[string]*Player
	byToken map[string]*Player
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{
		byID:    make(map[int32]*Player),
		byName:  make(map[string]*Player),
		byToken: make(map[string]*Player),
	}
}

// Add registers p under all three keys.
func (r *Roster) Add(p *Player) {
	r.mu.Lock()
	r.byID[p.ID] = p
	r.byName[p.SafeName] = p
	r.byToken[p.Token] = p
	r.mu.Unlock()
}

// Remove unregisters p.
func (r *Roster) Remove(p *Player) {
	r.mu.Lock()
	delete(r.byID, p.ID)
	delete(r.byName, p.SafeName)
	delete(r.byToken, p.Token)
	r.mu.Unlock()
}

// RevokeToken drops only the token mapping, so in-flight requests with
// the old token stop resolving while the logout still runs.
func (r *Roster) RevokeToken(token string) {
	r.mu.Lock()
	delete(r.byToken, token)
	r.mu.Unlock()
}

// ByID returns the online player with the given user id, or nil.
func (r *Roster) ByID(id int32) *Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

// ByName returns the online player with the given name, matched
// case-insensitively, or nil.
func (r *Roster) ByName(name string) *Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[SafeName(name)]
}

// ByToken returns the session bound to token, or nil.
func (r *Roster) ByToken(token string) *Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byToken[token]
}

// Len returns the number of online players.
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// All returns a snapshot of every online player.
func (r *Roster) All() []*Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Player, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out
}

// Staff returns the online players holding any staff privilege.
func (r *Roster) Staff() []*Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Player
	for _, p := range r.byID {
		if p.Priv&constants.PrivStaff != 0 {
			out = append(out, p)
		}
	}
	return out
}

// Enqueue fans data out to every online player except those in exclude.
func (r *Roster) Enqueue(data []byte, exclude ...*Player) {
	r.mu.RLock()
	defer r.mu.RUnlock()

outer:
	for _, p := range r.byID {
		for _, ex := range exclude {
			if p == ex {
				continue outer
			}
		}
		p.Enqueue(data)
	}
}
