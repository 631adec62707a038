package bancho

import (
	"sync"

	"github.com/FireRedz/gulag/internal/bancho/serverpackets"
	"github.com/FireRedz/gulag/internal/constants"
	"github.com/FireRedz/gulag/internal/packet"
)

// Channel is a chat room. Static channels come from the database at
// startup; instance channels (#spec_N, #multi_N) are created and torn
// down with the session objects they belong to.
type Channel struct {
	Name      string
	Topic     string
	ReadPriv  constants.Privileges
	WritePriv constants.Privileges
	AutoJoin  bool
	Instance  bool

	mu      sync.RWMutex
	members map[*Player]struct{}
}

// NewChannel creates an empty static channel.
func NewChannel(name, topic string, readPriv, writePriv constants.Privileges, autoJoin bool) *Channel {
	return &Channel{
		Name:      name,
		Topic:     topic,
		ReadPriv:  readPriv,
		WritePriv: writePriv,
		AutoJoin:  autoJoin,
		members:   make(map[*Player]struct{}),
	}
}

// CanRead reports whether priv clears the channel's read gate.
func (c *Channel) CanRead(priv constants.Privileges) bool {
	return c.ReadPriv == 0 || priv&c.ReadPriv != 0
}

// CanWrite reports whether priv clears the channel's write gate.
func (c *Channel) CanWrite(priv constants.Privileges) bool {
	return c.WritePriv == 0 || priv&c.WritePriv != 0
}

// Contains reports whether p is a member.
func (c *Channel) Contains(p *Player) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.members[p]
	return ok
}

// MemberCount returns the number of members.
func (c *Channel) MemberCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.members)
}

// Members returns a snapshot of the member set.
func (c *Channel) Members() []*Player {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Player, 0, len(c.members))
	for p := range c.members {
		out = append(out, p)
	}
	return out
}

func (c *Channel) addMember(p *Player) {
	c.mu.Lock()
	c.members[p] = struct{}{}
	c.mu.Unlock()
}

func (c *Channel) removeMember(p *Player) {
	c.mu.Lock()
	delete(c.members, p)
	c.mu.Unlock()
}

// Enqueue fans data out to every member except those in exclude.
func (c *Channel) Enqueue(data []byte, exclude ...*Player) {
	c.mu.RLock()
	defer c.mu.RUnlock()

outer:
	for p := range c.members {
		for _, ex := range exclude {
			if p == ex {
				continue outer
			}
		}
		p.Enqueue(data)
	}
}

// Send delivers a chat message from sender to every other member.
func (c *Channel) Send(sender *Player, text string) {
	c.Enqueue(serverpackets.SendMessage(packet.Message{
		Sender:   sender.Name,
		Text:     text,
		Target:   c.Name,
		SenderID: sender.ID,
	}), sender)
}

// SendSelective delivers a message from sender to the given members only.
func (c *Channel) SendSelective(sender *Player, text string, targets []*Player) {
	frame := serverpackets.SendMessage(packet.Message{
		Sender:   sender.Name,
		Text:     text,
		Target:   c.Name,
		SenderID: sender.ID,
	})
	for _, t := range targets {
		if t != sender && c.Contains(t) {
			t.Enqueue(frame)
		}
	}
}

// ChannelRegistry is the name-keyed set of live channels.
type ChannelRegistry struct {
	mu       sync.RWMutex
	channels map[string]*Channel
}

// NewChannelRegistry creates an empty registry.
func NewChannelRegistry() *ChannelRegistry {
	return &ChannelRegistry{channels: make(map[string]*Channel)}
}

// Get returns the channel named name, or nil.
func (cr *ChannelRegistry) Get(name string) *Channel {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return cr.channels[name]
}

// Add registers c under its name.
func (cr *ChannelRegistry) Add(c *Channel) {
	cr.mu.Lock()
	cr.channels[c.Name] = c
	cr.mu.Unlock()
}

// Remove unregisters the channel named name.
func (cr *ChannelRegistry) Remove(name string) {
	cr.mu.Lock()
	delete(cr.channels, name)
	cr.mu.Unlock()
}

// All returns a snapshot of every live channel.
func (cr *ChannelRegistry) All() []*Channel {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	out := make([]*Channel, 0, len(cr.channels))
	for _, c := range cr.channels {
		out = append(out, c)
	}
	return out
}
