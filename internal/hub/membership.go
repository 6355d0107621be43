package hub

import (
	"context"
	"sort"
	"sync"
)

// Peer is one registered connection handle.
type Peer interface {
	ID() string
	// Push enqueues an encoded frame without blocking. evicted reports that
	// the oldest pending frame was dropped to make room.
	Push(frame []byte) (evicted bool, err error)
	// Close shuts the connection down and returns once it has finished
	// flushing, or with ctx's error if ctx ends first.
	Close(ctx context.Context) error
}

// Membership tracks which channels every registered connection has joined,
// in both directions. Lock order is connection entry, then channel set.
type Membership struct {
	connsMu sync.RWMutex
	conns   map[string]*connEntry

	chansMu  sync.RWMutex
	channels map[int64]*memberSet
}

type connEntry struct {
	peer Peer

	mu      sync.Mutex
	joined  map[int64]struct{}
	dropped bool
}

type memberSet struct {
	mu    sync.RWMutex
	peers map[string]Peer
}

func NewMembership() *Membership {
	return &Membership{
		conns:    make(map[string]*connEntry),
		channels: make(map[int64]*memberSet),
	}
}

// Add registers a connection. Only registered connections can join channels.
func (m *Membership) Add(p Peer) bool {
	m.connsMu.Lock()
	defer m.connsMu.Unlock()

	if _, ok := m.conns[p.ID()]; ok {
		return false
	}
	m.conns[p.ID()] = &connEntry{peer: p, joined: make(map[int64]struct{})}
	return true
}

func (m *Membership) entry(p Peer) *connEntry {
	m.connsMu.RLock()
	defer m.connsMu.RUnlock()
	return m.conns[p.ID()]
}

func (m *Membership) members(channelID int64, create bool) *memberSet {
	m.chansMu.RLock()
	set, ok := m.channels[channelID]
	m.chansMu.RUnlock()
	if ok || !create {
		return set
	}

	m.chansMu.Lock()
	defer m.chansMu.Unlock()
	if set, ok = m.channels[channelID]; !ok {
		set = &memberSet{peers: make(map[string]Peer)}
		m.channels[channelID] = set
	}
	return set
}

// Join adds the connection to a channel. It reports whether membership
// changed; joining twice, or joining after DropConnection, is a no-op.
func (m *Membership) Join(p Peer, channelID int64) bool {
	e := m.entry(p)
	if e == nil {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dropped {
		return false
	}
	if _, ok := e.joined[channelID]; ok {
		return false
	}

	set := m.members(channelID, true)
	set.mu.Lock()
	set.peers[p.ID()] = e.peer
	set.mu.Unlock()

	e.joined[channelID] = struct{}{}
	return true
}

// Leave removes the connection from a channel. Leaving a channel that was
// never joined is a no-op.
func (m *Membership) Leave(p Peer, channelID int64) bool {
	e := m.entry(p)
	if e == nil {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.joined[channelID]; !ok {
		return false
	}
	delete(e.joined, channelID)
	m.removeMember(channelID, p.ID())
	return true
}

// DropConnection unregisters the connection and removes it from every
// channel it had joined. It returns the channels that were left.
func (m *Membership) DropConnection(p Peer) []int64 {
	m.connsMu.Lock()
	e, ok := m.conns[p.ID()]
	delete(m.conns, p.ID())
	m.connsMu.Unlock()
	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.dropped = true
	left := make([]int64, 0, len(e.joined))
	for channelID := range e.joined {
		m.removeMember(channelID, p.ID())
		left = append(left, channelID)
	}
	e.joined = nil
	sort.Slice(left, func(i, j int) bool { return left[i] < left[j] })
	return left
}

func (m *Membership) removeMember(channelID int64, peerID string) {
	set := m.members(channelID, false)
	if set == nil {
		return
	}
	set.mu.Lock()
	delete(set.peers, peerID)
	set.mu.Unlock()
}

// MembersOf returns a snapshot of the connections joined to a channel.
func (m *Membership) MembersOf(channelID int64) []Peer {
	set := m.members(channelID, false)
	if set == nil {
		return nil
	}
	set.mu.RLock()
	defer set.mu.RUnlock()

	peers := make([]Peer, 0, len(set.peers))
	for _, p := range set.peers {
		peers = append(peers, p)
	}
	return peers
}

func (m *Membership) MemberCount(channelID int64) int {
	set := m.members(channelID, false)
	if set == nil {
		return 0
	}
	set.mu.RLock()
	defer set.mu.RUnlock()
	return len(set.peers)
}

// ChannelsOf returns the sorted channel ids a connection has joined.
func (m *Membership) ChannelsOf(p Peer) []int64 {
	e := m.entry(p)
	if e == nil {
		return nil
	}
	e.mu.Lock()
	ids := make([]int64, 0, len(e.joined))
	for channelID := range e.joined {
		ids = append(ids, channelID)
	}
	e.mu.Unlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Connections returns a snapshot of every registered connection.
func (m *Membership) Connections() []Peer {
	m.connsMu.RLock()
	defer m.connsMu.RUnlock()

	peers := make([]Peer, 0, len(m.conns))
	for _, e := range m.conns {
		peers = append(peers, e.peer)
	}
	return peers
}

func (m *Membership) ConnectionCount() int {
	m.connsMu.RLock()
	defer m.connsMu.RUnlock()
	return len(m.conns)
}
