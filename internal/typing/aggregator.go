// Package typing tracks who is typing in each channel and expires idle
// indicators.
package typing

import (
	"sort"
	"sync"
	"time"

	"github.com/nikhil/chatrelay/internal/logger"
	"github.com/nikhil/chatrelay/internal/models"
)

const DefaultTimeout = time.Second

// Emitter delivers a typing event to a channel, skipping the connection whose
// id equals exclude.
type Emitter interface {
	Broadcast(channelID int64, ev models.Event, exclude string)
}

type key struct {
	channelID int64
	username  string
}

type entry struct {
	timer  *time.Timer
	gen    uint64
	origin string
}

// Aggregator holds the per-channel sets of typing usernames. It knows nothing
// about connections; origin values are passed through to the Emitter as
// exclude keys.
type Aggregator struct {
	emit    Emitter
	timeout time.Duration
	log     *logger.Logger

	mu     sync.Mutex
	active map[key]*entry
	gen    uint64
	closed bool
}

func New(emit Emitter, timeout time.Duration, log *logger.Logger) *Aggregator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Aggregator{
		emit:    emit,
		timeout: timeout,
		log:     log,
		active:  make(map[key]*entry),
	}
}

// StartTyping marks username as typing in the channel. Only the first call
// broadcasts; every call re-arms the expiry timer.
func (a *Aggregator) StartTyping(channelID int64, username, origin string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	k := key{channelID: channelID, username: username}
	a.gen++
	gen := a.gen

	e, ok := a.active[k]
	if ok {
		e.timer.Stop()
		e.gen = gen
		e.origin = origin
	} else {
		e = &entry{gen: gen, origin: origin}
		a.active[k] = e
		a.emit.Broadcast(channelID, models.UserTyping{Username: username, IsTyping: true}, origin)
	}
	e.timer = time.AfterFunc(a.timeout, func() { a.expire(k, gen) })
}

// StopTyping clears the indicator and broadcasts only if it was set.
func (a *Aggregator) StopTyping(channelID int64, username, origin string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked(key{channelID: channelID, username: username}, origin)
}

func (a *Aggregator) stopLocked(k key, origin string) {
	e, ok := a.active[k]
	if !ok {
		return
	}
	e.timer.Stop()
	delete(a.active, k)
	a.emit.Broadcast(k.channelID, models.UserTyping{Username: k.username, IsTyping: false}, origin)
}

// expire runs on the timer goroutine. A newer start or an explicit stop
// leaves the entry gone or with a different generation, and then it does
// nothing.
func (a *Aggregator) expire(k key, gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, ok := a.active[k]
	if !ok || e.gen != gen {
		return
	}
	a.log.WithChannel(k.channelID).Debug("typing expired", "username", k.username)
	a.stopLocked(k, e.origin)
}

// Typing returns the sorted usernames currently typing in a channel.
func (a *Aggregator) Typing(channelID int64) []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	var names []string
	for k := range a.active {
		if k.channelID == channelID {
			names = append(names, k.username)
		}
	}
	sort.Strings(names)
	return names
}

// Close cancels every pending timer without broadcasting. Later calls are
// ignored.
func (a *Aggregator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for k, e := range a.active {
		e.timer.Stop()
		delete(a.active, k)
	}
	a.closed = true
}
