package typing

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/chatrelay/internal/logger"
	"github.com/nikhil/chatrelay/internal/models"
)

type emitted struct {
	channelID int64
	event     models.UserTyping
	exclude   string
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (r *recordingEmitter) Broadcast(channelID int64, ev models.Event, exclude string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, emitted{channelID: channelID, event: ev.(models.UserTyping), exclude: exclude})
}

func (r *recordingEmitter) snapshot() []emitted {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]emitted(nil), r.events...)
}

func TestAggregator_Transitions(t *testing.T) {
	t.Run("should broadcast once per transition", func(t *testing.T) {
		rec := &recordingEmitter{}
		a := New(rec, time.Minute, logger.Nop())
		defer a.Close()

		a.StartTyping(5, "alice", "conn-a")
		a.StartTyping(5, "alice", "conn-a")
		a.StartTyping(5, "alice", "conn-a")
		a.StopTyping(5, "alice", "conn-a")
		a.StopTyping(5, "alice", "conn-a")

		events := rec.snapshot()
		require.Len(t, events, 2)
		assert.Equal(t, emitted{5, models.UserTyping{Username: "alice", IsTyping: true}, "conn-a"}, events[0])
		assert.Equal(t, emitted{5, models.UserTyping{Username: "alice", IsTyping: false}, "conn-a"}, events[1])
	})

	t.Run("should not broadcast a stop for an absent user", func(t *testing.T) {
		rec := &recordingEmitter{}
		a := New(rec, time.Minute, logger.Nop())
		defer a.Close()

		a.StopTyping(5, "bob", "conn-b")
		assert.Empty(t, rec.snapshot())
	})

	t.Run("should keep channels apart", func(t *testing.T) {
		rec := &recordingEmitter{}
		a := New(rec, time.Minute, logger.Nop())
		defer a.Close()

		a.StartTyping(1, "alice", "")
		a.StartTyping(2, "alice", "")
		a.StartTyping(1, "bob", "")

		assert.Equal(t, []string{"alice", "bob"}, a.Typing(1))
		assert.Equal(t, []string{"alice"}, a.Typing(2))
		assert.Len(t, rec.snapshot(), 3)
	})
}

func TestAggregator_Expiry(t *testing.T) {
	t.Run("should stop automatically after the timeout", func(t *testing.T) {
		rec := &recordingEmitter{}
		a := New(rec, DefaultTimeout, logger.Nop())
		defer a.Close()

		a.StartTyping(5, "alice", "conn-a")
		time.Sleep(1200 * time.Millisecond)

		events := rec.snapshot()
		require.Len(t, events, 2)
		assert.Equal(t, models.UserTyping{Username: "alice", IsTyping: false}, events[1].event)
		assert.Equal(t, "conn-a", events[1].exclude)
		assert.Empty(t, a.Typing(5))
	})

	t.Run("should rearm on every start", func(t *testing.T) {
		rec := &recordingEmitter{}
		a := New(rec, 100*time.Millisecond, logger.Nop())
		defer a.Close()

		for i := 0; i < 5; i++ {
			a.StartTyping(5, "alice", "")
			time.Sleep(40 * time.Millisecond)
		}
		assert.Len(t, rec.snapshot(), 1, "still typing while refreshed")

		assert.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, 10*time.Millisecond)
	})

	t.Run("should do nothing after an explicit stop", func(t *testing.T) {
		rec := &recordingEmitter{}
		a := New(rec, 50*time.Millisecond, logger.Nop())
		defer a.Close()

		a.StartTyping(5, "alice", "")
		a.StopTyping(5, "alice", "")
		time.Sleep(150 * time.Millisecond)

		assert.Len(t, rec.snapshot(), 2)
	})
}

func TestAggregator_Close(t *testing.T) {
	rec := &recordingEmitter{}
	a := New(rec, 50*time.Millisecond, logger.Nop())

	a.StartTyping(5, "alice", "")
	a.Close()
	time.Sleep(150 * time.Millisecond)

	assert.Len(t, rec.snapshot(), 1)
	a.StartTyping(5, "bob", "")
	assert.Len(t, rec.snapshot(), 1)
}
