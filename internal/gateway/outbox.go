package gateway

import (
	"sync"

	"github.com/nikhil/chatrelay/internal/models"
)

// outbox is a bounded FIFO of encoded frames. When full, the oldest frame is
// dropped so that producers never block on a slow connection.
type outbox struct {
	mu     sync.Mutex
	frames [][]byte
	size   int
	closed bool

	ready chan struct{}
}

func newOutbox(size int) *outbox {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &outbox{
		frames: make([][]byte, 0, size),
		size:   size,
		ready:  make(chan struct{}, 1),
	}
}

func (o *outbox) push(frame []byte) (evicted bool, err error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return false, models.ErrDeliveryFailed
	}
	if len(o.frames) >= o.size {
		copy(o.frames, o.frames[1:])
		o.frames = o.frames[:len(o.frames)-1]
		evicted = true
	}
	o.frames = append(o.frames, frame)
	o.mu.Unlock()

	select {
	case o.ready <- struct{}{}:
	default:
	}
	return evicted, nil
}

// drain removes and returns every pending frame in order.
func (o *outbox) drain() [][]byte {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.frames) == 0 {
		return nil
	}
	out := o.frames
	o.frames = make([][]byte, 0, o.size)
	return out
}

func (o *outbox) pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.frames)
}

func (o *outbox) close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	o.frames = nil
}
