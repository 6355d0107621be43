package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/chatrelay/internal/models"
)

func TestOutbox(t *testing.T) {
	t.Run("should keep frames in order", func(t *testing.T) {
		o := newOutbox(4)
		for _, f := range []string{"a", "b", "c"} {
			evicted, err := o.push([]byte(f))
			require.NoError(t, err)
			assert.False(t, evicted)
		}
		assert.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, o.drain())
		assert.Nil(t, o.drain())
	})

	t.Run("should drop the oldest frame when full", func(t *testing.T) {
		o := newOutbox(2)
		o.push([]byte("a"))
		o.push([]byte("b"))
		evicted, err := o.push([]byte("c"))
		require.NoError(t, err)
		assert.True(t, evicted)
		assert.Equal(t, 2, o.pending())
		assert.Equal(t, [][]byte{[]byte("b"), []byte("c")}, o.drain())
	})

	t.Run("should signal readiness without blocking", func(t *testing.T) {
		o := newOutbox(8)
		for i := 0; i < 5; i++ {
			o.push([]byte("x"))
		}
		select {
		case <-o.ready:
		default:
			t.Fatal("expected a ready signal")
		}
		assert.Len(t, o.drain(), 5)
	})

	t.Run("should refuse frames after close", func(t *testing.T) {
		o := newOutbox(2)
		o.push([]byte("a"))
		o.close()
		_, err := o.push([]byte("b"))
		assert.ErrorIs(t, err, models.ErrDeliveryFailed)
		assert.Zero(t, o.pending())
	})
}
