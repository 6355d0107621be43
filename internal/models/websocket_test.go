package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"online", "away", "offline"} {
		s, err := ParseStatus(raw)
		require.NoError(t, err)
		assert.Equal(t, Status(raw), s)
	}

	_, err := ParseStatus("banned")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestEncodeEvent(t *testing.T) {
	t.Run("should flatten the message with user view", func(t *testing.T) {
		ev := NewMessage{MessageWithUser{
			Message: Message{ID: 1, ChannelID: 3, UserID: 42, Content: "hi", CreatedAt: time.Unix(0, 0).UTC()},
			User:    User{ID: 42, Username: "alice", Status: StatusOnline},
		}}

		b, err := EncodeEvent(ev)
		require.NoError(t, err)

		var frame struct {
			Event string         `json:"event"`
			Data  map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(b, &frame))
		assert.Equal(t, EventNewMessage, frame.Event)
		assert.Equal(t, float64(1), frame.Data["id"])
		assert.Equal(t, float64(3), frame.Data["channelId"])
		assert.Equal(t, "hi", frame.Data["content"])
		user, ok := frame.Data["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "alice", user["username"])
	})

	t.Run("should encode typing with camelCase fields", func(t *testing.T) {
		b, err := EncodeEvent(UserTyping{Username: "alice", IsTyping: true})
		require.NoError(t, err)
		assert.JSONEq(t, `{"event":"user-typing","data":{"username":"alice","isTyping":true}}`, string(b))
	})
}

func TestDecodeFrame(t *testing.T) {
	f, err := DecodeFrame([]byte(`{"event":"join-channel","data":3}`))
	require.NoError(t, err)
	assert.Equal(t, EventJoinChannel, f.Event)
	assert.Equal(t, "3", string(f.Data))

	_, err = DecodeFrame([]byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = DecodeFrame([]byte(`{"data":1}`))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
