package channelService

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/chatrelay/internal/models"
	"github.com/nikhil/chatrelay/internal/store"
)

type fixedMembers map[int64]int

func (f fixedMembers) MemberCount(channelID int64) int { return f[channelID] }

func newRouter(t *testing.T) (*mux.Router, *store.Store) {
	t.Helper()
	st := store.New()
	require.NoError(t, st.Seed())

	cs := NewChannelService(st, fixedMembers{1: 2})
	router := mux.NewRouter()
	router.HandleFunc("/api/channels", cs.ListChannels).Methods(http.MethodGet)
	router.HandleFunc("/api/channels", cs.CreateChannel).Methods(http.MethodPost)
	router.HandleFunc("/api/channels/{id}", cs.GetChannel).Methods(http.MethodGet)
	return router, st
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestChannelService(t *testing.T) {
	t.Run("should list channels with real counts", func(t *testing.T) {
		router, _ := newRouter(t)
		rec := serve(router, http.MethodGet, "/api/channels", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var got []models.ChannelWithMessageCount
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 3)
		assert.Equal(t, "general", got[0].Name)
		assert.Equal(t, 3, got[0].MessageCount)
		assert.Equal(t, 2, got[0].ActiveMembers)
		assert.Zero(t, got[1].MessageCount)
	})

	t.Run("should get one channel", func(t *testing.T) {
		router, _ := newRouter(t)
		rec := serve(router, http.MethodGet, "/api/channels/2", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"name":"random"`)

		assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/api/channels/99", "").Code)
		assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/api/channels/x", "").Code)
	})

	t.Run("should create a channel", func(t *testing.T) {
		router, st := newRouter(t)
		rec := serve(router, http.MethodPost, "/api/channels", `{"name":"design"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		_, err := st.GetChannelByName("design")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodPost, "/api/channels", `{"name":"  "}`).Code)
	})
}
