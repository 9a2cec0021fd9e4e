package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFrame struct {
	Tick uint64 `json:"tick"`
}

func dialFeed(t *testing.T, f *Feed) *websocket.Conn {
	t.Helper()
	s := httptest.NewServer(f)
	t.Cleanup(s.Close)

	u := "ws" + strings.TrimPrefix(s.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestFeedBroadcast(t *testing.T) {
	f := NewFeed(nil)
	defer f.Close()

	first := dialFeed(t, f)
	second := dialFeed(t, f)
	require.Eventually(t, func() bool { return f.Clients() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, f.Broadcast(testFrame{Tick: 3}))
	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var got testFrame
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, uint64(3), got.Tick)
	}
}

func TestFeedDropsDisconnectedViewer(t *testing.T) {
	f := NewFeed(nil)
	defer f.Close()

	conn := dialFeed(t, f)
	require.Eventually(t, func() bool { return f.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return f.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestFeedClose(t *testing.T) {
	f := NewFeed(nil)
	conn := dialFeed(t, f)
	require.Eventually(t, func() bool { return f.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, f.Close())
	assert.Equal(t, 0, f.Clients())
	assert.ErrorIs(t, f.Broadcast(testFrame{}), ErrFeedClosed)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}
