package notifications

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealtimeBroadcast(t *testing.T) {
	rs := NewRealtimeService()
	srv := httptest.NewServer(http.HandlerFunc(rs.Handle))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.Eventually(t, func() bool { return rs.Sessions() == 1 }, time.Second, 5*time.Millisecond)

	rs.Broadcast("news", ActionCreated, "42")

	var ev ChangeEvent
	require.NoError(t, wsjson.Read(ctx, conn, &ev))
	assert.Equal(t, "news", ev.Table)
	assert.Equal(t, ActionCreated, ev.Action)
	assert.Equal(t, "42", ev.Id)
	assert.False(t, ev.SentAt.IsZero())

	conn.Close(websocket.StatusNormalClosure, "")
	require.Eventually(t, func() bool { return rs.Sessions() == 0 }, time.Second, 5*time.Millisecond)
}

func TestRealtimeNilService(t *testing.T) {
	var rs *RealtimeService
	assert.NotPanics(t, func() { rs.Broadcast("news", ActionDeleted, "1") })
}

func TestRealtimeBroadcastDoesNotWaitForSlowClient(t *testing.T) {
	rs := NewRealtimeService()
	stopped := make(chan struct{})
	rs.sessions[uuid.Must(uuid.NewV4())] = &realtimeSession{
		send: make(chan ChangeEvent, 1),
		stop: func() { close(stopped) },
	}

	done := make(chan struct{})
	go func() {
		for range 3 {
			rs.Broadcast("news", ActionUpdated, "7")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a client that does not read")
	}
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("slow client was not disconnected")
	}
	assert.Equal(t, 0, rs.Sessions())
}

func TestRealtimeCloseAll(t *testing.T) {
	rs := NewRealtimeService()
	srv := httptest.NewServer(http.HandlerFunc(rs.Handle))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.CloseNow()
	require.Eventually(t, func() bool { return rs.Sessions() == 1 }, time.Second, 5*time.Millisecond)

	go rs.CloseAll()

	_, _, err = conn.Read(ctx)
	assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))
	require.Eventually(t, func() bool { return rs.Sessions() == 0 }, time.Second, 5*time.Millisecond)
}
