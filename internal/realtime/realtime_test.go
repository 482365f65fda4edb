package realtime

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/troop78/troophub/internal/middleware"
	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/internal/policy"
)

type fakeRuns map[string][]models.SyncEvent

func (f fakeRuns) Events(id string) ([]models.SyncEvent, error) {
	ev, ok := f[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return ev, nil
}

type fakeParser struct{}

func (fakeParser) ParseViewer(token string) (policy.Viewer, error) {
	if token == "sm" {
		return policy.Viewer{MemberID: "1", Role: models.RoleScoutmaster}, nil
	}
	return policy.Viewer{}, errors.New("bad token")
}

type fakeRedis struct {
	mu  sync.Mutex
	out []WSMessage
}

func (f *fakeRedis) PublishRunEvent(runID string, msg WSMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out = append(f.out, msg)
	return nil
}

func newServer(t *testing.T, hub *Hub, runs RunSource) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Viewer(fakeParser{}))
	r.GET("/ws", ServeWs(hub, runs, fakeParser{}, Upgrader([]string{"*"}), nil))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestReplayThenLive(t *testing.T) {
	hub := NewHub(nil, nil, nil)
	runs := fakeRuns{"r1": {
		{RunID: "r1", Seq: 1, Phase: "Connecting to NAS"},
		{RunID: "r1", Seq: 2, Phase: "Connecting to NAS", Progress: 5},
	}}
	conn := dial(t, newServer(t, hub, runs), "run_id=r1&token=sm")

	assert.Equal(t, 1, read(t, conn).Seq)
	second := read(t, conn)
	assert.Equal(t, EventSync, second.Event)
	assert.Equal(t, 2, second.Seq)
	assert.Equal(t, 1, hub.Watchers("r1"))

	hub.PublishSyncEvent(models.SyncEvent{RunID: "r1", Seq: 2, Phase: "dup"})
	hub.PublishSyncEvent(models.SyncEvent{RunID: "r1", Seq: 3, Phase: "Authenticating", Progress: 10})
	hub.PublishSyncEvent(models.SyncEvent{RunID: "other", Seq: 4})

	live := read(t, conn)
	assert.Equal(t, 3, live.Seq)
	assert.Contains(t, string(live.Data), "Authenticating")

	require.NoError(t, conn.WriteJSON(WSMessage{Event: "ping"}))
	assert.Equal(t, "pong", read(t, conn).Event)
}

func TestServeWsRejections(t *testing.T) {
	srv := newServer(t, NewHub(nil, nil, nil), fakeRuns{"r1": nil})

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"missing run id", "", http.StatusBadRequest},
		{"unknown run", "?run_id=r9", http.StatusNotFound},
		{"bad token", "?run_id=r1&token=nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/ws" + tt.query)
			require.NoError(t, err)
			_ = resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestPublishPrefersRedis(t *testing.T) {
	pub := &fakeRedis{}
	hub := NewHub(nil, pub, nil)
	c := &Client{ID: "c1", RunID: "r1", send: make(chan WSMessage, 1)}
	hub.Register(c)

	hub.PublishSyncEvent(models.SyncEvent{RunID: "r1", Seq: 1})
	assert.Len(t, pub.out, 1)
	assert.Empty(t, c.send)

	hub.Broadcast("r1", WSMessage{Event: EventSync, Seq: 2})
	hub.Broadcast("r1", WSMessage{Event: EventSync, Seq: 3})
	require.Len(t, c.send, 1)
	assert.Equal(t, 2, (<-c.send).Seq)

	hub.Unregister(c)
	assert.Equal(t, 0, hub.Watchers("r1"))
}

func TestUpgraderOrigins(t *testing.T) {
	u := Upgrader([]string{"http://localhost:3000"})
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, u.CheckOrigin(req))
	req.Header.Set("Origin", "http://localhost:3000")
	assert.True(t, u.CheckOrigin(req))
	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, u.CheckOrigin(req))
}

func TestChannel(t *testing.T) {
	assert.Equal(t, "sync:abc", Channel("abc"))
}
