package realtime

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/troop78/troophub/internal/middleware"
	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/internal/policy"
	"github.com/troop78/troophub/pkg/response"
)

// WSMessage is the WebSocket message envelope. Seq orders sync events within a run.
type WSMessage struct {
	Event string          `json:"event"`
	Seq   int             `json:"seq,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// RunSource gives access to the event history of a sync run.
type RunSource interface {
	Events(runID string) ([]models.SyncEvent, error)
}

// Client represents a single WebSocket connection watching a sync run.
type Client struct {
	ID       string
	RunID    string
	Viewer   policy.Viewer
	JoinedAt time.Time
	hub      *Hub
	conn     *websocket.Conn
	send     chan WSMessage
	logger   *zap.Logger
}

// Upgrader returns the WebSocket upgrader, accepting the configured origins ("*" for any).
func Upgrader(origins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, o := range origins {
				if o == "*" || strings.EqualFold(o, origin) {
					return true
				}
			}
			return false
		},
	}
}

// ServeWs handles GET /ws?run_id=&token=. The run history is replayed before live events; browsers
// cannot set headers on a WebSocket handshake, so the view-as token may come as a query parameter.
func ServeWs(hub *Hub, runs RunSource, tokens middleware.ViewerParser, upgrader websocket.Upgrader, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		runID := c.Query("run_id")
		if runID == "" {
			response.BadRequest(c, "run_id required")
			return
		}
		viewer := middleware.ViewerFrom(c)
		if token := c.Query("token"); token != "" {
			v, err := tokens.ParseViewer(token)
			if err != nil {
				response.Unauthorized(c, "invalid or expired token")
				return
			}
			viewer = v
		}
		if _, err := runs.Events(runID); err != nil {
			response.NotFound(c, "sync run not found")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:       uuid.New().String(),
			RunID:    runID,
			Viewer:   viewer,
			JoinedAt: time.Now(),
			hub:      hub,
			conn:     conn,
			send:     make(chan WSMessage, 256),
			logger:   logger,
		}
		// Register before reading history so no event falls between the two.
		hub.Register(client)
		history, _ := runs.Events(runID)
		go client.writePump(history)
		client.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		return nil
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			break
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))

		switch msg.Event {
		case "ping":
			select {
			case c.send <- WSMessage{Event: "pong"}:
			default:
			}
		default:
			// the stream is one-way
		}
	}
}

// writePump replays history, then forwards live messages. Live sync events already covered by
// the replay are dropped.
func (c *Client) writePump(history []models.SyncEvent) {
	ticker := time.NewTicker(PingInterval * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	last := 0
	for _, ev := range history {
		msg, err := newMessage(EventSync, ev.Seq, ev)
		if err != nil {
			continue
		}
		if err := c.write(msg); err != nil {
			return
		}
		last = ev.Seq
	}

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if msg.Event == EventSync && msg.Seq <= last {
				continue
			}
			if err := c.write(msg); err != nil {
				return
			}
			if msg.Event == EventSync {
				last = msg.Seq
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(msg WSMessage) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(msg)
}
