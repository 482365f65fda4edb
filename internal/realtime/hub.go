package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/troop78/troophub/internal/models"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// EventSync is the WebSocket event name of a sync progress update.
const EventSync = "sync_event"

// Hub maintains run_id -> set of connections and broadcasts messages.
// Uses Redis pub/sub for horizontal scaling when configured.
type Hub struct {
	// runID -> map[clientID]*Client
	rooms    map[string]map[string]*Client
	subs     map[string]func() // cancel Redis subscription per run
	mu       sync.RWMutex
	logger   *zap.Logger
	redis    RedisPublisher
	redisSub RedisSubscriber
}

// RedisPublisher is the interface for publishing to Redis (for cross-instance broadcast).
type RedisPublisher interface {
	PublishRunEvent(runID string, msg WSMessage) error
}

// RedisSubscriber subscribes to run channels and invokes handler for incoming messages.
type RedisSubscriber interface {
	SubscribeRun(runID string, handler func(msg WSMessage)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub. redisPub and redisSub may be nil.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		rooms:    make(map[string]map[string]*Client),
		subs:     make(map[string]func()),
		logger:   logger,
		redis:    redisPub,
		redisSub: redisSub,
	}
}

// Register adds a client to a run room. Starts Redis subscription for this run if first client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.rooms[c.RunID] == nil {
		h.rooms[c.RunID] = make(map[string]*Client)
		if h.redisSub != nil {
			runID := c.RunID
			cancel, err := h.redisSub.SubscribeRun(runID, func(msg WSMessage) {
				h.Broadcast(runID, msg)
			})
			if err == nil {
				h.subs[runID] = cancel
			} else {
				h.logger.Warn("redis subscribe failed", zap.String("run_id", runID), zap.Error(err))
			}
		}
	}
	h.rooms[c.RunID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client joined run", zap.String("client_id", c.ID), zap.String("run_id", c.RunID))
}

// Unregister removes a client from a run room. Cancels Redis subscription when last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.rooms[c.RunID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.rooms, c.RunID)
			if cancel, ok := h.subs[c.RunID]; ok {
				cancel()
				delete(h.subs, c.RunID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client left run", zap.String("client_id", c.ID), zap.String("run_id", c.RunID))
}

// Broadcast sends a message to all clients watching a run (local only). Slow clients miss
// messages rather than block the sender.
func (h *Hub) Broadcast(runID string, msg WSMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.rooms[runID] {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// Publish delivers msg to every viewer of the run. With Redis configured it only publishes, so the
// subscriber callback performs the broadcast once for all instances, this one included.
func (h *Hub) Publish(runID string, msg WSMessage) {
	if h.redis != nil {
		err := h.redis.PublishRunEvent(runID, msg)
		if err == nil {
			return
		}
		h.logger.Warn("redis publish failed, broadcasting locally", zap.String("run_id", runID), zap.Error(err))
	}
	h.Broadcast(runID, msg)
}

// PublishSyncEvent streams one sync event to the viewers of its run.
func (h *Hub) PublishSyncEvent(ev models.SyncEvent) {
	msg, err := newMessage(EventSync, ev.Seq, ev)
	if err != nil {
		h.logger.Warn("marshal sync event", zap.Error(err))
		return
	}
	h.Publish(ev.RunID, msg)
}

// Watchers returns the number of connected clients watching a run.
func (h *Hub) Watchers(runID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[runID])
}

func newMessage(event string, seq int, payload interface{}) (WSMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return WSMessage{}, err
	}
	return WSMessage{Event: event, Seq: seq, Data: data}, nil
}
