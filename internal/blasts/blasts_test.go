package blasts

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/troop78/troophub/internal/middleware"
	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/internal/policy"
	"github.com/troop78/troophub/internal/store"
	"github.com/troop78/troophub/pkg/queue"
	"github.com/troop78/troophub/pkg/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validation.RegisterGin(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var (
	scoutmaster = policy.Viewer{MemberID: "1", Name: "Mark Thompson", Role: models.RoleScoutmaster}
	spl         = policy.Viewer{MemberID: "2", Name: "Danny", Role: models.RoleSPL, Patrol: "Leadership"}
	scout       = policy.Viewer{MemberID: "6", Role: models.RoleScout, Patrol: "Thunderbirds"}
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type fixture struct {
	router *gin.Engine
	repo   *Repository
	queue  *queue.MemoryQueue
	rec    *StoreRecorder
}

func newFixture(t *testing.T, v policy.Viewer) fixture {
	t.Helper()
	s, err := store.LoadEmbedded()
	require.NoError(t, err)
	repo := NewRepository(s)
	q := queue.NewMemoryQueue(8, nil)
	rec := NewStoreRecorder(s)
	h := NewHandler(repo, q, rec, zap.NewNop())
	h.now = func() time.Time { return time.Date(2025, 1, 5, 18, 0, 0, 0, time.UTC) }

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextViewer, v)
		c.Next()
	})
	send := r.Group("/blasts", middleware.RequireCapability(policy.SendBroadcast))
	send.GET("", h.List)
	send.POST("", h.Send)
	send.GET("/:id/deliveries", h.Deliveries)
	r.POST("/blasts/:id/read", h.MarkRead)
	return fixture{router: r, repo: repo, queue: q, rec: rec}
}

func call(r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestCompose(t *testing.T) {
	now := time.Date(2025, 1, 5, 18, 0, 0, 0, time.UTC)

	b, err := Compose(scoutmaster, SendRequest{Body: " Bring boots ", Channels: []string{"sms", "sms", "app"}}, now)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultBlastTitle, b.Title)
	assert.Equal(t, "Bring boots", b.Content)
	assert.Equal(t, []string{models.RecipientAllScouts}, b.Recipients)
	assert.Equal(t, []models.Channel{models.ChannelSMS, models.ChannelApp}, b.Channels)
	assert.Equal(t, "1", b.Sender)
	assert.Equal(t, now, b.SentDate)
	assert.NotEmpty(t, b.ID)

	b, err = Compose(scoutmaster, SendRequest{Body: "Shelter", Channels: []string{"sms"}, Recipients: []string{"patrol:Eagles"}, IsEmergency: true}, now)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultEmergencyTitle, b.Title)
	assert.Equal(t, []string{models.RecipientAll}, b.Recipients)

	_, err = Compose(spl, SendRequest{Body: "Shelter", Channels: []string{"sms"}, IsEmergency: true}, now)
	assert.ErrorIs(t, err, ErrEmergencyNotPermitted)
	_, err = Compose(scout, SendRequest{Body: "hi", Channels: []string{"sms"}}, now)
	assert.ErrorIs(t, err, ErrBroadcastNotPermitted)
	_, err = Compose(spl, SendRequest{Body: "   ", Channels: []string{"sms"}}, now)
	assert.ErrorIs(t, err, ErrEmptyBody)
	_, err = Compose(spl, SendRequest{Body: "hi", Channels: []string{"pigeon"}}, now)
	assert.ErrorIs(t, err, ErrNoChannels)
}

func TestResolve(t *testing.T) {
	f := newFixture(t, scoutmaster)
	ctx := context.Background()

	ids := func(tokens ...string) []string {
		var out []string
		for _, m := range f.repo.Resolve(ctx, tokens) {
			out = append(out, m.ID)
		}
		return out
	}
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6", "7", "8"}, ids(models.RecipientAll))
	assert.Equal(t, []string{"2", "3", "4", "6", "7", "8"}, ids(models.RecipientAllScouts))
	assert.Equal(t, []string{"5"}, ids(models.RecipientParents))
	assert.Equal(t, []string{"1", "2", "3"}, ids(models.RecipientLeaders))
	assert.Equal(t, []string{"7", "8"}, ids("patrol:Eagles"))
	assert.Equal(t, []string{"5", "7", "8"}, ids("patrol:Eagles", "5", "8", "404"))
	assert.Empty(t, ids("patrol:"))
}

func TestSendQueuesDelivery(t *testing.T) {
	f := newFixture(t, spl)

	w, env := call(f.router, http.MethodPost, "/blasts", SendRequest{
		Title:      "Patrol meeting",
		Body:       "Eagles meet at 7",
		Recipients: []string{"patrol:Eagles"},
		Channels:   []string{"sms", "email"},
	})
	require.Equal(t, http.StatusAccepted, w.Code, env.Error)
	var res SendResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 2, res.Recipients)
	assert.Equal(t, "Patrol meeting", res.Blast.Title)
	assert.NotEmpty(t, res.JobID)

	job, err := f.queue.Dequeue(context.Background())
	require.NoError(t, err)
	var payload queue.BlastDeliveryPayload
	require.NoError(t, json.Unmarshal(job.Payload, &payload))
	assert.Equal(t, res.Blast.ID, payload.BlastID)
	require.Len(t, payload.Recipients, 2)
	assert.Equal(t, "7", payload.Recipients[0].MemberID)
	assert.Equal(t, "610-555-0129", payload.Recipients[0].Phone)

	w, env = call(f.router, http.MethodGet, "/blasts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []BlastView
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 3)
	assert.Equal(t, res.Blast.ID, list[0].ID)
	assert.Equal(t, "2", list[1].ID)
	assert.Equal(t, 8, list[1].RecipientCount)
	assert.Equal(t, 6, list[1].ReadCount)
}

func TestSendRules(t *testing.T) {
	tests := []struct {
		name   string
		viewer policy.Viewer
		body   interface{}
		want   int
	}{
		{"spl cannot send emergency", spl, SendRequest{Body: "storm", Channels: []string{"sms"}, IsEmergency: true}, http.StatusForbidden},
		{"scoutmaster sends emergency", scoutmaster, SendRequest{Body: "storm", Channels: []string{"sms"}, IsEmergency: true}, http.StatusAccepted},
		{"scout cannot send", scout, SendRequest{Body: "hi", Channels: []string{"app"}}, http.StatusForbidden},
		{"empty body", spl, SendRequest{Channels: []string{"app"}}, http.StatusBadRequest},
		{"blank body", spl, SendRequest{Body: "  ", Channels: []string{"app"}}, http.StatusBadRequest},
		{"no channels", spl, SendRequest{Body: "hi"}, http.StatusBadRequest},
		{"bad channel", spl, SendRequest{Body: "hi", Channels: []string{"pigeon"}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := call(newFixture(t, tt.viewer).router, http.MethodPost, "/blasts", tt.body)
			assert.Equal(t, tt.want, w.Code, env.Error)
		})
	}
}

func TestEmergencyGoesToEveryone(t *testing.T) {
	f := newFixture(t, scoutmaster)
	w, env := call(f.router, http.MethodPost, "/blasts", SendRequest{
		Body:        "Shelter in the lodge",
		Recipients:  []string{"patrol:Eagles"},
		Channels:    []string{"app"},
		IsEmergency: true,
	})
	require.Equal(t, http.StatusAccepted, w.Code, env.Error)
	var res SendResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, []string{models.RecipientAll}, res.Blast.Recipients)
	assert.Equal(t, models.DefaultEmergencyTitle, res.Blast.Title)
	assert.Equal(t, 8, res.Recipients)
}

func TestMarkRead(t *testing.T) {
	f := newFixture(t, scout)

	w, env := call(f.router, http.MethodPost, "/blasts/1/read", nil)
	require.Equal(t, http.StatusOK, w.Code, env.Error)
	var res map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, true, res["newly_read"])

	_, env = call(f.router, http.MethodPost, "/blasts/1/read", nil)
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, false, res["newly_read"])

	w, _ = call(f.router, http.MethodPost, "/blasts/404/read", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = call(newFixture(t, policy.Guest).router, http.MethodPost, "/blasts/1/read", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeliveries(t *testing.T) {
	f := newFixture(t, scoutmaster)
	at := time.Date(2025, 1, 5, 18, 0, 0, 0, time.UTC)
	require.NoError(t, f.rec.Record(context.Background(),
		models.DeliveryLog{ID: "d1", BlastID: "1", MemberID: "2", Channel: models.ChannelSMS, Status: models.DeliveryStatusSimulated, CreatedAt: at},
		models.DeliveryLog{ID: "d2", BlastID: "2", MemberID: "2", Channel: models.ChannelApp, Status: models.DeliveryStatusSimulated, CreatedAt: at},
	))

	w, env := call(f.router, http.MethodGet, "/blasts/1/deliveries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var logs []models.DeliveryLog
	require.NoError(t, json.Unmarshal(env.Data, &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "d1", logs[0].ID)

	w, _ = call(f.router, http.MethodGet, "/blasts/404/deliveries", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = call(newFixture(t, scout).router, http.MethodGet, "/blasts/1/deliveries", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
