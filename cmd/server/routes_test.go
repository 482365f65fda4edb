package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"

	"github.com/troop78/troophub/internal/archivesync"
	"github.com/troop78/troophub/internal/blasts"
	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/internal/realtime"
	"github.com/troop78/troophub/internal/store"
	"github.com/troop78/troophub/internal/viewas"
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

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func testRouter(t *testing.T) (*gin.Engine, *archivesync.Manager) {
	t.Helper()
	s, err := store.LoadEmbedded()
	require.NoError(t, err)
	schedule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.WEEKLY,
		Dtstart: time.Date(2024, 9, 5, 19, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	hub := realtime.NewHub(nil, nil, nil)
	manager := archivesync.NewManager(archivesync.DefaultScript(archivesync.DefaultFiles), 0, hub, nil)
	t.Cleanup(manager.Shutdown)

	return newRouter(deps{
		store:    s,
		tokens:   viewas.NewTokenService("secret", 1),
		queue:    queue.NewMemoryQueue(8, nil),
		recorder: blasts.NewStoreRecorder(s),
		hub:      hub,
		manager:  manager,
		schedule: schedule,
		meetings: 2,
		origins:  []string{"*"},
	}), manager
}

func call(r http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func viewAs(t *testing.T, r http.Handler, req viewas.ViewAsRequest) string {
	t.Helper()
	w, env := call(r, http.MethodPost, "/view-as", "", req)
	require.Equal(t, http.StatusOK, w.Code, env.Error)
	var tok viewas.TokenResponse
	require.NoError(t, json.Unmarshal(env.Data, &tok))
	return tok.Token
}

func TestHealthAndCatchAll(t *testing.T) {
	r, _ := testRouter(t)

	w, env := call(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	w, env = call(r, http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)

	w, _ = call(r, http.MethodPut, "/health", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRoleSwitchUnlocksRoster(t *testing.T) {
	r, _ := testRouter(t)

	w, _ := call(r, http.MethodGet, "/roster", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	token := viewAs(t, r, viewas.ViewAsRequest{Role: string(models.RoleScoutmaster)})
	w, env := call(r, http.MethodGet, "/roster", token, nil)
	assert.Equal(t, http.StatusOK, w.Code, env.Error)

	w, _ = call(r, http.MethodGet, "/roster", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCapabilityGates(t *testing.T) {
	r, _ := testRouter(t)
	scout := viewAs(t, r, viewas.ViewAsRequest{MemberID: "6"})

	tests := []struct {
		method, path string
	}{
		{http.MethodPost, "/blasts"},
		{http.MethodGet, "/blasts"},
		{http.MethodPost, "/documents/1/approve"},
		{http.MethodGet, "/documents/submissions"},
		{http.MethodPost, "/photos/1/tags/scouts/verify"},
		{http.MethodPatch, "/roster/6"},
		{http.MethodPost, "/sync"},
		{http.MethodDelete, "/sync"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w, _ := call(r, tt.method, tt.path, scout, nil)
			assert.Equal(t, http.StatusForbidden, w.Code)
		})
	}
}

func TestPublicPagesServeGuests(t *testing.T) {
	r, _ := testRouter(t)
	for _, path := range []string{"/dashboard", "/trips", "/photos", "/documents", "/newsletters", "/search?q=camp", "/me", "/view-as/roles"} {
		w, env := call(r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code, "%s: %s", path, env.Error)
	}
}

func TestSyncRunLifecycle(t *testing.T) {
	r, manager := testRouter(t)
	token := viewAs(t, r, viewas.ViewAsRequest{Role: string(models.RoleScoutmaster)})

	w, env := call(r, http.MethodPost, "/sync", token, nil)
	require.Equal(t, http.StatusAccepted, w.Code, env.Error)
	var started archivesync.StartResponse
	require.NoError(t, json.Unmarshal(env.Data, &started))
	assert.Equal(t, "/ws?run_id="+started.RunID, started.Stream)

	done, err := manager.Done(started.RunID)
	require.NoError(t, err)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sync run did not finish")
	}

	w, env = call(r, http.MethodGet, "/sync/"+started.RunID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var run models.SyncRun
	require.NoError(t, json.Unmarshal(env.Data, &run))
	assert.Equal(t, models.SyncStatusCompleted, run.Status)

	w, _ = call(r, http.MethodGet, "/ws", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
