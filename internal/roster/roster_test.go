package roster

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/troop78/troophub/internal/middleware"
	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/internal/policy"
	"github.com/troop78/troophub/internal/store"
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
	scoutmaster = policy.Viewer{MemberID: "1", Role: models.RoleScoutmaster}
	spl         = policy.Viewer{MemberID: "2", Role: models.RoleSPL, Patrol: "Leadership"}
	alex        = policy.Viewer{MemberID: "4", Role: models.RolePatrolLeader, Patrol: "Thunderbirds"}
	james       = policy.Viewer{MemberID: "7", Role: models.RolePatrolLeader, Patrol: "Eagles"}
	parent      = policy.Viewer{MemberID: "5", Role: models.RoleParent}
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newRouter(t *testing.T, v policy.Viewer) *gin.Engine {
	t.Helper()
	s, err := store.LoadEmbedded()
	require.NoError(t, err)
	h := NewHandler(NewRepository(s), zap.NewNop())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextViewer, v)
		c.Next()
	})
	r.GET("/roster", h.List)
	r.GET("/roster/:id", h.Get)
	r.PATCH("/roster/:id", middleware.RequireCapability(policy.EditRoster), h.Update)
	return r
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

func list(t *testing.T, v policy.Viewer, query string) ListResponse {
	t.Helper()
	w, env := call(newRouter(t, v), http.MethodGet, "/roster"+query, nil)
	require.Equal(t, http.StatusOK, w.Code, env.Error)
	var out ListResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func ids(views []models.MemberView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

func TestListForScoutmaster(t *testing.T) {
	out := list(t, scoutmaster, "")
	assert.Equal(t, []string{"2", "3", "4", "6", "7", "8"}, ids(out.Members))
	assert.Equal(t, []string{"Eagles", "Leadership", "Thunderbirds"}, out.Patrols)
	for _, m := range out.Members {
		assert.False(t, m.PhoneMasked)
		assert.False(t, m.AddressMasked)
		assert.NotEqual(t, models.MedicalHidden, m.MedicalStatus)
	}
	assert.Equal(t, policy.PhoneVisible, out.Privacy.PhoneNumbers)
}

func TestListForPatrolLeaderIsScoped(t *testing.T) {
	out := list(t, alex, "")
	assert.Equal(t, []string{"4", "6"}, ids(out.Members))
	assert.Equal(t, []string{"Thunderbirds"}, out.Patrols)
	for _, m := range out.Members {
		assert.Equal(t, "Thunderbirds", m.Patrol)
		assert.False(t, m.PhoneMasked)
		assert.Equal(t, policy.MaskedAddress, m.Address)
		assert.Equal(t, models.MedicalHidden, m.MedicalStatus)
	}

	out = list(t, alex, "?patrol=Eagles")
	assert.Empty(t, out.Members)
}

func TestListForSPLMasksAddresses(t *testing.T) {
	out := list(t, spl, "")
	require.NotEmpty(t, out.Members)
	for _, m := range out.Members {
		assert.False(t, m.PhoneMasked)
		assert.True(t, m.AddressMasked)
	}
}

func TestListFilters(t *testing.T) {
	assert.Equal(t, []string{"3", "7"}, ids(list(t, scoutmaster, "?q=LIFE").Members))
	assert.Equal(t, []string{"7", "8"}, ids(list(t, scoutmaster, "?patrol=Eagles").Members))
	assert.Equal(t, []string{"6"}, ids(list(t, scoutmaster, "?q=michael.chen").Members))
}

func TestListForbidden(t *testing.T) {
	for _, v := range []policy.Viewer{parent, policy.Guest, {Role: models.RoleScout}} {
		w, env := call(newRouter(t, v), http.MethodGet, "/roster", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.False(t, env.Success)
	}
}

func TestGet(t *testing.T) {
	w, env := call(newRouter(t, james), http.MethodGet, "/roster/8", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var m models.MemberView
	require.NoError(t, json.Unmarshal(env.Data, &m))
	assert.Equal(t, "610-555-0130", m.Phone)

	w, _ = call(newRouter(t, james), http.MethodGet, "/roster/6", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = call(newRouter(t, scoutmaster), http.MethodGet, "/roster/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = call(newRouter(t, parent), http.MethodGet, "/roster/6", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdate(t *testing.T) {
	r := newRouter(t, scoutmaster)
	rank := "Star Scout"
	status := "complete"
	w, env := call(r, http.MethodPatch, "/roster/6", UpdateRequest{Rank: &rank, MedicalStatus: &status})
	require.Equal(t, http.StatusOK, w.Code, env.Error)
	var m models.MemberView
	require.NoError(t, json.Unmarshal(env.Data, &m))
	assert.Equal(t, "Star Scout", m.Rank)
	assert.Equal(t, models.MedicalComplete, m.MedicalStatus)
	assert.Equal(t, "Thunderbirds", m.Patrol)
}

func TestUpdateRejections(t *testing.T) {
	owls := "Owls"
	hidden := "hidden"
	general := "General"

	tests := []struct {
		name   string
		viewer policy.Viewer
		path   string
		body   UpdateRequest
		want   int
	}{
		{"spl cannot edit", spl, "/roster/6", UpdateRequest{Patrol: &owls}, http.StatusForbidden},
		{"unknown patrol", scoutmaster, "/roster/6", UpdateRequest{Patrol: &owls}, http.StatusBadRequest},
		{"unknown rank", scoutmaster, "/roster/6", UpdateRequest{Rank: &general}, http.StatusBadRequest},
		{"hidden medical status", scoutmaster, "/roster/6", UpdateRequest{MedicalStatus: &hidden}, http.StatusBadRequest},
		{"missing member", scoutmaster, "/roster/404", UpdateRequest{}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := call(newRouter(t, tt.viewer), http.MethodPatch, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
