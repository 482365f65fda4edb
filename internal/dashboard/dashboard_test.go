package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/troop78/troophub/config"
	"github.com/troop78/troophub/internal/store"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	s, err := store.LoadEmbedded()
	require.NoError(t, err)
	return NewRepository(s)
}

func thursdays(t *testing.T) *config.TroopConfig {
	t.Helper()
	return &config.TroopConfig{
		MeetingRRule: "FREQ=WEEKLY;BYDAY=TH;BYHOUR=19;BYMINUTE=30;BYSECOND=0",
		MeetingStart: "2024-09-05",
		MeetingTZ:    "America/New_York",
	}
}

func TestBuild(t *testing.T) {
	d := newRepo(t).Build(context.Background(), time.Date(2024, 1, 4, 9, 0, 0, 0, time.UTC))

	assert.Equal(t, "Troop 78", d.Troop)
	assert.Equal(t, 4, d.Stats.ActiveScouts)
	assert.Equal(t, 1, d.Stats.EagleScouts)
	assert.Equal(t, 2, d.Stats.OpenTrips)
	assert.Equal(t, 4, d.Stats.Photos)
	require.Len(t, d.OpenTrips, 2)
	assert.Equal(t, "1", d.OpenTrips[0].ID)

	require.NotNil(t, d.MemoryOfTheDay)
	assert.Equal(t, "1", d.MemoryOfTheDay.ID)
	assert.Equal(t, []string{"group photo", "summer"}, d.MemoryOfTheDay.UnverifiedTags)

	assert.Equal(t, "15 Mill Road, Malvern, PA 19355", d.Location.Address)
	assert.Contains(t, d.Location.MapNote, "Follow the pin")
}

func TestNextMeetings(t *testing.T) {
	sched, err := thursdays(t).Schedule()
	require.NoError(t, err)
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	got := NextMeetings(sched, time.Date(2024, 12, 16, 12, 0, 0, 0, ny), 3)
	require.Len(t, got, 3)
	assert.True(t, got[0].Equal(time.Date(2024, 12, 19, 19, 30, 0, 0, ny)))
	assert.True(t, got[1].Equal(time.Date(2024, 12, 26, 19, 30, 0, 0, ny)))
	assert.True(t, got[2].Equal(time.Date(2025, 1, 2, 19, 30, 0, 0, ny)))

	onMeeting := NextMeetings(sched, time.Date(2024, 12, 19, 19, 30, 0, 0, ny), 1)
	require.Len(t, onMeeting, 1)
	assert.True(t, onMeeting[0].Equal(time.Date(2024, 12, 26, 19, 30, 0, 0, ny)))

	assert.Empty(t, NextMeetings(nil, time.Now(), 3))
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sched, err := thursdays(t).Schedule()
	require.NoError(t, err)
	h := NewHandler(newRepo(t), sched, 2, nil)
	h.now = func() time.Time { return time.Date(2024, 12, 16, 17, 0, 0, 0, time.UTC) }

	r := gin.New()
	r.GET("/dashboard", h.Get)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Success bool      `json:"success"`
		Data    Dashboard `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Len(t, env.Data.NextMeetings, 2)
	assert.NotNil(t, env.Data.MemoryOfTheDay)
}
