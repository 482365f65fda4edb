package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/internal/policy"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	fixtures, verbose = "", false
	cmd := newRootCmd(&App{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPolicyTable(t *testing.T) {
	out, err := run(t, "policy")
	require.NoError(t, err)
	for _, c := range policy.AllCapabilities {
		assert.Contains(t, out, string(c))
	}
	assert.Contains(t, out, "patrol_leader (own patrol)")
	assert.Contains(t, out, "policy version 1")
}

func TestPolicyForViewer(t *testing.T) {
	out, err := run(t, "policy", "--as", "5")
	require.NoError(t, err)
	var s policy.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, models.RoleParent, s.Role)
	assert.Equal(t, policy.PhoneMasked, s.PhoneNumbers)
	assert.False(t, s.AccessRoster)

	_, err = run(t, "policy", "--as", "wizard")
	assert.Error(t, err)
}

func TestRosterAsPatrolLeader(t *testing.T) {
	out, err := run(t, "roster", "--as", "4")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "4 "))
	assert.True(t, strings.HasPrefix(lines[2], "6 "))
	assert.Contains(t, out, policy.MaskedAddress)
	assert.Contains(t, out, string(models.MedicalHidden))
}

func TestRosterRefusesParent(t *testing.T) {
	_, err := run(t, "roster", "--as", "parent")
	assert.Error(t, err)
}

func TestSearchAsGuestSkipsMembers(t *testing.T) {
	out, err := run(t, "search", "chen")
	require.NoError(t, err)
	assert.NotContains(t, out, "member ")

	out, err = run(t, "search", "chen", "--as", "scoutmaster")
	require.NoError(t, err)
	assert.Contains(t, out, "member      Michael Chen")
}

func TestSyncPlaysInstantly(t *testing.T) {
	out, err := run(t, "sync", "--speed", "0", "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, "== Connecting to NAS")
	assert.Contains(t, out, "== Complete")
	assert.Contains(t, out, "done: 2250 files processed")
	assert.NotContains(t, out, "Indexing /vol")

	_, err = run(t, "sync", "--speed", "-1")
	assert.Error(t, err)
}
