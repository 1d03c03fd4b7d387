package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/paulexconde/npsdash/internal/dashboard"
	"github.com/paulexconde/npsdash/internal/models"
	"github.com/paulexconde/npsdash/internal/services"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
log:
  level: error
projects:
  Beta:
    - b1
  Alpha:
    - a1
    - a2
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))
	return path
}

func TestProjectsCommand(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"projects", "--config", writeConfig(t)})

	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Alpha"))
	assert.Contains(t, lines[0], "a1, a2")
	assert.True(t, strings.HasPrefix(lines[1], "Beta"))
}

func TestProjectsCommand_MissingConfig(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"projects", "--config", filepath.Join(t.TempDir(), "nope.yaml")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestViewCommand_RequiresProject(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"view", "--config", writeConfig(t)})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"project" not set`)
}

func ptr(s string) *string { return &s }

func TestPrintTable(t *testing.T) {
	rows := []models.Row{
		{
			ClientUserID: ptr("u1"),
			CampaignID:   "c1",
			Score:        models.NewScore(9),
			Feedback:     models.PlainFeedback("great\nservice"),
			CreatedAt:    models.NewTimestamp(time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)),
		},
		{
			ClientUserID: ptr("u2"),
			CampaignID:   "c1",
			Score:        models.NoScore(),
			CreatedAt:    models.ParseTimestamp("yesterday"),
		},
	}
	view := dashboard.View(dashboard.FromRows(rows, services.DefaultSort, 25, 1))

	out := &bytes.Buffer{}
	require.NoError(t, printTable(out, view, time.UTC))

	got := out.String()
	assert.Contains(t, got, "great service")
	assert.Contains(t, got, "2025-02-03 04:05:06")
	assert.Contains(t, got, "yesterday")
	assert.Contains(t, got, "page 1/1, 2 rows, sorted by created_at asc")
}

func TestFeedbackCell_Truncates(t *testing.T) {
	long := strings.Repeat("x", 80)
	got := feedbackCell(models.PlainFeedback(long))
	assert.Equal(t, 60, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestSelectionFlags(t *testing.T) {
	var sel selectionFlags
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	sel.register(cmd)

	require.NoError(t, cmd.ParseFlags([]string{
		"--project", "E1",
		"-c", "c1,c2",
		"--date", "2025-02-03",
		"--filter", "score >= 7",
	}))

	assert.Equal(t, services.Selection{
		Project:     "E1",
		CampaignIDs: []string{"c1", "c2"},
		Date:        "2025-02-03",
	}, sel.selection())
	assert.Equal(t, "score >= 7", sel.filter)

	_, err := services.CompileFilter(sel.filter)
	require.NoError(t, err)
}

func TestFilterExampleCompiles(t *testing.T) {
	f, err := services.CompileFilter(filterExample)
	require.NoError(t, err)
	assert.Equal(t, filterExample, f.String())
}
