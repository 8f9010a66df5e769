package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mobileAnswers = `
daily_screen_time: 9
app_sessions: 120
social_media_usage: 3.5
gaming_time: 1
notifications: 80
night_usage: 1.5
age: 24
work_study_hours: 6
stress_level: 7
apps_installed: 60
`

type cliRun struct {
	stdout bytes.Buffer
	stderr bytes.Buffer
}

// execute runs the CLI against the shipped artifacts and a temporary
// history database shared by every call in the test.
func execute(t *testing.T, db, stdin string, args ...string) (*cliRun, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	run := &cliRun{}
	cmd := newRootCmd()
	cmd.SetOut(&run.stdout)
	cmd.SetErr(&run.stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--artifacts", "../../artifacts", "--history-db", db}, args...))
	return run, cmd.Execute()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPredictAndHistory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")
	answers := writeFile(t, "answers.yaml", mobileAnswers)

	run, err := execute(t, db, "", "predict", "mobile", "-f", answers)
	require.NoError(t, err, run.stderr.String())
	out := run.stdout.String()
	assert.Contains(t, out, "addiction_status")
	assert.Contains(t, out, "100.0%")
	assert.Contains(t, out, "Recommendations:")
	assert.Contains(t, out, "Saved as ")

	run, err = execute(t, db, "", "predict", "mobile_addiction", "-f", answers, "--no-save", "--json")
	require.NoError(t, err)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(run.stdout.Bytes(), &resp))
	assert.Equal(t, "mobile_addiction", resp["service"])
	assert.Equal(t, false, resp["stored"])

	run, err = execute(t, db, "", "history", "mobile", "--json")
	require.NoError(t, err)
	var hist struct {
		Predictions []map[string]any `json:"predictions"`
		TotalCount  int64            `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(run.stdout.Bytes(), &hist))
	assert.Equal(t, int64(1), hist.TotalCount)
	require.Len(t, hist.Predictions, 1)

	run, err = execute(t, db, "", "history", "mobile")
	require.NoError(t, err)
	assert.Contains(t, run.stdout.String(), "Showing 1 of 1")

	run, err = execute(t, db, "", "history", "stress")
	require.NoError(t, err)
	assert.Contains(t, run.stdout.String(), "No saved predictions.")
}

func TestPredictInteractive(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")
	stdin := strings.Join([]string{"9", "120", "3.5", "1", "80", "1.5", "24", "6", "7", "60"}, "\n") + "\n"

	run, err := execute(t, db, stdin, "predict", "mobile", "--interactive", "--no-save")
	require.NoError(t, err, run.stderr.String())
	out := run.stdout.String()
	assert.Contains(t, out, "Daily screen time (hours) [required, 0-24]: ")
	assert.Contains(t, out, "Apps installed [required, 1-500]: ")
	assert.NotContains(t, out, "Saved as ")
}

func TestPredictValidation(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")
	answers := writeFile(t, "answers.json", `{"daily_screen_time": 30, "app_sessions": 10}`)

	run, err := execute(t, db, "", "predict", "mobile", "-f", answers)
	require.Error(t, err)
	assert.Contains(t, run.stderr.String(), "Gaming Time is required")
	assert.Contains(t, run.stderr.String(), "daily_screen_time must be between 0 and 24")
}

func TestPredictErrors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown service", []string{"predict", "weather", "-f", "x.yaml"}, "unknown service"},
		{"no answers", []string{"predict", "stress"}, "either --file or --interactive"},
		{"bad extension", []string{"predict", "stress", "-f", writeFile(t, "answers.txt", "a: 1")}, "unsupported extension"},
		{"bad limit", []string{"history", "stress", "--limit", "0"}, "--limit must be at least 1"},
		{"bad variant", []string{"schema", "stress", "--variant", "web"}, "--variant must be api or cli"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, db, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSchema(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")

	run, err := execute(t, db, "", "schema", "stress")
	require.NoError(t, err)
	out := run.stdout.String()
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "heart_rate")
	assert.Contains(t, out, "estimated")

	run, err = execute(t, db, "", "schema", "mental", "--variant", "api")
	require.NoError(t, err)
	assert.Contains(t, run.stdout.String(), "profile:age")
}

func TestTips(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")

	run, err := execute(t, db, "", "tips", "mobile")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(run.stdout.String(), "1. Practice the 20-20-20 rule"))
}
