package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with the given args and returns captured stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRun_RecordsScenario(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "results.db")

	out, err := execute(t, "run", "--db", dbPath, "testdata/mine_only.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, `Scenario "mine-only" completed after 3 tick(s).`)
	assert.Contains(t, out, "Recorded run ")

	// The recorded run is visible to report.
	out, err = execute(t, "report", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "scenario: mine-only")
	assert.Contains(t, out, "shipping")
	assert.Contains(t, out, "drum")
}

func TestRun_JSONOutput(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "results.db")

	out, err := execute(t, "--format", "json", "run", "--db", dbPath, "testdata/mine_only.yaml")
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   RunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "mine-only", resp.Data.Scenario)
	assert.Equal(t, int64(3), resp.Data.Ticks)
	assert.Equal(t, 1, resp.Data.Facilities)
	assert.NotEmpty(t, resp.Data.RunID)
}

func TestRun_UntilOverridesDuration(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "results.db")

	out, err := execute(t, "run", "--db", dbPath, "testdata/mine_only.yaml", "--until", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "completed after 1 tick(s)")
}

func TestRun_MissingScenario(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "results.db")

	_, err := execute(t, "run", "--db", dbPath, "testdata/does_not_exist.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRun_RequiresDatabaseFlag(t *testing.T) {
	_, err := execute(t, "run", "testdata/mine_only.yaml")
	require.Error(t, err)
}

func TestReport_NoRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")

	_, err := execute(t, "report", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no runs")
}

func TestReport_UnknownRunID(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "results.db")

	_, err := execute(t, "run", "--db", dbPath, "testdata/mine_only.yaml")
	require.NoError(t, err)

	_, err = execute(t, "report", "--db", dbPath, "--run", "no-such-run")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReport_JSONOutput(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "results.db")

	_, err := execute(t, "run", "--db", dbPath, "testdata/mine_only.yaml")
	require.NoError(t, err)

	out, err := execute(t, "--format", "json", "report", "--db", dbPath)
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "mine-only", resp.Data.Run.Scenario)
	require.Len(t, resp.Data.Stores, 1)
	assert.Equal(t, "shipping", resp.Data.Stores[0].Store)
	assert.Equal(t, 12, resp.Data.Stores[0].Count)
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, 4800.0, resp.Data.Items[0].WeightKG)
}
