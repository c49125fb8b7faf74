package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dataslice/internal/testutil"
)

const (
	harnessScenarios = "../harness/testdata/scenarios"
	harnessGolden    = "../harness/testdata/golden"
)

const failingScenario = `
name: too_many_cities
description: no slice has a hundred cities
homework_set: hw1
students: [student-1]
queries:
  - {name: cities, sql: "SELECT DISTINCT City FROM Students"}
assertions:
  - {type: query_rows, query: cities, min: 100}
`

// copyScenario copies a harness scenario into dir and returns its path.
func copyScenario(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(harnessScenarios, name))
	require.NoError(t, err)
	return testutil.WriteFile(t, dir, name, string(data))
}

func TestCheckText(t *testing.T) {
	stdout, _, err := execute(t, "check", harnessScenarios, "--golden", harnessGolden)
	require.NoError(t, err)

	assert.Contains(t, stdout, "✓ exercise3_reference_queries")
	assert.Contains(t, stdout, "✓ sampled_small_bounds")
	assert.Contains(t, stdout, "Check Summary: 2 passed, 0 failed, 2 total")
	assert.Contains(t, stdout, "✓ All scenarios passed")
}

func TestCheckJSON(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "check", harnessScenarios, "--golden", harnessGolden)
	require.NoError(t, err)

	status, res := decodeData[CheckResult](t, stdout)
	assert.Equal(t, "ok", status)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 2, res.Passed)
	require.Len(t, res.Scenarios, 2)
	assert.Equal(t, ScenarioResult{Name: "exercise3_reference_queries", Pass: true, Golden: GoldenMatch}, res.Scenarios[0])
	assert.Equal(t, ScenarioResult{Name: "sampled_small_bounds", Pass: true, Golden: GoldenMissing}, res.Scenarios[1])
}

func TestCheckFilter(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "check", harnessScenarios, "--filter", "sampled*")
	require.NoError(t, err)

	_, res := decodeData[CheckResult](t, stdout)
	require.Len(t, res.Scenarios, 1)
	assert.Equal(t, "sampled_small_bounds", res.Scenarios[0].Name)
}

func TestCheckUpdateThenMatch(t *testing.T) {
	dir := t.TempDir()
	copyScenario(t, dir, "exercise3_reference_queries.yaml")

	stdout, _, err := execute(t, "check", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ exercise3_reference_queries (golden updated)")

	got, err := os.ReadFile(filepath.Join(dir, "golden", "exercise3_reference_queries.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(harnessGolden, "exercise3_reference_queries.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	stdout, _, err = execute(t, "--format", "json", "check", dir)
	require.NoError(t, err)
	_, res := decodeData[CheckResult](t, stdout)
	require.Len(t, res.Scenarios, 1)
	assert.Equal(t, GoldenMatch, res.Scenarios[0].Golden)
}

func TestCheckGoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	copyScenario(t, dir, "exercise3_reference_queries.yaml")
	testutil.WriteFile(t, dir, "golden/exercise3_reference_queries.golden", `{"stale":true}`)

	stdout, _, err := execute(t, "check", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, stdout, "✗ exercise3_reference_queries")
	assert.Contains(t, stdout, "trace does not match golden file")
	assert.Contains(t, stdout, "Check Summary: 0 passed, 1 failed, 1 total")
}

func TestCheckFailingAssertion(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "too_many_cities.yaml", failingScenario)

	stdout, _, err := execute(t, "--format", "json", "check", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string      `json:"code"`
			Message string      `json:"message"`
			Details CheckResult `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, decodeInto(stdout, &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeScenario, resp.Error.Code)
	assert.Equal(t, "1 scenario(s) failed", resp.Error.Message)
	require.Len(t, resp.Error.Details.Scenarios, 1)

	sr := resp.Error.Details.Scenarios[0]
	assert.False(t, sr.Pass)
	assert.Equal(t, GoldenMissing, sr.Golden)
	require.Len(t, sr.Errors, 1)
	assert.Contains(t, sr.Errors[0], "student-1: assertion failed: query_rows")
}

func TestCheckLoadError(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "broken.yaml", "name: broken\nassertion: []\n")

	stdout, _, err := execute(t, "check", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ broken.yaml")
	assert.Contains(t, stdout, "failed to load scenario")
}

func TestCheckEmptyDir(t *testing.T) {
	stdout, _, err := execute(t, "check", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "No scenarios found.")
}

func TestCheckMissingDir(t *testing.T) {
	stdout, _, err := execute(t, "check", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "scenarios directory not found")
}

func TestCheckArgs(t *testing.T) {
	_, _, err := execute(t, "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
