package cli

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const peopleFile = "testdata/people.yaml"

// execute runs the full command tree with args and captures both streams.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func assertGolden(t *testing.T, name, got string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(got))
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "viewdb", cmd.Use)
	assert.Contains(t, cmd.Long, "views")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"select", "update", "explain"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err, "Command %s should exist", name)
			require.NotNil(t, sub)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	metricsFlag := cmd.PersistentFlags().Lookup("metrics")
	require.NotNil(t, metricsFlag)
	assert.Equal(t, "false", metricsFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "--format", "xml", "select", peopleFile)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}

func TestEnvironmentDefaults(t *testing.T) {
	t.Setenv("VIEWDB_FORMAT", "json")
	t.Setenv("VIEWDB_TABLE", "staff")

	cmd := NewRootCommand()
	assert.Equal(t, "json", cmd.PersistentFlags().Lookup("format").DefValue)

	sel, _, err := cmd.Find([]string{"select"})
	require.NoError(t, err)
	assert.Equal(t, "staff", sel.Flags().Lookup("table").DefValue)
}

func TestInvalidLogLevel(t *testing.T) {
	t.Setenv("VIEWDB_LOG_LEVEL", "loud")

	_, _, err := execute(t, "select", peopleFile)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "VIEWDB_LOG_LEVEL")
}

func TestVerboseLogsSelections(t *testing.T) {
	_, stderr, err := execute(t, "-v", "select", peopleFile, "--where", "team = ops")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Loaded 4 record(s)")
	assert.Contains(t, stderr, "msg=selection")
	assert.Contains(t, stderr, "op=narrow")
}

func TestMetricsFlag(t *testing.T) {
	stdout, stderr, err := execute(t, "--metrics", "select", peopleFile, "--where", "age >= 18", "--count")
	require.NoError(t, err)
	assert.Equal(t, "3 of 4 record(s) selected\n", stdout)
	assert.Contains(t, stderr, `viewdb_selections_total{op="select"} 1`)
	assert.Contains(t, stderr, `viewdb_records_scanned_total{op="narrow"} 4`)
	assert.Contains(t, stderr, `viewdb_records_selected_total{op="narrow"} 3`)
}
