package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUI() (*UI, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &UI{Out: out, ErrOut: errOut}, out, errOut
}

func TestInfo(t *testing.T) {
	u, out, _ := newTestUI()
	u.Info("hello %s", "world")
	assert.Contains(t, out.String(), "hello world")
}

func TestSuccess(t *testing.T) {
	u, out, _ := newTestUI()
	u.Success("done %d", 42)
	assert.Contains(t, out.String(), "done 42")
}

func TestWarning(t *testing.T) {
	u, _, errOut := newTestUI()
	u.Warning("careful %s", "now")
	assert.Contains(t, errOut.String(), "careful now")
}

func TestError(t *testing.T) {
	u, _, errOut := newTestUI()
	u.Error("failed %s", "badly")
	assert.Contains(t, errOut.String(), "failed badly")
}

func TestDetail(t *testing.T) {
	u, out, _ := newTestUI()
	u.Detail("- Host: %s", "shop.example.com")
	assert.Contains(t, out.String(), "- Host: shop.example.com")
	assert.True(t, strings.HasPrefix(out.String(), "    "))
}

func TestVerboseLog_Enabled(t *testing.T) {
	u, out, _ := newTestUI()
	u.Verbose = true
	u.VerboseLog("detail %d", 1)
	assert.Contains(t, out.String(), "detail 1")
}

func TestVerboseLog_Disabled(t *testing.T) {
	u, out, _ := newTestUI()
	u.Verbose = false
	u.VerboseLog("detail %d", 1)
	assert.Empty(t, out.String())
}

func TestDryRunMsg_Enabled(t *testing.T) {
	u, _, errOut := newTestUI()
	u.DryRun = true
	u.DryRunMsg("would create %s", "project")
	assert.Contains(t, errOut.String(), "[DRY-RUN]")
	assert.Contains(t, errOut.String(), "would create project")
}

func TestDryRunMsg_Disabled(t *testing.T) {
	u, _, errOut := newTestUI()
	u.DryRun = false
	u.DryRunMsg("would create %s", "project")
	assert.Empty(t, errOut.String())
}

func TestColorHelpers(t *testing.T) {
	assert.NotEmpty(t, Cyan("test"))
	assert.NotEmpty(t, Green("test"))
	assert.NotEmpty(t, Yellow("test"))
	assert.NotEmpty(t, Red("test"))
	assert.NotEmpty(t, Gray("test"))
}

func TestOutcomeColor(t *testing.T) {
	assert.NotEmpty(t, OutcomeColor("ok"))
	assert.NotEmpty(t, OutcomeColor("partial"))
	assert.NotEmpty(t, OutcomeColor("failed"))
	assert.Equal(t, "unknown", OutcomeColor("unknown"))
}

func TestConfidenceColor(t *testing.T) {
	assert.NotEmpty(t, ConfidenceColor("high"))
	assert.NotEmpty(t, ConfidenceColor("low"))
	assert.Equal(t, "n/a", ConfidenceColor("n/a"))
}

func TestTable(t *testing.T) {
	u, out, _ := newTestUI()
	table := u.Table([]string{"App", "Build Path"})
	require.NotNil(t, table)

	table.Append([]string{"api", "apps/api"})
	table.Append([]string{"web", "apps/web"})
	err := table.Render()
	require.NoError(t, err)

	result := out.String()
	assert.Contains(t, result, "apps/api")
	assert.Contains(t, result, "apps/web")
}
