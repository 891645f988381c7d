package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_Table(t *testing.T) {
	testEnv(t)
	viper.Set("domain", "example.com")
	root := shopFixture(t)

	require.NoError(t, detectRun(root))

	out := ui.Out.(*bytes.Buffer).String()
	assert.Contains(t, out, "monorepo")
	assert.Contains(t, out, "Turborepo")
	assert.Contains(t, out, "apps/api")
	assert.Contains(t, out, "shop-web.example.com")
}

func TestDetect_JSON(t *testing.T) {
	testEnv(t)
	detectJSON = true
	t.Cleanup(func() { detectJSON = false })
	root := shopFixture(t)

	require.NoError(t, detectRun(root))

	var res struct {
		MultiApp bool `json:"multi_app"`
		Entries  []struct {
			Name      string `json:"name"`
			BuildPath string `json:"build_path"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(ui.Out.(*bytes.Buffer).Bytes(), &res))
	assert.True(t, res.MultiApp)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "web", res.Entries[1].Name)
	assert.Equal(t, "apps/web", res.Entries[1].BuildPath)
}

func TestDetect_NotADirectory(t *testing.T) {
	testEnv(t)

	err := detectRun(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	root := shopFixture(t)
	err = detectRun(filepath.Join(root, "turbo.json"))
	assert.ErrorContains(t, err, "not a directory")
}
