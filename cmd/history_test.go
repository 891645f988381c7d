package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/dokploy-deploy/internal/models"
)

func seedRun(t *testing.T, project string, status models.RunStatus) *models.Run {
	t.Helper()
	s, err := openStore(context.Background(), viper.GetString("history.db_path"))
	require.NoError(t, err)
	defer s.Close()

	run := &models.Run{
		ProjectName: project,
		ProjectID:   "proj-1",
		RootPath:    "/src/" + project,
		RemoteURL:   "https://github.com/acme/" + project,
		MultiApp:    true,
		Status:      status,
		CreatedAt:   time.Now().Add(-2 * time.Hour),
		Apps: []*models.RunApp{{
			Name:          "web",
			BuildPath:     "apps/web",
			ApplicationID: "app-1",
			Host:          project + "-web.example.com",
			EnvFile:       ".env",
			SharedEnv:     true,
			Status:        models.RunStatusPartial,
			Steps: []models.StepRecord{
				{Step: "create_application", Status: "ok", Detail: "app-1"},
				{Step: "assign_domain", Status: "failed", Detail: "domain already exists"},
			},
		}},
	}
	require.NoError(t, s.CreateRun(context.Background(), run))
	return run
}

func TestHistoryList(t *testing.T) {
	testEnv(t)
	seedRun(t, "shop", models.RunStatusPartial)
	seedRun(t, "blog", models.RunStatusSucceeded)

	require.NoError(t, historyListRun())
	out := ui.Out.(*bytes.Buffer).String()
	assert.Contains(t, out, "shop")
	assert.Contains(t, out, "blog")
	assert.Contains(t, out, "2h ago")
}

func TestHistoryList_FilterAndEmpty(t *testing.T) {
	testEnv(t)

	require.NoError(t, historyListRun())
	assert.Contains(t, ui.Out.(*bytes.Buffer).String(), "No runs recorded")

	seedRun(t, "shop", models.RunStatusPartial)
	seedRun(t, "blog", models.RunStatusSucceeded)

	historyProject = "blog"
	t.Cleanup(func() { historyProject = "" })
	ui.Out = &bytes.Buffer{}

	require.NoError(t, historyListRun())
	out := ui.Out.(*bytes.Buffer).String()
	assert.Contains(t, out, "blog")
	assert.NotContains(t, out, "shop")
}

func TestHistoryShow(t *testing.T) {
	testEnv(t)
	run := seedRun(t, "shop", models.RunStatusPartial)

	require.NoError(t, historyShowRun(run.ID[:10]))
	out := ui.Out.(*bytes.Buffer).String()
	assert.Contains(t, out, run.ID)
	assert.Contains(t, out, "https://shop-web.example.com")
	assert.Contains(t, out, ".env (shared)")
	assert.Contains(t, out, "domain already exists")

	assert.Error(t, historyShowRun("01NOPE"))
}

func TestHistory_Disabled(t *testing.T) {
	testEnv(t)
	viper.Set("history.enabled", false)

	err := historyListRun()
	assert.ErrorContains(t, err, "disabled")
}

func TestTimeAgo(t *testing.T) {
	assert.Equal(t, "just now", timeAgo(time.Now()))
	assert.Equal(t, "5m ago", timeAgo(time.Now().Add(-5*time.Minute-time.Second)))
	assert.Equal(t, "1d ago", timeAgo(time.Now().Add(-25*time.Hour)))
	assert.Equal(t, "3d ago", timeAgo(time.Now().Add(-73*time.Hour)))
}
