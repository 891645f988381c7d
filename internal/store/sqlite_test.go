package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/dokploy-deploy/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	err = s.Migrate(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })
	return s
}

func newTestRun(project string, created time.Time) *models.Run {
	return &models.Run{
		ProjectName: project,
		ProjectID:   "proj-" + project,
		RootPath:    "/src/" + project,
		RemoteURL:   "https://github.com/acme/" + project,
		MultiApp:    true,
		Status:      models.RunStatusPartial,
		CreatedAt:   created,
		Apps: []*models.RunApp{
			{
				Name:          "web",
				BuildPath:     "apps/web",
				ApplicationID: "app-1",
				Host:          project + "-web.example.com",
				EnvFile:       ".env",
				Status:        models.RunStatusSucceeded,
				Steps: []models.StepRecord{
					{Step: "create_application", Status: "ok", Detail: "app-1"},
					{Step: "trigger_deploy", Status: "ok"},
				},
			},
			{
				Name:      "api",
				BuildPath: "apps/api",
				Host:      project + "-api.example.com",
				SharedEnv: true,
				Status:    models.RunStatusFailed,
				Steps: []models.StepRecord{
					{Step: "create_application", Status: "failed", Detail: "conflict"},
				},
			},
		},
	}
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "subdir", "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, "subdir"))
	assert.NoError(t, err, "should create parent directory")
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Running migrate again should be a no-op
	err := s.Migrate(ctx)
	assert.NoError(t, err)
}

func TestCreateAndGetRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := newTestRun("shop", time.Now().UTC().Truncate(time.Second))
	require.NoError(t, s.CreateRun(ctx, run))
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, run.ID, run.Apps[0].RunID)
	assert.Equal(t, 1, run.Apps[1].Position)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "shop", got.ProjectName)
	assert.Equal(t, "proj-shop", got.ProjectID)
	assert.True(t, got.MultiApp)
	assert.Equal(t, models.RunStatusPartial, got.Status)
	assert.True(t, run.CreatedAt.Equal(got.CreatedAt))

	require.Len(t, got.Apps, 2)
	assert.Equal(t, "web", got.Apps[0].Name)
	assert.Equal(t, "apps/web", got.Apps[0].BuildPath)
	assert.Equal(t, ".env", got.Apps[0].EnvFile)
	assert.False(t, got.Apps[0].SharedEnv)
	assert.Equal(t, run.Apps[0].Steps, got.Apps[0].Steps)

	assert.Equal(t, "api", got.Apps[1].Name)
	assert.True(t, got.Apps[1].SharedEnv)
	assert.Equal(t, models.RunStatusFailed, got.Apps[1].Status)
	assert.Empty(t, got.Apps[1].ApplicationID)
}

func TestGetRun_ByPrefix(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := newTestRun("shop", time.Now().UTC())
	require.NoError(t, s.CreateRun(ctx, run))

	got, err := s.GetRun(ctx, run.ID[:12])
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
}

func TestGetRun_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetRun(context.Background(), "01NOPE")
	assert.ErrorContains(t, err, "run not found")

	_, err = s.GetRun(context.Background(), "")
	assert.Error(t, err)
}

func TestGetRun_WildcardsMatchLiterally(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateRun(ctx, newTestRun("shop", time.Now().UTC())))

	for _, id := range []string{"%", "_", "0_", `\`} {
		_, err := s.GetRun(ctx, id)
		assert.ErrorContains(t, err, "run not found", "id %q", id)
	}
}

func TestLikePrefix(t *testing.T) {
	assert.Equal(t, "01AB%", likePrefix("01ab"))
	assert.Equal(t, `\%\_\\%`, likePrefix(`%_\`))
}

func TestListRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, s.CreateRun(ctx, newTestRun("shop", base)))
	require.NoError(t, s.CreateRun(ctx, newTestRun("blog", base.Add(time.Minute))))
	require.NoError(t, s.CreateRun(ctx, newTestRun("shop", base.Add(2*time.Minute))))

	all, err := s.ListRuns(ctx, RunListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "shop", all[0].ProjectName, "newest first")
	assert.Equal(t, "blog", all[1].ProjectName)
	assert.Nil(t, all[0].Apps, "list does not load applications")

	shop, err := s.ListRuns(ctx, RunListFilter{ProjectName: "shop"})
	require.NoError(t, err)
	assert.Len(t, shop, 2)

	limited, err := s.ListRuns(ctx, RunListFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestCreateRun_NoApps(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := &models.Run{ProjectName: "empty", Status: models.RunStatusSucceeded}
	require.NoError(t, s.CreateRun(ctx, run))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Apps)
	assert.False(t, got.CreatedAt.IsZero())
}
