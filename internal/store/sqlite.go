package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/joescharf/dokploy-deploy/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer; the CLI and the MCP server
	// may share the file.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Set busy timeout so concurrent writes wait instead of failing immediately
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// boolToInt converts a bool to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// newULID generates a new ULID string.
func newULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	// Create migrations tracking table
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	// Sort by filename
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		// Check if already applied
		var count int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Runs ---

// CreateRun inserts run and its applications in one transaction.
func (s *SQLiteStore) CreateRun(ctx context.Context, run *models.Run) error {
	if run.ID == "" {
		run.ID = newULID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, project_name, project_id, root_path, remote_url, multi_app, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ProjectName, run.ProjectID, run.RootPath, run.RemoteURL,
		boolToInt(run.MultiApp), string(run.Status), run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}

	for i, app := range run.Apps {
		if app.ID == "" {
			app.ID = newULID()
		}
		app.RunID = run.ID
		app.Position = i

		steps, err := json.Marshal(app.Steps)
		if err != nil {
			return fmt.Errorf("encode steps for %s: %w", app.Name, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_apps (id, run_id, position, name, build_path, application_id, host, env_file, shared_env, status, steps)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			app.ID, app.RunID, app.Position, app.Name, app.BuildPath, app.ApplicationID,
			app.Host, app.EnvFile, boolToInt(app.SharedEnv), string(app.Status), string(steps),
		)
		if err != nil {
			return fmt.Errorf("create run app %s: %w", app.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// likeEscaper escapes LIKE wildcards so an ID prefix only matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePrefix(id string) string {
	return likeEscaper.Replace(strings.ToUpper(id)) + "%"
}

// GetRun returns the run with the given ID, or the only run whose ID starts with it.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*models.Run, error) {
	if id == "" {
		return nil, fmt.Errorf("run not found: empty id")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_name, project_id, root_path, remote_url, multi_app, status, created_at
		FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY id LIMIT 2`, id, likePrefix(id))
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}

	var run *models.Run
	for _, r := range runs {
		if r.ID == id {
			run = r
		}
	}
	if run == nil {
		switch len(runs) {
		case 0:
			return nil, fmt.Errorf("run not found: %s", id)
		case 1:
			run = runs[0]
		default:
			return nil, fmt.Errorf("ambiguous run id: %s", id)
		}
	}

	apps, err := s.listRunApps(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Apps = apps
	return run, nil
}

// ListRuns returns runs newest first, without their applications.
func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunListFilter) ([]*models.Run, error) {
	query := `SELECT id, project_name, project_id, root_path, remote_url, multi_app, status, created_at FROM runs`
	var conditions []string
	var args []any

	if filter.ProjectName != "" {
		conditions = append(conditions, "project_name = ?")
		args = append(args, filter.ProjectName)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]*models.Run, error) {
	defer func() { _ = rows.Close() }()

	var runs []*models.Run
	for rows.Next() {
		r := &models.Run{}
		var status string
		if err := rows.Scan(&r.ID, &r.ProjectName, &r.ProjectID, &r.RootPath, &r.RemoteURL, &r.MultiApp, &status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Status = models.RunStatus(status)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) listRunApps(ctx context.Context, runID string) ([]*models.RunApp, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, position, name, build_path, application_id, host, env_file, shared_env, status, steps
		FROM run_apps WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run apps: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var apps []*models.RunApp
	for rows.Next() {
		a := &models.RunApp{}
		var status, steps string
		if err := rows.Scan(&a.ID, &a.RunID, &a.Position, &a.Name, &a.BuildPath, &a.ApplicationID, &a.Host, &a.EnvFile, &a.SharedEnv, &status, &steps); err != nil {
			return nil, fmt.Errorf("scan run app: %w", err)
		}
		a.Status = models.RunStatus(status)
		if err := json.Unmarshal([]byte(steps), &a.Steps); err != nil {
			return nil, fmt.Errorf("decode steps for %s: %w", a.Name, err)
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}
