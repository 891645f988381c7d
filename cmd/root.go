package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/dokploy-deploy/internal/config"
	"github.com/joescharf/dokploy-deploy/internal/deploy"
	"github.com/joescharf/dokploy-deploy/internal/dokploy"
	"github.com/joescharf/dokploy-deploy/internal/git"
	"github.com/joescharf/dokploy-deploy/internal/monorepo"
	"github.com/joescharf/dokploy-deploy/internal/output"
	"github.com/joescharf/dokploy-deploy/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui *output.UI

	verbose bool
	dryRun  bool
)

// Constructors for external collaborators, replaceable in tests.
var (
	newGitClient    = func() git.Client { return git.NewClient() }
	newGitHubClient = func() git.GitHubClient { return git.NewGitHubClient() }
	newAPIClient    = func(cfg *config.Config) dokploy.Client {
		return dokploy.NewClient(cfg.URL, cfg.APIKey,
			dokploy.WithRateLimit(cfg.API.RateLimit),
			dokploy.WithLogger(ui),
		)
	}
)

var rootCmd = &cobra.Command{
	Use:   "dokploy-deploy",
	Short: "Deploy the current repository to Dokploy",
	Long: `dokploy-deploy deploys the repository in the current directory to a
Dokploy instance.

It makes sure the checkout has a GitHub origin (creating one with the gh CLI
when needed), decides whether the repository holds one application or a
monorepo of several, and then creates a Dokploy project with one application
per entry: source linked, domain assigned, environment injected and a first
deployment triggered.

Required settings: DOKPLOY_URL, DOKPLOY_API_KEY, DOKPLOY_DOMAIN.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return rootRun(cmd)
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/dokploy-deploy/config.yaml)")
}

func initConfig() {
	configDir, err := configDirFunc()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
		os.Exit(1)
	}

	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	config.BindEnv(viper.GetViper())
	config.SetDefaults(viper.GetViper(), configDir)

	// Values from the .env file never override the real environment.
	if err := config.LoadDotEnv(filepath.Join(configDir, ".env")); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun
}

// rootRun handles `dokploy-deploy` with no subcommand: deploy the cwd.
func rootRun(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return deployRun(ctx, cfg, cwd)
}

// loadConfig resolves and validates the settings, printing a remediation
// hint for a missing required variable.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		var cfgErr *config.Error
		if errors.As(err, &cfgErr) && cfgErr.Hint != "" {
			ui.Error("Missing or invalid configuration: %s", cfgErr.EnvVar)
			ui.Detail("%s", cfgErr.Hint)
		}
		return nil, err
	}

	ui.VerboseLog("Dokploy URL: %s", cfg.URL)
	ui.VerboseLog("API key: %s", config.MaskKey(cfg.APIKey))
	ui.VerboseLog("Domain: %s", cfg.Domain)
	return cfg, nil
}

func deployRun(ctx context.Context, cfg *config.Config, dir string) error {
	root := monorepo.NewRoot(dir)

	ui.Info("Checking git repository...")
	remoteURL, err := resolveRemote(root)
	if err != nil {
		return err
	}
	ui.VerboseLog("Remote URL: %s", remoteURL)

	ui.Info("Analyzing project structure...")
	res := monorepo.Classify(root.Path,
		monorepo.WithHeuristicFallback(cfg.Monorepo.HeuristicFallback),
		monorepo.WithReporter(ui),
	)
	printPlan(res, cfg.Domain)

	if dryRun {
		ui.DryRunMsg("Would create Dokploy project %s with %d application(s) on %s", root.Name, len(res.Entries), cfg.URL)
		return nil
	}

	orch := deploy.New(newAPIClient(cfg), deploy.Settings{
		Domain:          cfg.Domain,
		Branch:          cfg.Deploy.Branch,
		Port:            cfg.Deploy.Port,
		CertificateType: cfg.Deploy.CertificateType,
	}, ui)

	report, runErr := orch.Run(ctx, remoteURL, res)
	if report == nil {
		return runErr
	}

	fmt.Fprintln(ui.Out)
	printReport(report)
	recordRun(ctx, cfg, report, root.Path)

	if runErr != nil {
		return fmt.Errorf("deploy interrupted: %w", runErr)
	}

	succeeded, partial, failed := report.Counts()
	switch report.Status() {
	case deploy.OutcomeSucceeded:
		ui.Success("Deployed %d application(s) to project %s", succeeded, report.ProjectName)
	default:
		ui.Warning("Project %s: %d succeeded, %d partial, %d failed", report.ProjectName, succeeded, partial, failed)
		ui.Detail("Finish the failed steps in the Dokploy dashboard: %s", cfg.URL)
	}
	return nil
}

// resolveRemote returns the origin URL of the checkout, creating the
// repository when missing. In dry-run mode nothing is created.
func resolveRemote(root monorepo.Root) (string, error) {
	gc := newGitClient()

	if dryRun {
		url, err := gc.RemoteURL(root.Path)
		if err != nil && !errors.Is(err, git.ErrNotRepository) {
			return "", fmt.Errorf("read origin remote: %w", err)
		}
		if url == "" {
			ui.DryRunMsg("Would create GitHub repository %s and push", root.Name)
			return "https://github.com/" + root.Name, nil
		}
		ui.Success("Found origin remote: %s", url)
		return url, nil
	}

	res, err := git.NewResolver(gc, newGitHubClient()).Resolve(root.Path, root.Name)
	if err != nil {
		if errors.Is(err, git.ErrGHNotInstalled) || errors.Is(err, git.ErrGHNotAuthenticated) {
			ui.Error("Cannot create a GitHub repository for %s", root.Name)
		}
		return "", err
	}

	if res.Initialized {
		ui.Success("Initialized git repository")
	}
	if res.Created {
		ui.Success("Created GitHub repository: %s", res.URL)
	} else {
		ui.Success("Found origin remote: %s", res.URL)
	}
	return res.URL, nil
}

func printPlan(res monorepo.Result, domain string) {
	kind := "single application"
	if res.IsMultiApp {
		kind = "monorepo"
	}
	ui.Info("Detected %s (%s confidence)", kind, output.ConfidenceColor(string(res.Confidence)))
	for _, s := range res.Signals {
		ui.Detail("%s: %s", s.Tool, s.File)
	}

	table := ui.Table([]string{"Application", "Build Path", "Host"})
	for _, e := range res.Entries {
		table.Append([]string{
			output.Cyan(e.Name),
			e.BuildPath,
			deploy.Host(res.Root.Name, e.Name, domain, res.IsMultiApp),
		})
	}
	table.Render()
	fmt.Fprintln(ui.Out)
}

func printReport(report *deploy.Report) {
	table := ui.Table([]string{"Application", "Status", "Host", "Failed Steps"})
	for _, a := range report.Apps {
		table.Append([]string{
			output.Cyan(a.Entry.Name),
			output.OutcomeColor(string(a.Status())),
			"https://" + a.Host,
			failedSteps(a),
		})
	}
	table.Render()
	fmt.Fprintln(ui.Out)
}

func failedSteps(a deploy.AppOutcome) string {
	var names []string
	for _, s := range a.Steps {
		if s.Status == deploy.StatusFailed {
			names = append(names, string(s.Step))
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}

// recordRun stores the report in the run journal. Failures only warn.
func recordRun(ctx context.Context, cfg *config.Config, report *deploy.Report, rootPath string) {
	if !cfg.History.Enabled {
		return
	}

	s, err := openStore(ctx, cfg.History.DBPath)
	if err != nil {
		ui.Warning("Run not recorded: %v", err)
		return
	}
	defer s.Close()

	run := report.Record(rootPath)
	if err := s.CreateRun(context.WithoutCancel(ctx), run); err != nil {
		ui.Warning("Run not recorded: %v", err)
		return
	}
	ui.VerboseLog("Recorded run %s", run.ID)
}

// openStore opens and migrates the run journal at dbPath.
func openStore(ctx context.Context, dbPath string) (store.Store, error) {
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := s.Migrate(context.WithoutCancel(ctx)); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}
