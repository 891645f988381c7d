package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/joescharf/dokploy-deploy/internal/config"
)

var configForce bool

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = defaultConfigDir

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "dokploy-deploy"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage dokploy-deploy configuration.

Settings come from DOKPLOY_* environment variables, then
~/.config/dokploy-deploy/.env, then the config file.

Running bare 'dokploy-deploy config' is the same as 'dokploy-deploy config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with commented defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration with sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configEditRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

// configTemplate is the template for generating config.yaml with comments.
// Secrets are left commented out; prefer DOKPLOY_API_KEY in the environment.
const configTemplate = `# dokploy-deploy configuration
# See: dokploy-deploy config show (for effective values and sources)

# Dokploy instance URL (env: DOKPLOY_URL)
url: "{{ .URL }}"

# API key from the Dokploy dashboard (env: DOKPLOY_API_KEY)
# api_key: ""

# Wildcard domain for application hosts (env: DOKPLOY_DOMAIN)
domain: "{{ .Domain }}"

# Per-application settings
deploy:
  # Branch linked to each application (default: main)
  branch: "{{ .Branch }}"

  # Container port the domain routes to (default: 3000)
  port: {{ .Port }}

  # Certificate for each domain: letsencrypt, none or custom (default: letsencrypt)
  certificate_type: "{{ .CertificateType }}"

# Structure detection
monorepo:
  # Treat apps/, packages/ or root directories as a monorepo even without
  # workspace config files (default: true)
  heuristic_fallback: {{ .HeuristicFallback }}

# Dokploy API client
api:
  # Maximum requests per second, 0 for unlimited (default: 5)
  rate_limit: {{ .RateLimit }}

# Local record of deploy runs
history:
  enabled: {{ .HistoryEnabled }}
  # db_path: {{ .HistoryDBPath }}
`

type configTemplateData struct {
	URL               string
	Domain            string
	Branch            string
	Port              int
	CertificateType   string
	HeuristicFallback bool
	RateLimit         int
	HistoryEnabled    bool
	HistoryDBPath     string
}

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting existing config file")
	}

	// Build template data from current viper values
	data := configTemplateData{
		URL:               viper.GetString("url"),
		Domain:            viper.GetString("domain"),
		Branch:            viper.GetString("deploy.branch"),
		Port:              viper.GetInt("deploy.port"),
		CertificateType:   viper.GetString("deploy.certificate_type"),
		HeuristicFallback: viper.GetBool("monorepo.heuristic_fallback"),
		RateLimit:         viper.GetInt("api.rate_limit"),
		HistoryEnabled:    viper.GetBool("history.enabled"),
		HistoryDBPath:     viper.GetString("history.db_path"),
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execute error: %w", err)
	}

	if dryRun {
		ui.DryRunMsg("Would create config file: %s", cfgPath)
		fmt.Fprintln(ui.Out)
		fmt.Fprint(ui.Out, buf.String())
		return nil
	}

	// Create config directory
	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.Success("Config file created: %s", cfgPath)
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, buf.String())
	return nil
}

// configKeyInfo describes a config key for display purposes.
type configKeyInfo struct {
	Key    string
	EnvVar string
}

var configKeys = []configKeyInfo{
	{Key: "url", EnvVar: "DOKPLOY_URL"},
	{Key: "api_key", EnvVar: "DOKPLOY_API_KEY"},
	{Key: "domain", EnvVar: "DOKPLOY_DOMAIN"},
	{Key: "deploy.branch", EnvVar: "DOKPLOY_DEPLOY_BRANCH"},
	{Key: "deploy.port", EnvVar: "DOKPLOY_DEPLOY_PORT"},
	{Key: "deploy.certificate_type", EnvVar: "DOKPLOY_DEPLOY_CERTIFICATE_TYPE"},
	{Key: "monorepo.heuristic_fallback", EnvVar: "DOKPLOY_MONOREPO_HEURISTIC_FALLBACK"},
	{Key: "api.rate_limit", EnvVar: "DOKPLOY_API_RATE_LIMIT"},
	{Key: "history.enabled", EnvVar: "DOKPLOY_HISTORY_ENABLED"},
	{Key: "history.db_path", EnvVar: "DOKPLOY_HISTORY_DB_PATH"},
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if config file exists
	if _, err := os.Stat(cfgPath); err == nil {
		ui.Info("Config file: %s", cfgPath)
	} else {
		ui.Info("Config file: (none)")
	}
	fmt.Fprintln(ui.Out)

	// Read config file values to determine file source
	fileValues := readConfigFileValues(cfgPath)

	for _, k := range configKeys {
		val := viper.Get(k.Key)
		if k.Key == "api_key" {
			val = config.MaskKey(viper.GetString(k.Key))
		}
		source := detectSource(k.Key, k.EnvVar, fileValues)
		fmt.Fprintf(ui.Out, "  %-30s %v  %s\n", k.Key, val, source)
	}

	return nil
}

// readConfigFileValues reads the raw YAML file and returns a flat map of keys present in it.
func readConfigFileValues(path string) map[string]bool {
	result := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		return result
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return result
	}

	// Flatten nested keys with dot notation
	flattenKeys("", parsed, result)
	return result
}

// flattenKeys recursively flattens a nested map to dot-notation keys.
func flattenKeys(prefix string, m map[string]any, result map[string]bool) {
	for key, val := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenKeys(fullKey, nested, result)
		} else {
			result[fullKey] = true
		}
	}
}

// detectSource determines where a config value is coming from.
func detectSource(key, envVar string, fileValues map[string]bool) string {
	if _, ok := os.LookupEnv(envVar); ok {
		return fmt.Sprintf("(env: %s)", envVar)
	}
	if fileValues[key] {
		return "(file)"
	}
	return "(default)"
}

func configEditRun() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return fmt.Errorf("$EDITOR is not set, set it to your preferred editor (e.g. export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s (run 'dokploy-deploy config init' first)", cfgPath)
	}

	if dryRun {
		ui.DryRunMsg("Would open %s in %s", cfgPath, editor)
		return nil
	}

	editCmd := exec.Command(editor, cfgPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	return editCmd.Run()
}
