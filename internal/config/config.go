// Package config resolves the Dokploy connection settings and deploy defaults
// from viper (config file, DOKPLOY_* environment variables, optional .env file).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the environment variable prefix bound through viper.AutomaticEnv.
const EnvPrefix = "DOKPLOY"

// Config is the resolved, validated run configuration. It is read-only after Load.
type Config struct {
	URL    string `env:"DOKPLOY_URL" validate:"required,url"`
	APIKey string `env:"DOKPLOY_API_KEY" validate:"required"`
	Domain string `env:"DOKPLOY_DOMAIN" validate:"required,hostname_rfc1123"`

	Deploy   DeployConfig
	Monorepo MonorepoConfig
	API      APIConfig
	History  HistoryConfig
}

// DeployConfig holds per-application defaults sent to the platform.
type DeployConfig struct {
	Branch          string `env:"DOKPLOY_DEPLOY_BRANCH" validate:"required"`
	Port            int    `env:"DOKPLOY_DEPLOY_PORT" validate:"min=1,max=65535"`
	CertificateType string `env:"DOKPLOY_DEPLOY_CERTIFICATE_TYPE" validate:"oneof=letsencrypt none custom"`
}

// MonorepoConfig tunes the structure classifier.
type MonorepoConfig struct {
	HeuristicFallback bool `env:"DOKPLOY_MONOREPO_HEURISTIC_FALLBACK"`
}

// APIConfig tunes the platform HTTP client.
type APIConfig struct {
	RateLimit int `env:"DOKPLOY_API_RATE_LIMIT" validate:"min=0"`
}

// HistoryConfig controls the local run journal.
type HistoryConfig struct {
	Enabled bool   `env:"DOKPLOY_HISTORY_ENABLED"`
	DBPath  string `env:"DOKPLOY_HISTORY_DB_PATH"`
}

// Error describes a missing or invalid required setting.
type Error struct {
	EnvVar string
	Reason string
	Hint   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s", e.EnvVar, e.Reason)
}

var hints = map[string]string{
	"DOKPLOY_URL":     "export DOKPLOY_URL=https://your-dokploy-instance.com",
	"DOKPLOY_API_KEY": "export DOKPLOY_API_KEY=your-api-token",
	"DOKPLOY_DOMAIN":  "export DOKPLOY_DOMAIN=your-wildcard-domain.com",
}

// SetDefaults registers every default on v. configDir is where the history
// database lives unless history.db_path is set.
func SetDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("url", "")
	v.SetDefault("api_key", "")
	v.SetDefault("domain", "")
	v.SetDefault("deploy.branch", "main")
	v.SetDefault("deploy.port", 3000)
	v.SetDefault("deploy.certificate_type", "letsencrypt")
	v.SetDefault("monorepo.heuristic_fallback", true)
	v.SetDefault("api.rate_limit", 5)
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.db_path", filepath.Join(configDir, "history.db"))
}

// BindEnv wires DOKPLOY_* variables into v, mapping nested keys with underscores
// (deploy.port -> DOKPLOY_DEPLOY_PORT).
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads the settings from v and validates them.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		URL:    strings.TrimSpace(v.GetString("url")),
		APIKey: strings.TrimSpace(v.GetString("api_key")),
		Domain: strings.TrimSpace(v.GetString("domain")),
		Deploy: DeployConfig{
			Branch:          v.GetString("deploy.branch"),
			Port:            v.GetInt("deploy.port"),
			CertificateType: v.GetString("deploy.certificate_type"),
		},
		Monorepo: MonorepoConfig{
			HeuristicFallback: v.GetBool("monorepo.heuristic_fallback"),
		},
		API: APIConfig{
			RateLimit: v.GetInt("api.rate_limit"),
		},
		History: HistoryConfig{
			Enabled: v.GetBool("history.enabled"),
			DBPath:  v.GetString("history.db_path"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	cfg.URL = strings.TrimSuffix(cfg.URL, "/")
	return cfg, nil
}

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return validate
}

// validate returns the first failing field as an *Error, in declaration order.
func validate(cfg *Config) error {
	err := newValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate config: %w", err)
	}

	fe := verrs[0]
	e := &Error{EnvVar: fe.Field(), Hint: hints[fe.Field()]}
	switch fe.Tag() {
	case "required":
		e.Reason = "environment variable is required"
	case "url":
		e.Reason = "must be a valid URL"
	case "hostname_rfc1123":
		e.Reason = "must be a valid domain name"
	case "oneof":
		e.Reason = fmt.Sprintf("must be one of: %s", fe.Param())
	case "min", "max":
		e.Reason = fmt.Sprintf("is out of range (%s=%s)", fe.Tag(), fe.Param())
	default:
		e.Reason = fmt.Sprintf("failed %q validation", fe.Tag())
	}
	return e
}

// MaskKey shortens an API key for log output.
func MaskKey(key string) string {
	if key == "" {
		return "not set"
	}
	if len(key) <= 10 {
		return strings.Repeat("*", len(key))
	}
	return key[:10] + "..."
}
