package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ErrMissingToken is returned when a remote command runs without a GitHub token
var ErrMissingToken = errors.New("GITHUB_TOKEN is not set")

// EnvPrefix namespaces every setting in the environment
const EnvPrefix = "PORTSYNC"

// Setting keys. Flags use the same names.
const (
	KeyToken               = "token"
	KeyCache               = "cache"
	KeyRepoPath            = "repo-path"
	KeyDryRun              = "dry-run"
	KeyLimit               = "limit"
	KeyLogLevel            = "log-level"
	KeyPageSize            = "page-size"
	KeyFileRefetchAttempts = "file-refetch-attempts"
	KeyCron                = "cron"
)

const (
	DefaultCachePath           = "./pr_cache.json"
	DefaultLimit               = 10
	DefaultPageSize            = 100
	DefaultFileRefetchAttempts = 3
	DefaultLogLevel            = "info"
	DefaultCron                = "0 * * * *"
)

// Config is the resolved runtime configuration for one invocation
type Config struct {
	Token               string
	CachePath           string
	RepoPath            string // local clone of the source repository; empty means compare remotely
	DryRun              bool
	Limit               int
	LogLevel            string
	PageSize            int
	FileRefetchAttempts int
	Cron                string

	Vocabulary *Vocabulary
}

// SetDefaults registers defaults and environment bindings on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyCache, DefaultCachePath)
	v.SetDefault(KeyRepoPath, "")
	v.SetDefault(KeyDryRun, false)
	v.SetDefault(KeyLimit, DefaultLimit)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyPageSize, DefaultPageSize)
	v.SetDefault(KeyFileRefetchAttempts, DefaultFileRefetchAttempts)
	v.SetDefault(KeyCron, DefaultCron)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// The bare names are what the hosted workflow exports.
	_ = v.BindEnv(KeyToken, EnvPrefix+"_TOKEN", "GITHUB_TOKEN")
	_ = v.BindEnv(KeyDryRun, EnvPrefix+"_DRY_RUN", "DRY_RUN")
	_ = v.BindEnv(KeyLimit, EnvPrefix+"_LIMIT", "LIMIT")
}

// Load resolves the configuration from v and the compiled-in vocabulary
func Load(v *viper.Viper) (*Config, error) {
	vocab, err := LoadVocabulary()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Token:               strings.TrimSpace(v.GetString(KeyToken)),
		CachePath:           v.GetString(KeyCache),
		RepoPath:            v.GetString(KeyRepoPath),
		DryRun:              v.GetBool(KeyDryRun),
		Limit:               v.GetInt(KeyLimit),
		LogLevel:            v.GetString(KeyLogLevel),
		PageSize:            v.GetInt(KeyPageSize),
		FileRefetchAttempts: v.GetInt(KeyFileRefetchAttempts),
		Cron:                v.GetString(KeyCron),
		Vocabulary:          vocab,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the runtime knobs. The token is checked separately by
// RequireToken since offline commands do not need it.
func (c *Config) Validate() error {
	var errs []error
	if c.CachePath == "" {
		errs = append(errs, errors.New("cache path must not be empty"))
	}
	if c.Limit < 0 {
		errs = append(errs, fmt.Errorf("limit must not be negative, got %d", c.Limit))
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		errs = append(errs, fmt.Errorf("page size must be between 1 and 100, got %d", c.PageSize))
	}
	if c.FileRefetchAttempts < 1 {
		errs = append(errs, fmt.Errorf("file refetch attempts must be at least 1, got %d", c.FileRefetchAttempts))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// RequireToken fails fast when no token is available
func (c *Config) RequireToken() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	return nil
}
