package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. GITLAB_DESK_LOG_LEVEL.
const EnvPrefix = "GITLAB_DESK"

// Configuration keys, shared with the CLI flag bindings.
const (
	KeyConfigDir      = "config_dir"
	KeyLogLevel       = "log_level"
	KeyRequestTimeout = "request_timeout"
	KeyUseKeyring     = "use_keyring"
	KeyUserAgent      = "user_agent"
)

// RegistryFile is the name of the instance registry inside the config directory.
const RegistryFile = "instances.yaml"

// Config holds application configuration.
type Config struct {
	// ConfigDir holds the instance registry and the optional config.yaml.
	ConfigDir string
	LogLevel  string
	// RequestTimeout bounds every GitLab request. 0 means the client default.
	RequestTimeout time.Duration
	// UseKeyring stores instance tokens in the OS keyring instead of the registry file.
	UseKeyring bool
	UserAgent  string
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyConfigDir, DefaultConfigDir())
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyRequestTimeout, 30*time.Second)
	v.SetDefault(KeyUseKeyring, false)
	v.SetDefault(KeyUserAgent, "")
}

// Load reads configuration from v: flags bound by the caller, GITLAB_DESK_*
// environment variables, then config.yaml in the config directory, then defaults.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	dir := v.GetString(KeyConfigDir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	timeout := v.GetDuration(KeyRequestTimeout)
	if timeout < 0 {
		return nil, fmt.Errorf("invalid %s %s: must not be negative", KeyRequestTimeout, timeout)
	}

	return &Config{
		ConfigDir:      v.GetString(KeyConfigDir),
		LogLevel:       v.GetString(KeyLogLevel),
		RequestTimeout: timeout,
		UseKeyring:     v.GetBool(KeyUseKeyring),
		UserAgent:      v.GetString(KeyUserAgent),
	}, nil
}

// RegistryPath returns the location of the instance registry file.
func (c *Config) RegistryPath() string {
	return filepath.Join(c.ConfigDir, RegistryFile)
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/gitlab-desk, falling back to
// ~/.config/gitlab-desk and finally ./.gitlab-desk.
func DefaultConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "gitlab-desk")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "gitlab-desk")
	}
	return ".gitlab-desk"
}
