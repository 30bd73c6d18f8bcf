// Package config is the layered configuration loader for the proxy binary,
// adapted from the teacher's internal/app config shape and cmd/claudine
// loader, generalized from an Anthropic-OAuth credential model to this
// proxy's static OpenAI-API-key credential model (§10.4).
package config

import (
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/adrycodes/anthro-bridge/internal/credential"
)

// LogFormat selects the local log handler's encoding.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// CredentialStorageType selects the backend the credential subcommand and
// the running proxy read the stored OpenAI API key from.
type CredentialStorageType string

const (
	CredentialStorageFile    CredentialStorageType = "file"
	CredentialStorageEnv     CredentialStorageType = "env"
	CredentialStorageKeyring CredentialStorageType = "keyring"
)

const (
	DefaultLogFormat        = LogFormatText
	DefaultServerHost        = "127.0.0.1"
	DefaultServerPort        = 19000
	DefaultShutdownTimeout   = 5 * time.Second
	DefaultUpstreamBaseURL   = "https://api.openai.com/v1"
	DefaultUpstreamTimeout   = 60 * time.Second
	DefaultCredentialStorage = CredentialStorageFile
	DefaultSupervisorTag     = "anthro-bridge-proxy"
)

// ServerConfig is the Proxy Server's bind address.
type ServerConfig struct {
	Host string `json:"host" validate:"hostname_rfc1123|ip"`
	Port uint16 `json:"port"`
}

// ShutdownConfig controls graceful-shutdown behavior.
type ShutdownConfig struct {
	Timeout time.Duration `json:"timeout"`
}

// UpstreamConfig is the Upstream Client's target and policy knobs (§4.2/§4.1).
type UpstreamConfig struct {
	BaseURL        string        `json:"base_url" validate:"required,url"`
	Timeout        time.Duration `json:"timeout"`
	ForceResponses bool          `json:"force_responses"`
}

// CredentialConfig describes where the stored OpenAI API key lives.
type CredentialConfig struct {
	Storage     CredentialStorageType `json:"storage" validate:"required,oneof=file env keyring"`
	File        string                `json:"file,omitempty"`
	EnvKey      string                `json:"env_key,omitempty"`
	KeyringUser string                `json:"keyring_user,omitempty"`
}

// NewStore builds the credential.Store this config selects.
func (a *CredentialConfig) NewStore() (credential.Store, error) {
	switch a.Storage {
	case CredentialStorageFile:
		return credential.NewFileStore(a.File)
	case CredentialStorageEnv:
		return credential.NewEnvStore(a.EnvKey)
	case CredentialStorageKeyring:
		return credential.NewKeyringStore(a.KeyringUser)
	default:
		return nil, fmt.Errorf("unsupported credential storage: %s", a.Storage)
	}
}

// SupervisorConfig carries the knobs the Proxy Supervisor needs to find,
// spawn, and recognize its own proxy process (§4.5).
type SupervisorConfig struct {
	ProxyURL string `json:"proxy_url"`
	Tag      string `json:"tag"`
}

// Config is the application's fully-resolved configuration.
type Config struct {
	LogLevel   slog.Level       `json:"log_level"`
	LogFormat  LogFormat        `json:"log_format" validate:"oneof=text json"`
	Server     ServerConfig     `json:"server"`
	Shutdown   ShutdownConfig   `json:"shutdown"`
	Upstream   UpstreamConfig   `json:"upstream"`
	Credential CredentialConfig `json:"credential"`
	Supervisor SupervisorConfig `json:"supervisor"`
}

// Default returns a Config with every default applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset fields with sensible defaults, including
// storage-type-dependent dynamic defaults (file path, keyring user).
func (c *Config) ApplyDefaults() error {
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultServerHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Shutdown.Timeout == 0 {
		c.Shutdown.Timeout = DefaultShutdownTimeout
	}
	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = DefaultUpstreamBaseURL
	}
	if c.Upstream.Timeout == 0 {
		c.Upstream.Timeout = DefaultUpstreamTimeout
	}
	if c.Credential.Storage == "" {
		c.Credential.Storage = DefaultCredentialStorage
	}
	if c.Supervisor.Tag == "" {
		c.Supervisor.Tag = DefaultSupervisorTag
	}

	switch c.Credential.Storage {
	case CredentialStorageFile:
		if c.Credential.File == "" {
			dir, err := os.UserConfigDir()
			if err != nil {
				return fmt.Errorf("credential.file required (auto-detect failed: %w)", err)
			}
			c.Credential.File = filepath.Join(dir, "anthro-bridge", "credential")
		}
	case CredentialStorageKeyring:
		if c.Credential.KeyringUser == "" {
			u, err := user.Current()
			if err != nil {
				return fmt.Errorf("credential.keyring_user required (auto-detect failed: %w)", err)
			}
			c.Credential.KeyringUser = u.Username
		}
	case CredentialStorageEnv:
		// env_key has no sensible default; must be set explicitly.
	}

	return nil
}

// Validate checks struct tags plus the storage-type-specific invariants
// ApplyDefaults can't express declaratively.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	switch c.Credential.Storage {
	case CredentialStorageFile:
		if c.Credential.File == "" {
			return fmt.Errorf("file path required for file credential storage")
		}
	case CredentialStorageEnv:
		if c.Credential.EnvKey == "" {
			return fmt.Errorf("env_key required for env credential storage")
		}
	case CredentialStorageKeyring:
		if c.Credential.KeyringUser == "" {
			return fmt.Errorf("keyring_user required for keyring credential storage")
		}
	}

	return nil
}
