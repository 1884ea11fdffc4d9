package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// DefaultJQL selects the current user's open issues, most recently updated
// first.
const DefaultJQL = "assignee = currentUser() AND statusCategory != Done ORDER BY updated DESC"

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Jira   JiraConfig        `yaml:"jira"`
	Vault  VaultConfig       `yaml:"vault"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Jira.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// Duration wraps time.Duration so YAML values like "5m" decode.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	dur, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(dur)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel     slog.Level `yaml:"log_level"`
	HTTP         HTTPConfig `yaml:"http"`
	SyncInterval Duration   `yaml:"sync_interval"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.SyncInterval < 0 {
		return fmt.Errorf("app: sync_interval must not be negative")
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// JiraConfig holds the tracker connection settings.
//
// With User set, authentication is basic auth with Token as the password
// (Jira Cloud API token). Without User, Token is sent as a bearer
// credential (personal access token).
type JiraConfig struct {
	Host  string `yaml:"host"`
	User  string `yaml:"user"`
	Token string `yaml:"token"`
	JQL   string `yaml:"jql"`
}

// Validate validates the tracker configuration.
func (c *JiraConfig) Validate() error {
	// An empty JQL falls back to the default query.
	if c.JQL == "" {
		c.JQL = DefaultJQL
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Host, validation.Required),
		validation.Field(&c.Token, validation.Required),
	)
}

// BaseURL returns the tracker base URL.
func (c *JiraConfig) BaseURL() string {
	return "https://" + c.Host
}

// VaultConfig holds the layout of the Markdown vault.
type VaultConfig struct {
	Path      string `yaml:"path"`
	IssuesDir string `yaml:"issues_dir"`
	BoardFile string `yaml:"board_file"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.IssuesDir, validation.Required),
		validation.Field(&c.BoardFile, validation.Required),
	)
}

// SQLiteConfig holds the sync-state index database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds API authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values. The
// issues directory and board file names match what earlier versions of the
// tool wrote, so existing vaults keep working.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
			SyncInterval: Duration(5 * time.Minute),
		},
		Jira: JiraConfig{
			JQL: DefaultJQL,
		},
		Vault: VaultConfig{
			Path:      "./vault",
			IssuesDir: "Jira Tickets",
			BoardFile: "My Jira Board.md",
		},
		SQLite: SQLiteConfig{
			Path: "./ansuz.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
