package internal

import (
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func validJira() JiraConfig {
	return JiraConfig{Host: "example.atlassian.net", User: "u@example.com", Token: "tok"}
}

func TestJiraConfig_Valid(t *testing.T) {
	cfg := validJira()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config should pass: %v", err)
	}
	if cfg.BaseURL() != "https://example.atlassian.net" {
		t.Errorf("BaseURL = %q", cfg.BaseURL())
	}
}

func TestJiraConfig_EmptyJQLDefaults(t *testing.T) {
	cfg := validJira()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.JQL != DefaultJQL {
		t.Errorf("JQL = %q, want default", cfg.JQL)
	}

	custom := validJira()
	custom.JQL = "project = X"
	if err := custom.Validate(); err != nil {
		t.Fatal(err)
	}
	if custom.JQL != "project = X" {
		t.Errorf("custom JQL overwritten: %q", custom.JQL)
	}
}

func TestJiraConfig_RequiresHostAndToken(t *testing.T) {
	noHost := validJira()
	noHost.Host = ""
	if err := noHost.Validate(); err == nil {
		t.Error("missing host should fail")
	}
	noToken := validJira()
	noToken.Token = ""
	if err := noToken.Validate(); err == nil {
		t.Error("missing token should fail")
	}
}

func TestVaultConfig_RequiredFields(t *testing.T) {
	cfg := VaultConfig{Path: "./vault", IssuesDir: "Jira Tickets", BoardFile: "My Jira Board.md"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid vault config should pass: %v", err)
	}
	for _, broken := range []VaultConfig{
		{IssuesDir: "x", BoardFile: "y"},
		{Path: "x", BoardFile: "y"},
		{Path: "x", IssuesDir: "y"},
	} {
		if err := broken.Validate(); err == nil {
			t.Errorf("config %+v should fail", broken)
		}
	}
}

func TestDuration_YAMLDecode(t *testing.T) {
	var cfg ApplicationConfig
	if err := yaml.Unmarshal([]byte("sync_interval: 90s\n"), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg.SyncInterval.Std() != 90*time.Second {
		t.Errorf("SyncInterval = %v", cfg.SyncInterval)
	}

	if err := yaml.Unmarshal([]byte("sync_interval: soon\n"), &cfg); err == nil {
		t.Error("invalid duration should fail to decode")
	}
}

func TestApplicationConfig_NegativeInterval(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.SyncInterval = -1
	if err := cfg.App.Validate(); err == nil {
		t.Fatal("negative interval should fail")
	}
}

func TestHTTPConfig_PortRange(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := HTTPConfig{Port: port}
		if err := cfg.Validate(); err == nil {
			t.Errorf("port %d should fail", port)
		}
	}
	cfg := HTTPConfig{Port: 8080}
	if err := cfg.Validate(); err != nil {
		t.Errorf("port 8080 should pass: %v", err)
	}
	if cfg.Address() != ":8080" {
		t.Errorf("Address = %q", cfg.Address())
	}
}

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_Validate(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Jira = validJira()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config with tracker creds should pass: %v", err)
	}

	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestNewDefaultConfig_VaultLayout(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Vault.IssuesDir != "Jira Tickets" {
		t.Errorf("IssuesDir = %q", cfg.Vault.IssuesDir)
	}
	if cfg.Vault.BoardFile != "My Jira Board.md" {
		t.Errorf("BoardFile = %q", cfg.Vault.BoardFile)
	}
	if cfg.Jira.JQL != DefaultJQL {
		t.Errorf("JQL = %q", cfg.Jira.JQL)
	}
}
