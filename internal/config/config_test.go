package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func validConfig() Config {
	c := Default()
	c.MCPServerURL = "https://tools.example.com/mcp"
	c.AzureEndpoint = "https://example.openai.azure.com"
	c.DeploymentName = "gpt-4o"
	c.Scope = "api://tools/.default"
	return c
}

func TestValidate(t *testing.T) {
	t.Run("complete config passes", func(t *testing.T) {
		cfg := validConfig()
		require.NoError(t, cfg.Validate())
	})

	t.Run("each missing required value fails", func(t *testing.T) {
		clear := []struct {
			name  string
			unset func(*Config)
		}{
			{"MCP_SERVER_URL", func(c *Config) { c.MCPServerURL = "" }},
			{"AZURE_ENDPOINT", func(c *Config) { c.AzureEndpoint = "" }},
			{"DEPLOYMENT_NAME", func(c *Config) { c.DeploymentName = "" }},
			{"SCOPE", func(c *Config) { c.Scope = "  " }},
		}
		for _, tc := range clear {
			t.Run(tc.name, func(t *testing.T) {
				cfg := validConfig()
				tc.unset(&cfg)
				err := cfg.Validate()
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.name)
			})
		}
	})
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)
	require.Equal(t, "2024-02-15-preview", cfg.APIVersion)
	require.Equal(t, Duration(30*time.Second), cfg.MCPTimeout)
	require.Equal(t, 20, cfg.MaxToolTurns)
	require.NotEmpty(t, cfg.Instructions)
	require.NotEmpty(t, cfg.SystemPrompt)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MCP_SERVER_URL", "https://env.example.com/mcp")
	t.Setenv("AZURE_ENDPOINT", "https://env.openai.azure.com")
	t.Setenv("DEPLOYMENT_NAME", "gpt-4o-mini")
	t.Setenv("API_VERSION", "2024-06-01")
	t.Setenv("SCOPE", "api://env/.default")

	cfg, err := Ensure()
	require.NoError(t, err)
	require.Equal(t, "https://env.example.com/mcp", cfg.MCPServerURL)
	require.Equal(t, "https://env.openai.azure.com", cfg.AzureEndpoint)
	require.Equal(t, "gpt-4o-mini", cfg.DeploymentName)
	require.Equal(t, "2024-06-01", cfg.APIVersion)
	require.Equal(t, "api://env/.default", cfg.Scope)
	require.NoError(t, cfg.Validate())
}

func TestEnsureCreatesSettingsFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Ensure()
	require.NoError(t, err)
	require.FileExists(t, cfg.SettingsPath)

	// The generated file must itself be valid YAML for the next load.
	var reparsed Config
	content, err := os.ReadFile(cfg.SettingsPath)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(content, &reparsed))
}

func TestYAMLSettingsAreLoaded(t *testing.T) {
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(
		"mcp-server-url: https://file.example.com/mcp\nmcp-timeout: 45s\n",
	), &cfg))
	require.Equal(t, "https://file.example.com/mcp", cfg.MCPServerURL)
	require.Equal(t, Duration(45*time.Second), cfg.MCPTimeout)
}
