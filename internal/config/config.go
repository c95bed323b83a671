// Package config loads azchat settings from the settings file and the
// process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	_ "embed"

	"github.com/caarlos0/env/v9"
	"gopkg.in/yaml.v3"

	"github.com/dotcommander/azchat/internal/errs"
)

//go:embed config_template.yml
var configTemplate string

const (
	defaultAPIVersion   = "2024-02-15-preview"
	defaultMCPTimeout   = Duration(30 * time.Second)
	defaultMaxToolTurns = 20

	defaultInstructions = "Use the tools to answer the questions. " +
		"Maintain context from previous messages in the conversation."
	defaultSystemPrompt = "You are a helpful AI assistant with access to various tools " +
		"through an MCP server. Use the available tools when they can help answer the " +
		"user's questions or complete their tasks."
)

// Settings holds persisted configuration loaded from the YAML settings file
// and environment variables. Environment variables win because they are
// parsed after the file.
type Settings struct {
	MCPServerURL     string        `yaml:"mcp-server-url" env:"MCP_SERVER_URL"`
	AzureEndpoint    string        `yaml:"azure-endpoint" env:"AZURE_ENDPOINT"`
	DeploymentName   string        `yaml:"deployment-name" env:"DEPLOYMENT_NAME"`
	APIVersion       string        `yaml:"api-version" env:"API_VERSION"`
	PrivateAuthority string        `yaml:"private-authority" env:"PRIVATE_AUTHORITY"`
	Scope            string        `yaml:"scope" env:"SCOPE"`
	Instructions     string        `yaml:"instructions" env:"INSTRUCTIONS"`
	SystemPrompt     string        `yaml:"system-prompt" env:"SYSTEM_PROMPT"`
	MCPTimeout       Duration      `yaml:"mcp-timeout" env:"MCP_TIMEOUT"`
	MaxToolTurns     int           `yaml:"max-tool-turns" env:"MAX_TOOL_TURNS"`
	Quiet            bool          `yaml:"quiet" env:"QUIET"`
}

// Config is the application configuration.
type Config struct {
	Settings `yaml:",inline"`

	SettingsPath string `yaml:"-" env:"-"`
}

// Ensure loads settings from disk and environment and applies defaults.
//
// It also creates the default settings file if it does not exist.
func Ensure() (Config, error) {
	var c Config
	home, err := os.UserHomeDir()
	if err != nil {
		return c, errs.Error{Err: err, Reason: "Could not determine home directory."}
	}

	sp := filepath.Join(home, ".config", "azchat", "azchat.yml")
	c.SettingsPath = sp

	if dirErr := os.MkdirAll(filepath.Dir(sp), 0o700); dirErr != nil {
		return c, errs.Error{Err: dirErr, Reason: "Could not create config directory."}
	}

	if fileErr := WriteConfigFile(sp); fileErr != nil {
		return c, fileErr
	}
	content, err := os.ReadFile(sp)
	if err != nil {
		return c, errs.Error{Err: err, Reason: "Could not read settings file."}
	}
	if err := yaml.Unmarshal(content, &c); err != nil {
		return c, errs.Error{Err: err, Reason: "Could not parse settings file."}
	}

	if err := env.Parse(&c); err != nil {
		return c, errs.Error{Err: err, Reason: "Could not parse environment into settings."}
	}

	applyDefaults(&c)
	return c, nil
}

func applyDefaults(c *Config) {
	if c.APIVersion == "" {
		c.APIVersion = defaultAPIVersion
	}
	if c.MCPTimeout == 0 {
		c.MCPTimeout = defaultMCPTimeout
	}
	if c.MaxToolTurns == 0 {
		c.MaxToolTurns = defaultMaxToolTurns
	}
	if strings.TrimSpace(c.Instructions) == "" {
		c.Instructions = defaultInstructions
	}
	if strings.TrimSpace(c.SystemPrompt) == "" {
		c.SystemPrompt = defaultSystemPrompt
	}
}

// Validate checks that every required setting is present. A missing value is
// a fatal configuration error, reported before any network call is made.
func (c *Config) Validate() error {
	type required struct {
		name  string
		value string
	}
	for _, r := range []required{
		{"MCP_SERVER_URL", c.MCPServerURL},
		{"AZURE_ENDPOINT", c.AzureEndpoint},
		{"DEPLOYMENT_NAME", c.DeploymentName},
		{"SCOPE", c.Scope},
	} {
		if strings.TrimSpace(r.value) == "" {
			return errs.Error{
				Err:    errs.UserErrorf("set %s in the environment or in %s", r.name, c.SettingsPath),
				Reason: fmt.Sprintf("%s is required.", r.name),
			}
		}
	}
	return nil
}

// WriteConfigFile creates the config file at path if it does not exist.
func WriteConfigFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return createConfigFile(path)
	} else if err != nil {
		return errs.Error{Err: err, Reason: "Could not stat settings path."}
	}
	return nil
}

func createConfigFile(path string) error {
	tmpl := template.Must(template.New("config").Parse(configTemplate))

	f, err := os.Create(path)
	if err != nil {
		return errs.Error{Err: err, Reason: "Could not create settings file."}
	}
	defer func() { _ = f.Close() }()

	m := struct{ Config Config }{Config: Default()}
	if err := tmpl.Execute(f, m); err != nil {
		return errs.Error{Err: err, Reason: "Could not render settings template."}
	}
	return nil
}

// Default returns the default configuration values.
func Default() Config {
	return Config{
		Settings: Settings{
			APIVersion:   defaultAPIVersion,
			MCPTimeout:   defaultMCPTimeout,
			MaxToolTurns: defaultMaxToolTurns,
			Instructions: defaultInstructions,
			SystemPrompt: defaultSystemPrompt,
		},
	}
}
