package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

const (
	EnvAgentName        = "TARIFF_AGENT_NAME"
	EnvAgentProvider    = "TARIFF_AGENT_PROVIDER_NAME"
	EnvAgentBaseURL     = "TARIFF_AGENT_BASE_URL"
	EnvAgentToken       = "TARIFF_AGENT_TOKEN"
	EnvAgentDeployment  = "TARIFF_AGENT_DEPLOYMENT"
	EnvAgentAPIVersion  = "TARIFF_AGENT_API_VERSION"
	EnvAgentAuthType    = "TARIFF_AGENT_AUTH_TYPE"
	EnvAgentModel       = "TARIFF_AGENT_MODEL"
	EnvAgentTimeout     = "TARIFF_AGENT_TIMEOUT"
	EnvAgentTemperature = "TARIFF_AGENT_TEMPERATURE"
	EnvAgentMaxTokens   = "TARIFF_AGENT_MAX_TOKENS"
)

// Agent providers. Ollama and Azure run through the go-agents client; openai
// targets any OpenAI-compatible chat completion endpoint directly.
const (
	ProviderOllama = "ollama"
	ProviderAzure  = "azure"
	ProviderOpenAI = "openai"
)

var providers = []string{ProviderOllama, ProviderAzure, ProviderOpenAI}

// AgentConfig holds the chat endpoint shared by every collaborating agent.
type AgentConfig struct {
	Name        string   `toml:"name"`
	Provider    string   `toml:"provider"`
	BaseURL     string   `toml:"base_url"`
	Token       string   `toml:"token"`
	Deployment  string   `toml:"deployment"`
	APIVersion  string   `toml:"api_version"`
	AuthType    string   `toml:"auth_type"`
	Model       string   `toml:"model"`
	Timeout     string   `toml:"timeout"`
	Temperature *float32 `toml:"temperature"`
	MaxTokens   int      `toml:"max_tokens"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *AgentConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// UsesAgentClient reports whether calls go through the go-agents client.
func (c *AgentConfig) UsesAgentClient() bool {
	return c.Provider != ProviderOpenAI
}

// Agent converts the configuration to a finalized go-agents AgentConfig.
func (c *AgentConfig) Agent() (gaconfig.AgentConfig, error) {
	ac := gaconfig.AgentConfig{
		Name: c.Name,
		Provider: &gaconfig.ProviderConfig{
			Name:    c.Provider,
			BaseURL: c.BaseURL,
			Options: make(map[string]any),
		},
		Model: &gaconfig.ModelConfig{
			Name:         c.Model,
			Capabilities: map[string]map[string]any{"chat": c.chatOptions()},
		},
	}

	setOption := func(key, value string) {
		if value != "" {
			ac.Provider.Options[key] = value
		}
	}
	setOption("token", c.Token)
	setOption("deployment", c.Deployment)
	setOption("api_version", c.APIVersion)
	setOption("auth_type", c.AuthType)

	if err := FinalizeAgent(&ac); err != nil {
		return gaconfig.AgentConfig{}, err
	}
	return ac, nil
}

func (c *AgentConfig) chatOptions() map[string]any {
	opts := make(map[string]any)
	if c.Temperature != nil {
		opts["temperature"] = float64(*c.Temperature)
	}
	if c.MaxTokens > 0 {
		opts["max_tokens"] = c.MaxTokens
	}
	return opts
}

// FinalizeAgent fills a go-agents AgentConfig from DefaultAgentConfig and
// validates it.
func FinalizeAgent(c *gaconfig.AgentConfig) error {
	defaults := gaconfig.DefaultAgentConfig()
	defaults.Merge(c)
	*c = defaults

	if c.Name == "" {
		return fmt.Errorf("name required")
	}
	if c.Provider == nil || c.Provider.Name == "" {
		return fmt.Errorf("provider name required")
	}
	if c.Model == nil {
		return fmt.Errorf("model required")
	}
	return nil
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *AgentConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *AgentConfig) Merge(overlay *AgentConfig) {
	if overlay.Name != "" {
		c.Name = overlay.Name
	}
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.Deployment != "" {
		c.Deployment = overlay.Deployment
	}
	if overlay.APIVersion != "" {
		c.APIVersion = overlay.APIVersion
	}
	if overlay.AuthType != "" {
		c.AuthType = overlay.AuthType
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.Temperature != nil {
		c.Temperature = overlay.Temperature
	}
	if overlay.MaxTokens != 0 {
		c.MaxTokens = overlay.MaxTokens
	}
}

func (c *AgentConfig) loadDefaults() {
	if c.Name == "" {
		c.Name = "tariff-agent"
	}
	if c.Provider == "" {
		c.Provider = ProviderOllama
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:11434"
	}
	if c.Model == "" {
		c.Model = "llama3.1:8b"
	}
	if c.Timeout == "" {
		c.Timeout = "2m"
	}
	if c.Temperature == nil {
		t := float32(0.1)
		c.Temperature = &t
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 4096
	}
}

func (c *AgentConfig) loadEnv() {
	set := func(env string, field *string) {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}
	set(EnvAgentName, &c.Name)
	set(EnvAgentProvider, &c.Provider)
	set(EnvAgentBaseURL, &c.BaseURL)
	set(EnvAgentToken, &c.Token)
	set(EnvAgentDeployment, &c.Deployment)
	set(EnvAgentAPIVersion, &c.APIVersion)
	set(EnvAgentAuthType, &c.AuthType)
	set(EnvAgentModel, &c.Model)
	set(EnvAgentTimeout, &c.Timeout)

	if v := os.Getenv(EnvAgentTemperature); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			t := float32(f)
			c.Temperature = &t
		}
	}
	if v := os.Getenv(EnvAgentMaxTokens); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxTokens = n
		}
	}
}

func (c *AgentConfig) validate() error {
	if !slices.Contains(providers, c.Provider) {
		return fmt.Errorf("provider must be one of %v", providers)
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url required")
	}
	if c.Model == "" {
		return fmt.Errorf("model required")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if *c.Temperature < 0 || *c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("max_tokens must be positive")
	}
	if c.UsesAgentClient() {
		if _, err := c.Agent(); err != nil {
			return fmt.Errorf("agent: %w", err)
		}
	}
	return nil
}
