// Package config provides configuration management for maintwatch.
//
// Configuration is loaded from:
// 1. config.yaml file (optional)
// 2. Environment variables (standard names like AZURE_SUBSCRIPTION_ID, SERVER_PORT)
// 3. Default values
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration structure.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Azure         AzureConfig         `mapstructure:"azure"`
	Agent         AgentConfig         `mapstructure:"agent"`
	KnowledgeBase KnowledgeBaseConfig `mapstructure:"knowledge_base"`
	Log           LogConfig           `mapstructure:"log"`
	Worker        WorkerConfig        `mapstructure:"worker"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// APIKey guards non-public routes when set; empty disables the check
	// (local development, or when fronted by a gateway doing auth).
	APIKey string `mapstructure:"api_key"`
}

// AzureConfig contains control-plane defaults. SubscriptionID is the
// fallback when a request does not name one explicitly.
type AzureConfig struct {
	SubscriptionID string `mapstructure:"subscription_id"`
	ResourceGroup  string `mapstructure:"resource_group"`
	TenantID       string `mapstructure:"tenant_id"`
}

// AgentConfig contains Azure AI Foundry agent settings. ProjectEndpoint and
// AgentID are required only when the agent gateway is used.
type AgentConfig struct {
	ProjectEndpoint string        `mapstructure:"project_endpoint"`
	AgentID         string        `mapstructure:"agent_id"`
	ModelDeployment string        `mapstructure:"model_deployment"`
	AgentName       string        `mapstructure:"agent_name"`
	APIVersion      string        `mapstructure:"api_version"`
	RunPollInterval time.Duration `mapstructure:"run_poll_interval"`
	RunTimeout      time.Duration `mapstructure:"run_timeout"`
}

// KnowledgeBaseConfig controls response logging to blob storage.
type KnowledgeBaseConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	ConnectionString string `mapstructure:"connection_string"`
	Container        string `mapstructure:"container"`
	SchemaVersion    string `mapstructure:"schema_version"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// WorkerConfig contains worker pool settings.
type WorkerConfig struct {
	GeneralPoolSize int `mapstructure:"general_pool_size"`
	StoragePoolSize int `mapstructure:"storage_pool_size"`
}

// Load reads configuration from file and environment variables.
// Standard environment variables without prefix: AZURE_SUBSCRIPTION_ID,
// AZURE_RESOURCE_GROUP, SERVER_PORT, LOG_LEVEL, AGENT_PROJECT_ENDPOINT, …
// Nested keys map dots to underscores: knowledge_base.container →
// KNOWLEDGE_BASE_CONTAINER.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/maintwatch")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file is optional, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Validate checks for critical configuration errors.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.KnowledgeBase.Enabled && c.KnowledgeBase.ConnectionString == "" {
		return fmt.Errorf("knowledge_base.enabled requires knowledge_base.connection_string")
	}
	if c.Agent.AgentID != "" && c.Agent.ProjectEndpoint == "" {
		return fmt.Errorf("agent.agent_id requires agent.project_endpoint")
	}
	// An endpoint alone can neither run an existing agent nor provision one.
	if c.Agent.ProjectEndpoint != "" && c.Agent.AgentID == "" && c.Agent.ModelDeployment == "" {
		return fmt.Errorf("agent.project_endpoint requires agent.agent_id (or agent.model_deployment for agent-setup)")
	}
	return nil
}

// AgentConfigured reports whether the agent gateway has what it needs.
func (c *Config) AgentConfigured() bool {
	return c.Agent.ProjectEndpoint != "" && c.Agent.AgentID != ""
}

func setDefaults(v *viper.Viper) {
	// Every key needs a default, even an empty one: AutomaticEnv only
	// resolves keys viper already knows, so a key without a default would
	// ignore its environment variable when no config file is present.

	// Server
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.api_key", "")

	// Azure
	v.SetDefault("azure.subscription_id", "")
	v.SetDefault("azure.resource_group", "")
	v.SetDefault("azure.tenant_id", "")

	// Agent
	v.SetDefault("agent.project_endpoint", "")
	v.SetDefault("agent.agent_id", "")
	v.SetDefault("agent.model_deployment", "")
	v.SetDefault("agent.agent_name", "maintenance-config-agent")
	v.SetDefault("agent.api_version", "2025-05-01")
	v.SetDefault("agent.run_poll_interval", "1s")
	v.SetDefault("agent.run_timeout", "120s")

	// Knowledge base
	v.SetDefault("knowledge_base.enabled", false)
	v.SetDefault("knowledge_base.connection_string", "")
	v.SetDefault("knowledge_base.container", "agent-knowledge-workspace")
	v.SetDefault("knowledge_base.schema_version", "1.0")

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Worker pools
	v.SetDefault("worker.general_pool_size", 50)
	v.SetDefault("worker.storage_pool_size", 10)
}
