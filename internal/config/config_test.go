package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("server.read_timeout = %v, want 30s", cfg.Server.ReadTimeout)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("log defaults = %q/%q, want info/json", cfg.Log.Level, cfg.Log.Format)
	}
	if cfg.Agent.APIVersion == "" {
		t.Error("agent.api_version default missing")
	}
	if cfg.KnowledgeBase.Enabled {
		t.Error("knowledge_base.enabled should default to false")
	}
	if cfg.Worker.GeneralPoolSize != 50 || cfg.Worker.StoragePoolSize != 10 {
		t.Errorf("worker pool defaults = %d/%d", cfg.Worker.GeneralPoolSize, cfg.Worker.StoragePoolSize)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("AZURE_SUBSCRIPTION_ID", "343c17eb-0000-0000-0000-000000000000")
	t.Setenv("KNOWLEDGE_BASE_CONTAINER", "kb-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Azure.SubscriptionID != "343c17eb-0000-0000-0000-000000000000" {
		t.Errorf("azure.subscription_id = %q", cfg.Azure.SubscriptionID)
	}
	if cfg.KnowledgeBase.Container != "kb-test" {
		t.Errorf("knowledge_base.container = %q, want kb-test", cfg.KnowledgeBase.Container)
	}
}

func TestLoad_EnvOnly(t *testing.T) {
	// Keys without a file entry must still pick up their environment
	// variables.
	t.Setenv("AZURE_SUBSCRIPTION_ID", "343c17eb-0000-0000-0000-000000000000")
	t.Setenv("AZURE_RESOURCE_GROUP", "rg-ops")
	t.Setenv("AZURE_TENANT_ID", "tenant-1")
	t.Setenv("SERVER_API_KEY", "function-key")
	t.Setenv("AGENT_PROJECT_ENDPOINT", "https://example.services.ai.azure.com/api/projects/p")
	t.Setenv("AGENT_AGENT_ID", "asst_123")
	t.Setenv("AGENT_MODEL_DEPLOYMENT", "gpt-4o")
	t.Setenv("KNOWLEDGE_BASE_CONNECTION_STRING", "UseDevelopmentStorage=true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Azure.SubscriptionID != "343c17eb-0000-0000-0000-000000000000" {
		t.Errorf("azure.subscription_id = %q, env var not applied", cfg.Azure.SubscriptionID)
	}
	if cfg.Azure.ResourceGroup != "rg-ops" || cfg.Azure.TenantID != "tenant-1" {
		t.Errorf("azure env vars not applied: %+v", cfg.Azure)
	}
	if cfg.Server.APIKey != "function-key" {
		t.Errorf("server.api_key = %q, env var not applied", cfg.Server.APIKey)
	}
	if cfg.Agent.ProjectEndpoint != "https://example.services.ai.azure.com/api/projects/p" {
		t.Errorf("agent.project_endpoint = %q, env var not applied", cfg.Agent.ProjectEndpoint)
	}
	if cfg.Agent.AgentID != "asst_123" || cfg.Agent.ModelDeployment != "gpt-4o" {
		t.Errorf("agent env vars not applied: %+v", cfg.Agent)
	}
	if cfg.KnowledgeBase.ConnectionString != "UseDevelopmentStorage=true" {
		t.Errorf("knowledge_base.connection_string = %q, env var not applied", cfg.KnowledgeBase.ConnectionString)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for port 0")
	}

	cfg.Server.Port = 8080
	cfg.KnowledgeBase.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for kb enabled without connection string")
	}

	cfg.KnowledgeBase.ConnectionString = "UseDevelopmentStorage=true"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidate_AgentPairing(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 8080

	cfg.Agent.AgentID = "asst_123"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for agent_id without project_endpoint")
	}

	cfg.Agent.AgentID = ""
	cfg.Agent.ProjectEndpoint = "https://example.services.ai.azure.com/api/projects/p"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for project_endpoint without agent_id or model_deployment")
	}

	// The provisioning path carries a model deployment instead of an id.
	cfg.Agent.ModelDeployment = "gpt-4o"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil for provisioning config", err)
	}

	cfg.Agent.ModelDeployment = ""
	cfg.Agent.AgentID = "asst_123"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil for fully configured agent", err)
	}
}

func TestAgentConfigured(t *testing.T) {
	cfg := &Config{}
	if cfg.AgentConfigured() {
		t.Error("empty agent config must not report configured")
	}
	cfg.Agent.ProjectEndpoint = "https://example.services.ai.azure.com/api/projects/p"
	cfg.Agent.AgentID = "asst_123"
	if !cfg.AgentConfigured() {
		t.Error("expected configured agent")
	}
}
