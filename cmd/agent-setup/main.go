// Package main provisions the maintenance reporting agent: it registers the
// tool set on a new agent in the configured Foundry project and prints the
// agent id to put into agent.agent_id (or AGENT_AGENT_ID).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"cloudpasture.io/maintwatch/internal/agent"
	"cloudpasture.io/maintwatch/internal/azure"
	"cloudpasture.io/maintwatch/internal/config"
	"cloudpasture.io/maintwatch/internal/pkg/logger"
)

const instructionsTemplate = `You are a specialized Azure maintenance configuration agent.

Available functions:

1. get_maintenance_configuration_details(subscription_id, resource_group, configuration_name)
   Returns maintenance configuration schedules without VM information.
   Use when the user only needs schedule and configuration details.

2. get_maintenance_config_with_vm_status(subscription_id, resource_group, configuration_name)
   Returns configurations WITH their assigned VMs and current patch status.
   Use when the user asks about VM patch state or which VMs a configuration covers.

3. get_patch_installation_history(subscription_id, days, resource_group)
   Returns historical installation runs from Azure Update Manager.
   Use when the user asks about history, past installations or update runs.

4. diagnose_patch_failure(subscription_id, resource_group, vm_name, assessment_status)
   Returns boot diagnostics, extension statuses and guest agent health for one
   VM, with derived issues and recommendations.
   Use when a VM's patch assessment or installation failed.

Key differences:
- Maintenance configuration = SCHEDULED patching (when patches WILL run)
- VM status = CURRENT state (patches available NOW)
- Installation history = PAST runs (what patches WERE installed)
- Diagnosis = WHY a single VM's patching failed

Rules:
- Never use a resource group name as the subscription_id.
- resource_group and configuration_name are separate parameters.
- Present schedules prominently: start time, recurrence, duration, time zone.
- If nothing is found or an error occurs, say so clearly.`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	if cfg.Agent.ProjectEndpoint == "" {
		return fmt.Errorf("agent.project_endpoint (AGENT_PROJECT_ENDPOINT) must be set")
	}
	if cfg.Agent.ModelDeployment == "" {
		return fmt.Errorf("agent.model_deployment (AGENT_MODEL_DEPLOYMENT) must be set")
	}

	cred, err := azure.NewCredential(cfg.Azure.TenantID)
	if err != nil {
		return fmt.Errorf("init credential: %w", err)
	}
	client, err := agent.NewClient(cfg.Agent.ProjectEndpoint, cred, cfg.Agent.APIVersion)
	if err != nil {
		return fmt.Errorf("init agent client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	info, err := client.CreateAgent(ctx, cfg.Agent.ModelDeployment, cfg.Agent.AgentName,
		instructionsTemplate, agent.Definitions())
	if err != nil {
		return fmt.Errorf("create agent: %w", err)
	}

	fmt.Printf("created agent %q\n", info.Name)
	fmt.Printf("agent id: %s\n", info.ID)
	return nil
}
