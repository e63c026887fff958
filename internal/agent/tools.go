package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"cloudpasture.io/maintwatch/internal/service"
)

// ToolName identifies one agent-callable operation. The set is closed:
// dispatch is a static switch over these names, never a lookup into a
// mutable registry.
type ToolName string

const (
	ToolConfigurationDetails ToolName = "get_maintenance_configuration_details"
	ToolConfigVMStatus       ToolName = "get_maintenance_config_with_vm_status"
	ToolPatchHistory         ToolName = "get_patch_installation_history"
	ToolDiagnosePatchFailure ToolName = "diagnose_patch_failure"
)

// ReportService is the slice of the resolver the tools need.
type ReportService interface {
	ListConfigurations(ctx context.Context, subscriptionID, resourceGroup, configName string) (*service.ConfigurationListReport, error)
	ListConfigurationVMStatus(ctx context.Context, subscriptionID, resourceGroup, configName string) (*service.VMStatusReport, error)
	PatchHistory(ctx context.Context, subscriptionID string, days int, resourceGroup string) (*service.PatchHistoryReport, error)
	DiagnosePatchFailure(ctx context.Context, subscriptionID, resourceGroup, vmName, assessmentStatus string) (*service.PatchFailureDiagnosis, error)
}

// toolArgs is the union of the arguments the model may pass. Every tool
// tolerates absent optional fields.
type toolArgs struct {
	SubscriptionID    string `json:"subscription_id"`
	ResourceGroup     string `json:"resource_group"`
	ConfigurationName string `json:"configuration_name"`
	VMName            string `json:"vm_name"`
	AssessmentStatus  string `json:"assessment_status"`
	Days              int    `json:"days"`
}

// Executor runs tool calls against the resolver. Empty subscription or
// resource group arguments fall back to the configured defaults.
type Executor struct {
	reports              ReportService
	defaultSubscription  string
	defaultResourceGroup string
}

// NewExecutor creates a tool executor over the resolver.
func NewExecutor(reports ReportService, defaultSubscription, defaultResourceGroup string) *Executor {
	return &Executor{
		reports:              reports,
		defaultSubscription:  defaultSubscription,
		defaultResourceGroup: defaultResourceGroup,
	}
}

// Dispatch executes one tool call and returns its JSON output. Unknown tool
// names are an error; the caller decides how to surface it to the model.
func (e *Executor) Dispatch(ctx context.Context, name, arguments string) (string, error) {
	var args toolArgs
	if arguments != "" {
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return "", fmt.Errorf("parse tool arguments: %w", err)
		}
	}
	if args.SubscriptionID == "" {
		args.SubscriptionID = e.defaultSubscription
	}
	// A bare configuration or VM name needs a resource group to be
	// addressable.
	if (args.ConfigurationName != "" || args.VMName != "") && args.ResourceGroup == "" {
		args.ResourceGroup = e.defaultResourceGroup
	}

	switch ToolName(name) {
	case ToolConfigurationDetails:
		report, err := e.reports.ListConfigurations(ctx, args.SubscriptionID, args.ResourceGroup, args.ConfigurationName)
		if err != nil {
			return "", err
		}
		return marshalOutput(report)
	case ToolConfigVMStatus:
		report, err := e.reports.ListConfigurationVMStatus(ctx, args.SubscriptionID, args.ResourceGroup, args.ConfigurationName)
		if err != nil {
			return "", err
		}
		return marshalOutput(report)
	case ToolPatchHistory:
		report, err := e.reports.PatchHistory(ctx, args.SubscriptionID, args.Days, args.ResourceGroup)
		if err != nil {
			return "", err
		}
		return marshalOutput(report)
	case ToolDiagnosePatchFailure:
		report, err := e.reports.DiagnosePatchFailure(ctx, args.SubscriptionID, args.ResourceGroup, args.VMName, args.AssessmentStatus)
		if err != nil {
			return "", err
		}
		return marshalOutput(report)
	default:
		return "", fmt.Errorf("unknown tool %q", name)
	}
}

func marshalOutput(v interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal tool output: %w", err)
	}
	return string(raw), nil
}

// Definitions returns the function schemas registered on the agent. The
// schemas and the Dispatch switch must cover the same names.
func Definitions() []ToolDefinition {
	subscription := map[string]interface{}{
		"type":        "string",
		"description": "Azure subscription ID",
	}
	resourceGroup := map[string]interface{}{
		"type":        "string",
		"description": "Resource group name to narrow the lookup",
	}
	configName := map[string]interface{}{
		"type":        "string",
		"description": "Maintenance configuration name; requires resource_group",
	}

	return []ToolDefinition{
		{
			Type: "function",
			Function: FunctionDefinition{
				Name:        string(ToolConfigurationDetails),
				Description: "Get maintenance configuration schedules (when patches WILL run). Optionally filter by resource group or configuration name.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"subscription_id":    subscription,
						"resource_group":     resourceGroup,
						"configuration_name": configName,
					},
					"required": []string{"subscription_id"},
				},
			},
		},
		{
			Type: "function",
			Function: FunctionDefinition{
				Name:        string(ToolConfigVMStatus),
				Description: "Get maintenance configurations with their assigned VMs and current patch state: power state, available patches, last installation.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"subscription_id":    subscription,
						"resource_group":     resourceGroup,
						"configuration_name": configName,
					},
					"required": []string{"subscription_id"},
				},
			},
		},
		{
			Type: "function",
			Function: FunctionDefinition{
				Name:        string(ToolPatchHistory),
				Description: "Get historical patch installation runs from Azure Update Manager with statistics by status, OS and initiator.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"subscription_id": subscription,
						"resource_group":  resourceGroup,
						"days": map[string]interface{}{
							"type":        "integer",
							"description": "Days of history to return, default 30",
						},
					},
					"required": []string{"subscription_id"},
				},
			},
		},
		{
			Type: "function",
			Function: FunctionDefinition{
				Name:        string(ToolDiagnosePatchFailure),
				Description: "Diagnose why a VM's patch assessment or installation failed: boot diagnostics, extension statuses, guest agent health, plus derived issues and recommendations.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"subscription_id": subscription,
						"resource_group":  resourceGroup,
						"vm_name": map[string]interface{}{
							"type":        "string",
							"description": "Virtual machine name to diagnose",
						},
						"assessment_status": map[string]interface{}{
							"type":        "string",
							"description": "Known assessment status such as Failed or InProgress",
						},
					},
					"required": []string{"subscription_id", "vm_name"},
				},
			},
		},
	}
}
