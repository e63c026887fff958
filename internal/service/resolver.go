// Package service implements the assignment resolver: read-only reporting
// over maintenance configurations, their VM assignments and patch state.
//
// All operations are deterministic snapshots of cloud state at call time.
// Nothing here mutates Azure resources.
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"cloudpasture.io/maintwatch/internal/azure"
	"cloudpasture.io/maintwatch/internal/domain"
	apperrors "cloudpasture.io/maintwatch/internal/pkg/errors"
	"cloudpasture.io/maintwatch/internal/pkg/logger"
)

// maxHistoryEntries caps the installation list in a patch history report.
// Statistics are computed before the cap.
const maxHistoryEntries = 50

// ClientProvider yields the per-subscription cloud API bundle.
type ClientProvider interface {
	For(subscriptionID string) (*azure.Clients, error)
}

// Resolver answers maintenance reporting queries. It holds no per-request
// state; every method is safe for concurrent use.
type Resolver struct {
	clients ClientProvider
}

// NewResolver creates a resolver over the given client provider.
func NewResolver(clients ClientProvider) *Resolver {
	return &Resolver{clients: clients}
}

// ListConfigurations returns the configurations visible in a subscription,
// optionally narrowed to one resource group or one named configuration.
// A name without a resource group is rejected: ARM addresses configurations
// by (resource group, name).
func (r *Resolver) ListConfigurations(ctx context.Context, subscriptionID, resourceGroup, configName string) (*ConfigurationListReport, error) {
	configs, clients, err := r.selectConfigurations(ctx, subscriptionID, resourceGroup, configName)
	if err != nil {
		return nil, err
	}

	assignments, err := clients.Maintenance.ListAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	report := &ConfigurationListReport{
		SubscriptionID: subscriptionID,
		Configurations: make([]ConfigurationEntry, 0, len(configs)),
	}
	for _, cfg := range configs {
		report.Configurations = append(report.Configurations, ConfigurationEntry{
			Name:               cfg.Name,
			ResourceGroup:      cfg.ResourceGroup,
			Location:           cfg.Location,
			MaintenanceScope:   cfg.MaintenanceScope,
			Visibility:         cfg.Visibility,
			StartDateTime:      cfg.StartDateTime,
			ExpirationDateTime: cfg.ExpirationDateTime,
			Duration:           cfg.Duration,
			TimeZone:           cfg.TimeZone,
			RecurEvery:         cfg.RecurEvery,
			AssignedResources:  assignedResourceRefs(assignments, cfg.Name),
		})
	}
	report.TotalConfigurations = len(report.Configurations)

	logger.Debug("configuration lookup complete",
		zap.String("subscription_id", subscriptionID),
		zap.String("resource_group", resourceGroup),
		zap.Int("total", report.TotalConfigurations),
	)
	return report, nil
}

// ListVMsInConfiguration resolves which VMs a named configuration covers.
// VMs are listed from the configuration's own resource group; an assignment
// matches through a direct resource ID or resource-group containment. Cloud
// listing order is preserved.
func (r *Resolver) ListVMsInConfiguration(ctx context.Context, subscriptionID, resourceGroup, configName string) (*AssignmentReport, error) {
	if subscriptionID == "" {
		return nil, apperrors.ErrMissingParameter("subscription_id")
	}
	if resourceGroup == "" {
		return nil, apperrors.ErrMissingParameter("resource_group")
	}
	if configName == "" {
		return nil, apperrors.ErrMissingParameter("configuration_name")
	}

	clients, err := r.clients.For(subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("build clients: %w", err)
	}

	cfg, err := clients.Maintenance.GetConfiguration(ctx, resourceGroup, configName)
	if err != nil {
		return nil, err
	}

	assignments, err := clients.Maintenance.ListAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	var targeting []*domain.ConfigurationAssignment
	for _, a := range assignments {
		if a.TargetsConfiguration(cfg.Name) {
			targeting = append(targeting, a)
		}
	}

	vms, err := clients.Compute.ListVMs(ctx, cfg.ResourceGroup)
	if err != nil {
		return nil, fmt.Errorf("list vms: %w", err)
	}

	report := &AssignmentReport{
		SubscriptionID: subscriptionID,
		MaintenanceConfiguration: ConfigurationRef{
			Name:             cfg.Name,
			ResourceGroup:    cfg.ResourceGroup,
			MaintenanceScope: cfg.MaintenanceScope,
		},
		AssignedVMs: make([]AssignedVM, 0, len(vms)),
	}

	for _, vm := range vms {
		assigned := false
		for _, a := range targeting {
			if a.Covers(*vm) {
				assigned = true
				break
			}
		}
		if !assigned {
			// Per-VM assignments do not always appear in the
			// subscription-wide listing; check the VM itself.
			vmAssignments, err := clients.Maintenance.ListVMAssignments(ctx, vm.ResourceGroup, vm.Name)
			if err != nil {
				logger.Warn("per-vm assignment lookup failed",
					zap.String("vm", vm.Name),
					zap.Error(err),
				)
			}
			for _, a := range vmAssignments {
				if a.TargetsConfiguration(cfg.Name) {
					assigned = true
					break
				}
			}
		}
		if assigned {
			report.AssignedVMs = append(report.AssignedVMs, AssignedVM{
				VMName:            vm.Name,
				ResourceGroup:     vm.ResourceGroup,
				Location:          vm.Location,
				VMSize:            vm.VMSize,
				ProvisioningState: vm.ProvisioningState,
			})
		}
	}
	report.TotalVMs = len(report.AssignedVMs)
	return report, nil
}

// ListConfigurationVMStatus joins configurations with the live patch state of
// their assigned VMs. A failed instance-view fetch is reported on the VM
// entry, never dropped.
func (r *Resolver) ListConfigurationVMStatus(ctx context.Context, subscriptionID, resourceGroup, configName string) (*VMStatusReport, error) {
	configs, clients, err := r.selectConfigurations(ctx, subscriptionID, resourceGroup, configName)
	if err != nil {
		return nil, err
	}

	var vms []*domain.VirtualMachine
	if resourceGroup != "" {
		vms, err = clients.Compute.ListVMs(ctx, resourceGroup)
	} else {
		vms, err = clients.Compute.ListAllVMs(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list vms: %w", err)
	}

	// One assignment lookup per VM, shared across configurations.
	vmAssignments := make(map[string][]*domain.ConfigurationAssignment, len(vms))
	for _, vm := range vms {
		assignments, err := clients.Maintenance.ListVMAssignments(ctx, vm.ResourceGroup, vm.Name)
		if err != nil {
			logger.Warn("per-vm assignment lookup failed",
				zap.String("vm", vm.Name),
				zap.Error(err),
			)
			continue
		}
		vmAssignments[vm.ID] = assignments
	}

	report := &VMStatusReport{
		SubscriptionID: subscriptionID,
		Configurations: make([]ConfigVMStatus, 0, len(configs)),
	}

	for _, cfg := range configs {
		entry := ConfigVMStatus{
			Name:             cfg.Name,
			ResourceGroup:    cfg.ResourceGroup,
			Location:         cfg.Location,
			MaintenanceScope: cfg.MaintenanceScope,
			Visibility:       cfg.Visibility,
			Schedule: Schedule{
				StartTime:      cfg.StartDateTime,
				ExpirationTime: cfg.ExpirationDateTime,
				Duration:       cfg.Duration,
				TimeZone:       cfg.TimeZone,
				Recurrence:     cfg.RecurEvery,
			},
			AssociatedVMs: []VMStatus{},
		}

		for _, vm := range vms {
			if !targetsAny(vmAssignments[vm.ID], cfg.Name) {
				continue
			}
			entry.AssociatedVMs = append(entry.AssociatedVMs, r.vmStatus(ctx, clients, vm))
		}
		entry.TotalVMs = len(entry.AssociatedVMs)
		report.Configurations = append(report.Configurations, entry)
	}
	report.TotalConfigurations = len(report.Configurations)
	return report, nil
}

// PatchHistory queries Azure Update Manager installation runs for the last
// `days` days (default 30) and aggregates statistics over the full result
// before capping the list.
func (r *Resolver) PatchHistory(ctx context.Context, subscriptionID string, days int, resourceGroup string) (*PatchHistoryReport, error) {
	if subscriptionID == "" {
		return nil, apperrors.ErrMissingParameter("subscription_id")
	}
	if days <= 0 {
		days = 30
	}

	clients, err := r.clients.For(subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("build clients: %w", err)
	}

	installations, err := clients.Graph.QueryPatchInstallations(ctx, subscriptionID, days, resourceGroup)
	if err != nil {
		return nil, err
	}

	report := &PatchHistoryReport{
		SubscriptionID: subscriptionID,
		PeriodDays:     days,
		Installations:  installations,
		Statistics:     aggregateInstallations(installations),
	}
	if len(installations) > maxHistoryEntries {
		report.Note = fmt.Sprintf("Showing %d most recent installations out of %d total", maxHistoryEntries, len(installations))
		report.Installations = installations[:maxHistoryEntries]
	}
	if report.Installations == nil {
		report.Installations = []*domain.PatchInstallation{}
	}
	return report, nil
}

// selectConfigurations applies the shared filter rules: a name requires a
// resource group and resolves through a direct get; otherwise the
// subscription listing is filtered by the resource-group segment of each
// configuration's ARM ID, case-insensitively.
func (r *Resolver) selectConfigurations(ctx context.Context, subscriptionID, resourceGroup, configName string) ([]*domain.MaintenanceConfiguration, *azure.Clients, error) {
	if subscriptionID == "" {
		return nil, nil, apperrors.ErrMissingParameter("subscription_id")
	}
	if configName != "" && resourceGroup == "" {
		return nil, nil, apperrors.ErrMissingParameter("resource_group")
	}

	clients, err := r.clients.For(subscriptionID)
	if err != nil {
		return nil, nil, fmt.Errorf("build clients: %w", err)
	}

	if configName != "" {
		cfg, err := clients.Maintenance.GetConfiguration(ctx, resourceGroup, configName)
		if err != nil {
			return nil, nil, err
		}
		return []*domain.MaintenanceConfiguration{cfg}, clients, nil
	}

	all, err := clients.Maintenance.ListConfigurations(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list configurations: %w", err)
	}
	if resourceGroup == "" {
		return all, clients, nil
	}

	filtered := make([]*domain.MaintenanceConfiguration, 0, len(all))
	for _, cfg := range all {
		if strings.EqualFold(cfg.ResourceGroup, resourceGroup) {
			filtered = append(filtered, cfg)
		}
	}
	return filtered, clients, nil
}

func (r *Resolver) vmStatus(ctx context.Context, clients *azure.Clients, vm *domain.VirtualMachine) VMStatus {
	status := VMStatus{
		VMName:        vm.Name,
		ResourceGroup: vm.ResourceGroup,
	}

	detail, err := clients.Compute.GetVMPatchDetail(ctx, vm.ResourceGroup, vm.Name)
	if err != nil {
		status.Error = "failed to get patch status: " + err.Error()
		return status
	}

	status.PowerState = detail.PowerState
	if detail.Patch == nil {
		return status
	}

	info := &PatchStatusInfo{}
	if a := detail.Patch.Available; a != nil {
		info.AvailablePatches = &AvailablePatches{
			CriticalAndSecurity: a.CriticalAndSecurity,
			Other:               a.Other,
			AssessmentStatus:    a.Status,
			RebootPending:       a.RebootPending,
		}
	}
	if l := detail.Patch.LastInstallation; l != nil {
		info.LastInstallation = &LastInstallation{
			Status:           l.Status,
			StartTime:        l.StartTime,
			InstalledPatches: l.Installed,
			FailedPatches:    l.Failed,
			PendingPatches:   l.Pending,
		}
	}
	status.PatchStatus = info
	return status
}

// assignedResourceRefs describes every target scope of the assignments
// pointing at the named configuration.
func assignedResourceRefs(assignments []*domain.ConfigurationAssignment, configName string) []string {
	refs := []string{}
	for _, a := range assignments {
		if !a.TargetsConfiguration(configName) {
			continue
		}
		switch {
		case a.ResourceID != "":
			refs = append(refs, a.ResourceID)
		case len(a.ResourceGroups) > 0:
			for _, rg := range a.ResourceGroups {
				refs = append(refs, "resourceGroup:"+rg)
			}
		case len(a.Tags) > 0:
			refs = append(refs, "tags:"+formatTagFilter(a.Tags))
		}
	}
	return refs
}

func formatTagFilter(tags map[string][]string) string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strings.Join(tags[k], "|"))
	}
	return strings.Join(parts, ",")
}

func targetsAny(assignments []*domain.ConfigurationAssignment, configName string) bool {
	for _, a := range assignments {
		if a.TargetsConfiguration(configName) {
			return true
		}
	}
	return false
}

// aggregateInstallations builds the statistics block. Empty grouping values
// count under "Unknown" so the buckets always sum to the total.
func aggregateInstallations(installations []*domain.PatchInstallation) PatchStatistics {
	stats := PatchStatistics{
		TotalInstallations: len(installations),
		ByStatus:           map[string]int{},
		ByOS:               map[string]int{},
		ByStarter:          map[string]int{},
	}
	for _, in := range installations {
		stats.ByStatus[orUnknown(in.Status)]++
		stats.ByOS[orUnknown(in.OSType)]++
		stats.ByStarter[orUnknown(in.StartedBy)]++
		if in.IsAutoPatching {
			stats.AutoPatchingRuns++
		} else {
			stats.MaintenanceRuns++
		}
	}
	return stats
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
