package azure

import (
	"errors"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v6"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/maintenance/armmaintenance"

	"cloudpasture.io/maintwatch/internal/domain"
)

var errMalformedRecord = errors.New("malformed control-plane record")

// mapConfiguration converts an ARM maintenance configuration into its domain
// snapshot. Schedule strings are copied verbatim.
func mapConfiguration(mc *armmaintenance.Configuration) (*domain.MaintenanceConfiguration, error) {
	if mc == nil || mc.ID == nil || mc.Name == nil {
		return nil, errMalformedRecord
	}

	out := &domain.MaintenanceConfiguration{
		ID:             *mc.ID,
		Name:           *mc.Name,
		ResourceGroup:  domain.ResourceGroupFromID(*mc.ID),
		SubscriptionID: domain.SubscriptionFromID(*mc.ID),
		Location:       deref(mc.Location),
	}

	props := mc.Properties
	if props == nil {
		return out, nil
	}
	if props.MaintenanceScope != nil {
		out.MaintenanceScope = string(*props.MaintenanceScope)
	}
	if props.Visibility != nil {
		out.Visibility = string(*props.Visibility)
	}
	if w := props.MaintenanceWindow; w != nil {
		out.StartDateTime = deref(w.StartDateTime)
		out.ExpirationDateTime = deref(w.ExpirationDateTime)
		out.Duration = deref(w.Duration)
		out.TimeZone = deref(w.TimeZone)
		out.RecurEvery = deref(w.RecurEvery)
	}
	return out, nil
}

// mapAssignment converts an ARM configuration assignment. Assignments without
// a maintenance configuration reference are malformed.
func mapAssignment(ca *armmaintenance.ConfigurationAssignment) (*domain.ConfigurationAssignment, error) {
	if ca == nil || ca.Properties == nil || ca.Properties.MaintenanceConfigurationID == nil {
		return nil, errMalformedRecord
	}

	out := &domain.ConfigurationAssignment{
		ID:              deref(ca.ID),
		Name:            deref(ca.Name),
		ConfigurationID: *ca.Properties.MaintenanceConfigurationID,
		ResourceID:      deref(ca.Properties.ResourceID),
	}

	if f := ca.Properties.Filter; f != nil {
		for _, rg := range f.ResourceGroups {
			if rg != nil && *rg != "" {
				out.ResourceGroups = append(out.ResourceGroups, *rg)
			}
		}
		if ts := f.TagSettings; ts != nil && len(ts.Tags) > 0 {
			out.Tags = make(map[string][]string, len(ts.Tags))
			for k, vals := range ts.Tags {
				for _, v := range vals {
					if v != nil {
						out.Tags[k] = append(out.Tags[k], *v)
					}
				}
			}
		}
	}
	return out, nil
}

// mapVirtualMachine converts an ARM VM into its domain snapshot.
func mapVirtualMachine(vm *armcompute.VirtualMachine) (*domain.VirtualMachine, error) {
	if vm == nil || vm.ID == nil || vm.Name == nil {
		return nil, errMalformedRecord
	}

	out := &domain.VirtualMachine{
		ID:             *vm.ID,
		Name:           *vm.Name,
		ResourceGroup:  domain.ResourceGroupFromID(*vm.ID),
		SubscriptionID: domain.SubscriptionFromID(*vm.ID),
		Location:       deref(vm.Location),
	}

	if len(vm.Tags) > 0 {
		out.Tags = make(map[string]string, len(vm.Tags))
		for k, v := range vm.Tags {
			if v != nil {
				out.Tags[k] = *v
			}
		}
	}

	props := vm.Properties
	if props == nil {
		return out, nil
	}
	out.ProvisioningState = deref(props.ProvisioningState)
	if props.HardwareProfile != nil && props.HardwareProfile.VMSize != nil {
		out.VMSize = string(*props.HardwareProfile.VMSize)
	}
	return out, nil
}

// mapPatchDetail converts a VM fetched with the instance view expanded into a
// patch-detail record. Missing patch data maps to a nil Patch, not an error.
func mapPatchDetail(vm *armcompute.VirtualMachine) *domain.VMPatchDetail {
	detail := &domain.VMPatchDetail{}
	if mapped, err := mapVirtualMachine(vm); err == nil {
		detail.VM = *mapped
	}

	if vm == nil || vm.Properties == nil || vm.Properties.InstanceView == nil {
		return detail
	}
	iv := vm.Properties.InstanceView

	detail.PowerState = powerState(iv.Statuses)

	ps := iv.PatchStatus
	if ps == nil {
		return detail
	}
	detail.Patch = &domain.VMPatchStatus{}

	if a := ps.AvailablePatchSummary; a != nil {
		summary := &domain.AvailablePatchSummary{
			CriticalAndSecurity:  derefInt32(a.CriticalAndSecurityPatchCount),
			Other:                derefInt32(a.OtherPatchCount),
			AssessmentActivityID: deref(a.AssessmentActivityID),
		}
		if a.Status != nil {
			summary.Status = string(*a.Status)
		}
		if a.RebootPending != nil {
			summary.RebootPending = *a.RebootPending
		}
		detail.Patch.Available = summary
	}

	if l := ps.LastPatchInstallationSummary; l != nil {
		summary := &domain.LastInstallationSummary{
			Installed: derefInt32(l.InstalledPatchCount),
			Failed:    derefInt32(l.FailedPatchCount),
			Pending:   derefInt32(l.PendingPatchCount),
		}
		if l.Status != nil {
			summary.Status = string(*l.Status)
		}
		if l.StartTime != nil {
			summary.StartTime = l.StartTime.UTC().Format(time.RFC3339)
		}
		detail.Patch.LastInstallation = summary
	}
	return detail
}

// mapDiagnostics converts a VM fetched with the instance view expanded into
// its diagnostic snapshot. Boot diagnostic data URIs are filled in by the
// caller, which owns that extra control-plane call.
func mapDiagnostics(vm *armcompute.VirtualMachine) (*domain.VMDiagnostics, error) {
	if vm == nil || vm.Name == nil {
		return nil, errMalformedRecord
	}

	out := &domain.VMDiagnostics{VMName: *vm.Name}
	if vm.ID != nil {
		out.ResourceGroup = domain.ResourceGroupFromID(*vm.ID)
	}

	props := vm.Properties
	if props == nil {
		return out, nil
	}
	if dp := props.DiagnosticsProfile; dp != nil && dp.BootDiagnostics != nil {
		if dp.BootDiagnostics.Enabled != nil {
			out.Boot.Enabled = *dp.BootDiagnostics.Enabled
		}
		out.Boot.StorageURI = deref(dp.BootDiagnostics.StorageURI)
	}

	iv := props.InstanceView
	if iv == nil {
		return out, nil
	}
	out.VMStatuses = mapStatuses(iv.Statuses)

	for _, ext := range iv.Extensions {
		if ext == nil || ext.Name == nil {
			continue
		}
		entry := domain.ExtensionStatus{
			Name:               *ext.Name,
			Type:               deref(ext.Type),
			TypeHandlerVersion: deref(ext.TypeHandlerVersion),
			Statuses:           mapStatuses(ext.Statuses),
			Substatuses:        mapStatuses(ext.Substatuses),
		}
		for _, s := range entry.Statuses {
			if strings.EqualFold(s.Level, "Error") {
				entry.HasErrors = true
				break
			}
		}
		out.Extensions = append(out.Extensions, entry)
	}

	if agent := iv.VMAgent; agent != nil {
		out.GuestAgent.Installed = true
		out.GuestAgent.Version = deref(agent.VMAgentVersion)
		out.GuestAgent.Statuses = mapStatuses(agent.Statuses)
		for _, s := range out.GuestAgent.Statuses {
			if strings.Contains(strings.ToLower(s.DisplayStatus), "ready") {
				out.GuestAgent.Ready = true
				break
			}
		}
		for _, h := range agent.ExtensionHandlers {
			if h == nil {
				continue
			}
			handler := domain.ExtensionHandler{
				Type:               deref(h.Type),
				TypeHandlerVersion: deref(h.TypeHandlerVersion),
			}
			if h.Status != nil {
				status := mapStatus(h.Status)
				handler.Status = &status
			}
			out.GuestAgent.ExtensionHandlers = append(out.GuestAgent.ExtensionHandlers, handler)
		}
	}
	return out, nil
}

func mapStatuses(statuses []*armcompute.InstanceViewStatus) []domain.StatusEntry {
	var out []domain.StatusEntry
	for _, s := range statuses {
		if s == nil {
			continue
		}
		out = append(out, mapStatus(s))
	}
	return out
}

func mapStatus(s *armcompute.InstanceViewStatus) domain.StatusEntry {
	entry := domain.StatusEntry{
		Code:          deref(s.Code),
		DisplayStatus: deref(s.DisplayStatus),
		Message:       deref(s.Message),
	}
	if s.Level != nil {
		entry.Level = string(*s.Level)
	}
	if s.Time != nil {
		entry.Time = s.Time.UTC().Format(time.RFC3339)
	}
	return entry
}

// powerState extracts the display form of the PowerState/* status code.
func powerState(statuses []*armcompute.InstanceViewStatus) string {
	for _, s := range statuses {
		if s == nil || s.Code == nil {
			continue
		}
		if strings.HasPrefix(*s.Code, "PowerState/") {
			if s.DisplayStatus != nil {
				return *s.DisplayStatus
			}
			return strings.TrimPrefix(*s.Code, "PowerState/")
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt32(n *int32) int32 {
	if n == nil {
		return 0
	}
	return *n
}
