// Package domain defines cloud-neutral records for maintenance reporting.
//
// All types are read-only snapshots of ARM state at fetch time. Nothing in
// this package talks to Azure; the anti-corruption layer in internal/azure
// maps SDK types into these records.
package domain

import "strings"

// MaintenanceConfiguration is a snapshot of an Azure maintenance
// configuration. Schedule fields are opaque strings passed through verbatim
// from the control plane; they are never parsed or reinterpreted here.
type MaintenanceConfiguration struct {
	ID             string
	Name           string
	ResourceGroup  string
	SubscriptionID string
	Location       string

	// MaintenanceScope is one of InGuestPatch, OSImage, Extension, Host,
	// Resource, SQLDB, ARC or Custom. Treated as an opaque string.
	MaintenanceScope string
	Visibility       string

	StartDateTime      string
	ExpirationDateTime string
	Duration           string
	TimeZone           string
	RecurEvery         string
}

// ConfigurationAssignment binds one maintenance configuration to one target
// scope: an explicit resource ID, a set of resource groups, or a tag filter.
type ConfigurationAssignment struct {
	ID              string
	Name            string
	ConfigurationID string

	// ResourceID is the directly targeted resource, empty for filter scopes.
	ResourceID string

	// ResourceGroups holds the resource-group names of a dynamic scope.
	ResourceGroups []string

	// Tags holds the tag filter of a dynamic scope. Tag-based targets are
	// reported but not resolved against VM inventory (see DESIGN.md).
	Tags map[string][]string
}

// TargetsConfiguration reports whether the assignment points at the named
// maintenance configuration. ARM returns the configuration reference as a
// full resource ID whose last segment is the configuration name; comparison
// is case-insensitive like the rest of ARM.
func (a ConfigurationAssignment) TargetsConfiguration(configName string) bool {
	if a.ConfigurationID == "" || configName == "" {
		return false
	}
	return strings.EqualFold(lastSegment(a.ConfigurationID), configName)
}

// Covers reports whether the assignment's target scope contains the VM:
// either a direct resource-ID match or resource-group containment. Tag
// filters never match here; they are surfaced to callers as-is.
func (a ConfigurationAssignment) Covers(vm VirtualMachine) bool {
	if a.ResourceID != "" {
		return strings.EqualFold(a.ResourceID, vm.ID)
	}
	for _, rg := range a.ResourceGroups {
		if strings.EqualFold(rg, vm.ResourceGroup) {
			return true
		}
	}
	return false
}

// ResourceGroupFromID extracts the resource-group segment of an ARM ID:
// /subscriptions/{sub}/resourceGroups/{rg}/providers/...
func ResourceGroupFromID(id string) string {
	parts := strings.Split(id, "/")
	for i := 0; i < len(parts)-1; i++ {
		if strings.EqualFold(parts[i], "resourceGroups") {
			return parts[i+1]
		}
	}
	return ""
}

// SubscriptionFromID extracts the subscription segment of an ARM ID.
func SubscriptionFromID(id string) string {
	parts := strings.Split(id, "/")
	for i := 0; i < len(parts)-1; i++ {
		if strings.EqualFold(parts[i], "subscriptions") {
			return parts[i+1]
		}
	}
	return ""
}

func lastSegment(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}
