package service

import "cloudpasture.io/maintwatch/internal/domain"

// Externally documented report shapes. Field names are part of the API
// contract shared by the HTTP handlers and the agent tools; schedule strings
// are verbatim control-plane values.

// ConfigurationListReport is the response of the configuration lookup.
type ConfigurationListReport struct {
	SubscriptionID      string               `json:"subscription_id"`
	Configurations      []ConfigurationEntry `json:"configurations"`
	TotalConfigurations int                  `json:"total_configurations"`
}

// ConfigurationEntry is one maintenance configuration in a list report.
type ConfigurationEntry struct {
	Name               string   `json:"name"`
	ResourceGroup      string   `json:"resource_group"`
	Location           string   `json:"location"`
	MaintenanceScope   string   `json:"maintenance_scope"`
	Visibility         string   `json:"visibility,omitempty"`
	StartDateTime      string   `json:"start_date_time"`
	ExpirationDateTime string   `json:"expiration_date_time,omitempty"`
	Duration           string   `json:"duration"`
	TimeZone           string   `json:"time_zone"`
	RecurEvery         string   `json:"recur_every"`
	AssignedResources  []string `json:"assigned_resources"`
}

// AssignmentReport is the response of the VM assignment resolution.
type AssignmentReport struct {
	SubscriptionID           string           `json:"subscription_id"`
	MaintenanceConfiguration ConfigurationRef `json:"maintenance_configuration"`
	AssignedVMs              []AssignedVM     `json:"assigned_vms"`
	TotalVMs                 int              `json:"total_vms"`
}

// ConfigurationRef identifies the configuration an assignment report covers.
type ConfigurationRef struct {
	Name             string `json:"name"`
	ResourceGroup    string `json:"resource_group"`
	MaintenanceScope string `json:"maintenance_scope"`
}

// AssignedVM is one VM in an assignment report. Provisioning state is
// reported, never filtered on.
type AssignedVM struct {
	VMName            string `json:"vm_name"`
	ResourceGroup     string `json:"resource_group"`
	Location          string `json:"location"`
	VMSize            string `json:"vm_size"`
	ProvisioningState string `json:"provisioning_state"`
}

// VMStatusReport joins configurations with the live patch state of their
// assigned VMs.
type VMStatusReport struct {
	SubscriptionID      string           `json:"subscription_id"`
	Configurations      []ConfigVMStatus `json:"configurations"`
	TotalConfigurations int              `json:"total_configurations"`
}

// ConfigVMStatus is one configuration with its VM patch state.
type ConfigVMStatus struct {
	Name             string     `json:"name"`
	ResourceGroup    string     `json:"resource_group"`
	Location         string     `json:"location"`
	MaintenanceScope string     `json:"maintenance_scope"`
	Visibility       string     `json:"visibility,omitempty"`
	Schedule         Schedule   `json:"schedule"`
	AssociatedVMs    []VMStatus `json:"associated_vms"`
	TotalVMs         int        `json:"total_vms"`
}

// Schedule is the maintenance window of a configuration.
type Schedule struct {
	StartTime      string `json:"start_time"`
	ExpirationTime string `json:"expiration_time"`
	Duration       string `json:"duration"`
	TimeZone       string `json:"time_zone"`
	Recurrence     string `json:"recurrence"`
}

// VMStatus is one VM with its instance-view patch state. Error is set when
// the instance-view fetch failed; the VM is still listed.
type VMStatus struct {
	VMName        string           `json:"vm_name"`
	ResourceGroup string           `json:"resource_group"`
	PowerState    string           `json:"power_state,omitempty"`
	PatchStatus   *PatchStatusInfo `json:"patch_status,omitempty"`
	Error         string           `json:"error,omitempty"`
}

// PatchStatusInfo is the instance-view patch summary of one VM.
type PatchStatusInfo struct {
	AvailablePatches *AvailablePatches `json:"available_patches,omitempty"`
	LastInstallation *LastInstallation `json:"last_installation,omitempty"`
}

// AvailablePatches summarises patches applicable right now.
type AvailablePatches struct {
	CriticalAndSecurity int32  `json:"critical_and_security"`
	Other               int32  `json:"other"`
	AssessmentStatus    string `json:"assessment_status"`
	RebootPending       bool   `json:"reboot_pending"`
}

// LastInstallation summarises the most recent installation run.
type LastInstallation struct {
	Status           string `json:"status"`
	StartTime        string `json:"start_time,omitempty"`
	InstalledPatches int32  `json:"installed_patches"`
	FailedPatches    int32  `json:"failed_patches"`
	PendingPatches   int32  `json:"pending_patches"`
}

// PatchFailureDiagnosis is the response of the VM patch failure diagnosis.
type PatchFailureDiagnosis struct {
	VMName           string                `json:"vm_name"`
	ResourceGroup    string                `json:"resource_group"`
	AssessmentStatus string                `json:"assessment_status,omitempty"`
	Diagnostics      *domain.VMDiagnostics `json:"diagnostics"`
	Issues           []string              `json:"issues_found"`
	Recommendations  []string              `json:"recommendations"`
	Summary          DiagnosisSummary      `json:"summary"`
}

// DiagnosisSummary counts the findings of a diagnosis.
type DiagnosisSummary struct {
	TotalIssues          int  `json:"total_issues"`
	TotalRecommendations int  `json:"total_recommendations"`
	RequiresAttention    bool `json:"requires_attention"`
}

// PatchHistoryReport is the response of the patch history query.
type PatchHistoryReport struct {
	SubscriptionID string                      `json:"subscription_id"`
	PeriodDays     int                         `json:"period_days"`
	Installations  []*domain.PatchInstallation `json:"installations"`
	Statistics     PatchStatistics             `json:"statistics"`
	Note           string                      `json:"note,omitempty"`
}

// PatchStatistics aggregates installation runs. Statistics cover every run in
// the period even when the installation list itself is capped.
type PatchStatistics struct {
	TotalInstallations int            `json:"total_installations"`
	ByStatus           map[string]int `json:"by_status"`
	ByOS               map[string]int `json:"by_os"`
	ByStarter          map[string]int `json:"by_starter"`
	MaintenanceRuns    int            `json:"maintenance_runs"`
	AutoPatchingRuns   int            `json:"auto_patching_runs"`
}
