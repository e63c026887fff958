package domain

// VMPatchDetail pairs a VM with its instance-view patch state. Patch may be
// nil when the platform has no assessment data, Err is set when the
// instance-view fetch failed for this VM (the VM is still reported).
type VMPatchDetail struct {
	VM         VirtualMachine
	PowerState string
	Patch      *VMPatchStatus
	Err        string
}

// VMPatchStatus mirrors the compute instance-view patch status.
type VMPatchStatus struct {
	Available        *AvailablePatchSummary
	LastInstallation *LastInstallationSummary
}

// AvailablePatchSummary describes patches currently applicable to a VM.
type AvailablePatchSummary struct {
	CriticalAndSecurity  int32
	Other                int32
	Status               string
	AssessmentActivityID string
	RebootPending        bool
}

// LastInstallationSummary describes the most recent patch installation run.
type LastInstallationSummary struct {
	Status    string
	StartTime string
	Installed int32
	Failed    int32
	Pending   int32
}

// PatchInstallation is one historical installation run as projected by the
// Azure Update Manager resource-graph query.
type PatchInstallation struct {
	VMName            string `json:"vmName"`
	ResourceGroupName string `json:"resourceGroupName"`
	OSType            string `json:"osType"`
	StartedBy         string `json:"startedBy"`
	Status            string `json:"status"`
	MaintenanceRunID  string `json:"maintenanceRunId"`
	IsAutoPatching    bool   `json:"isAutoPatching"`
	StartTime         string `json:"startTime"`
	EndTime           string `json:"endTime"`
	InstalledPatches  int32  `json:"installedPatchCount"`
	FailedPatches     int32  `json:"failedPatchCount"`
	PendingPatches    int32  `json:"pendingPatchCount"`
	ExcludedPatches   int32  `json:"excludedPatchCount"`
	NotSelectedPatches int32 `json:"notSelectedPatchCount"`
	RebootStatus      string `json:"rebootStatus"`
	ResourceType      string `json:"resourceType"`
}
