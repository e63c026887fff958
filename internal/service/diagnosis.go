package service

import (
	"context"
	"fmt"
	"strings"

	apperrors "cloudpasture.io/maintwatch/internal/pkg/errors"
)

// DiagnosePatchFailure aggregates the diagnostic surfaces of one VM and
// derives issues and recommendations. Intended for VMs whose patch
// assessment or installation did not succeed; assessmentStatus is optional
// and only steers the recommendations.
func (r *Resolver) DiagnosePatchFailure(ctx context.Context, subscriptionID, resourceGroup, vmName, assessmentStatus string) (*PatchFailureDiagnosis, error) {
	if subscriptionID == "" {
		return nil, apperrors.ErrMissingParameter("subscription_id")
	}
	if resourceGroup == "" {
		return nil, apperrors.ErrMissingParameter("resource_group")
	}
	if vmName == "" {
		return nil, apperrors.ErrMissingParameter("vm_name")
	}

	clients, err := r.clients.For(subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("build clients: %w", err)
	}

	diag, err := clients.Compute.GetVMDiagnostics(ctx, resourceGroup, vmName)
	if err != nil {
		return nil, err
	}

	report := &PatchFailureDiagnosis{
		VMName:           diag.VMName,
		ResourceGroup:    diag.ResourceGroup,
		AssessmentStatus: assessmentStatus,
		Diagnostics:      diag,
		Issues:           []string{},
		Recommendations:  []string{},
	}

	if diag.Boot.DataError != "" {
		report.Issues = append(report.Issues, "boot diagnostics data unavailable: "+diag.Boot.DataError)
	}
	if !diag.Boot.Enabled {
		report.Recommendations = append(report.Recommendations,
			"Enable boot diagnostics for better troubleshooting")
	}

	var failing []string
	for _, ext := range diag.Extensions {
		if ext.HasErrors {
			failing = append(failing, ext.Name)
		}
	}
	if len(failing) > 0 {
		report.Issues = append(report.Issues, fmt.Sprintf("%d extension(s) report errors", len(failing)))
		for _, name := range failing {
			report.Issues = append(report.Issues,
				fmt.Sprintf("extension %q has errors; check its statuses", name))
		}
	}

	switch {
	case !diag.GuestAgent.Installed:
		report.Issues = append(report.Issues, "VM guest agent not installed or not reporting")
		report.Recommendations = append(report.Recommendations,
			"Install or repair the Azure VM guest agent")
	case !diag.GuestAgent.Ready:
		report.Issues = append(report.Issues, "VM guest agent not in Ready state")
		report.Recommendations = append(report.Recommendations,
			"Check guest agent logs and restart the VM if needed")
	}

	switch strings.ToLower(assessmentStatus) {
	case "failed":
		report.Recommendations = append(report.Recommendations,
			"Review VM event logs for patch installation errors",
			"Check whether the VM still needs a reboot from a previous installation",
			"Verify the VM has enough disk space for patch downloads",
			"Ensure the VM can reach the Azure Update Manager endpoints",
		)
	case "inprogress":
		report.Recommendations = append(report.Recommendations,
			"Assessment in progress; allow more time before troubleshooting")
	}

	report.Summary = DiagnosisSummary{
		TotalIssues:          len(report.Issues),
		TotalRecommendations: len(report.Recommendations),
		RequiresAttention:    len(report.Issues) > 0,
	}
	return report, nil
}
