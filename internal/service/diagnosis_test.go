package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudpasture.io/maintwatch/internal/azure"
	"cloudpasture.io/maintwatch/internal/domain"
	apperrors "cloudpasture.io/maintwatch/internal/pkg/errors"
)

func TestDiagnosePatchFailure(t *testing.T) {
	r := newTestResolver(nil, &azure.MockComputeAPI{
		Diagnostics: map[string]*domain.VMDiagnostics{
			"vm-a": {
				VMName:        "vm-a",
				ResourceGroup: "rg1",
				Boot:          domain.BootDiagnostics{Enabled: true},
				Extensions: []domain.ExtensionStatus{
					{Name: "LinuxPatchExtension", HasErrors: true},
					{Name: "AzureMonitorLinuxAgent"},
				},
				GuestAgent: domain.GuestAgentStatus{Installed: true, Ready: true, Version: "2.9.1.1"},
			},
		},
	}, nil)

	report, err := r.DiagnosePatchFailure(context.Background(), testSub, "rg1", "vm-a", "Failed")
	require.NoError(t, err)

	assert.Equal(t, "vm-a", report.VMName)
	assert.Equal(t, "Failed", report.AssessmentStatus)
	require.NotNil(t, report.Diagnostics)

	// One count line plus one line per failing extension.
	require.Len(t, report.Issues, 2)
	assert.Contains(t, report.Issues[0], "1 extension(s)")
	assert.Contains(t, report.Issues[1], "LinuxPatchExtension")

	// The Failed status pulls in the troubleshooting recommendations.
	assert.GreaterOrEqual(t, len(report.Recommendations), 4)
	assert.True(t, report.Summary.RequiresAttention)
	assert.Equal(t, 2, report.Summary.TotalIssues)
}

func TestDiagnosePatchFailure_HealthyVM(t *testing.T) {
	r := newTestResolver(nil, &azure.MockComputeAPI{
		Diagnostics: map[string]*domain.VMDiagnostics{
			"vm-a": {
				VMName:        "vm-a",
				ResourceGroup: "rg1",
				Boot:          domain.BootDiagnostics{Enabled: true},
				GuestAgent:    domain.GuestAgentStatus{Installed: true, Ready: true},
			},
		},
	}, nil)

	report, err := r.DiagnosePatchFailure(context.Background(), testSub, "rg1", "vm-a", "")
	require.NoError(t, err)
	assert.Empty(t, report.Issues)
	assert.Empty(t, report.Recommendations)
	assert.False(t, report.Summary.RequiresAttention)
}

func TestDiagnosePatchFailure_MissingGuestAgent(t *testing.T) {
	r := newTestResolver(nil, &azure.MockComputeAPI{
		Diagnostics: map[string]*domain.VMDiagnostics{
			"vm-a": {VMName: "vm-a", ResourceGroup: "rg1"},
		},
	}, nil)

	report, err := r.DiagnosePatchFailure(context.Background(), testSub, "rg1", "vm-a", "")
	require.NoError(t, err)

	assert.Contains(t, report.Issues, "VM guest agent not installed or not reporting")
	assert.Contains(t, report.Recommendations, "Install or repair the Azure VM guest agent")
	// Boot diagnostics off only yields a recommendation, not an issue.
	assert.Contains(t, report.Recommendations, "Enable boot diagnostics for better troubleshooting")
	assert.Equal(t, 1, report.Summary.TotalIssues)
}

func TestDiagnosePatchFailure_VMNotFound(t *testing.T) {
	r := newTestResolver(nil, &azure.MockComputeAPI{}, nil)

	_, err := r.DiagnosePatchFailure(context.Background(), testSub, "rg1", "ghost", "")
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeVMNotFound, appErr.Code)
}

func TestDiagnosePatchFailure_MissingParameters(t *testing.T) {
	r := newTestResolver(nil, nil, nil)

	for _, tc := range []struct{ sub, rg, vm string }{
		{"", "rg1", "vm-a"},
		{testSub, "", "vm-a"},
		{testSub, "rg1", ""},
	} {
		_, err := r.DiagnosePatchFailure(context.Background(), tc.sub, tc.rg, tc.vm, "")
		appErr, ok := apperrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeMissingParameter, appErr.Code)
	}
}
