package azure

import (
	"context"
	"strings"

	"cloudpasture.io/maintwatch/internal/domain"
	apperrors "cloudpasture.io/maintwatch/internal/pkg/errors"
)

// In-memory fakes for the API interfaces. Service and handler tests seed
// these instead of standing up ARM stubs.

// MockMaintenanceAPI serves maintenance data from seeded slices.
type MockMaintenanceAPI struct {
	Configurations []*domain.MaintenanceConfiguration
	Assignments    []*domain.ConfigurationAssignment

	// VMAssignments keys per-VM assignment lists by lowercase VM name.
	VMAssignments map[string][]*domain.ConfigurationAssignment

	Err error
}

func (m *MockMaintenanceAPI) GetConfiguration(_ context.Context, resourceGroup, name string) (*domain.MaintenanceConfiguration, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, mc := range m.Configurations {
		if strings.EqualFold(mc.Name, name) && strings.EqualFold(mc.ResourceGroup, resourceGroup) {
			return mc, nil
		}
	}
	return nil, apperrors.ErrConfigurationNotFound(name, resourceGroup)
}

func (m *MockMaintenanceAPI) ListConfigurations(_ context.Context) ([]*domain.MaintenanceConfiguration, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Configurations, nil
}

func (m *MockMaintenanceAPI) ListAssignments(_ context.Context) ([]*domain.ConfigurationAssignment, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Assignments, nil
}

func (m *MockMaintenanceAPI) ListVMAssignments(_ context.Context, _, vmName string) ([]*domain.ConfigurationAssignment, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.VMAssignments[strings.ToLower(vmName)], nil
}

// MockComputeAPI serves VM inventory from seeded slices.
type MockComputeAPI struct {
	VMs []*domain.VirtualMachine

	// PatchDetails keys instance-view results by lowercase VM name.
	PatchDetails map[string]*domain.VMPatchDetail
	// PatchErrs simulates per-VM instance-view failures.
	PatchErrs map[string]error
	// Diagnostics keys diagnostic snapshots by lowercase VM name.
	Diagnostics map[string]*domain.VMDiagnostics

	Err error
}

func (m *MockComputeAPI) ListVMs(_ context.Context, resourceGroup string) ([]*domain.VirtualMachine, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []*domain.VirtualMachine
	for _, vm := range m.VMs {
		if strings.EqualFold(vm.ResourceGroup, resourceGroup) {
			out = append(out, vm)
		}
	}
	return out, nil
}

func (m *MockComputeAPI) ListAllVMs(_ context.Context) ([]*domain.VirtualMachine, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.VMs, nil
}

func (m *MockComputeAPI) GetVMPatchDetail(_ context.Context, _, name string) (*domain.VMPatchDetail, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	key := strings.ToLower(name)
	if err, ok := m.PatchErrs[key]; ok {
		return nil, err
	}
	if d, ok := m.PatchDetails[key]; ok {
		return d, nil
	}
	return &domain.VMPatchDetail{}, nil
}

func (m *MockComputeAPI) GetVMDiagnostics(_ context.Context, resourceGroup, name string) (*domain.VMDiagnostics, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if d, ok := m.Diagnostics[strings.ToLower(name)]; ok {
		return d, nil
	}
	return nil, apperrors.ErrVMNotFound(name, resourceGroup)
}

// MockResourceGraphAPI serves patch history from a seeded slice.
type MockResourceGraphAPI struct {
	Installations []*domain.PatchInstallation
	Err           error
}

func (m *MockResourceGraphAPI) QueryPatchInstallations(_ context.Context, _ string, _ int, resourceGroup string) ([]*domain.PatchInstallation, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if resourceGroup == "" {
		return m.Installations, nil
	}
	var out []*domain.PatchInstallation
	for _, in := range m.Installations {
		if strings.EqualFold(in.ResourceGroupName, resourceGroup) {
			out = append(out, in)
		}
	}
	return out, nil
}
