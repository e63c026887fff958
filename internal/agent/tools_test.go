package agent

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudpasture.io/maintwatch/internal/service"
)

// fakeReports records the arguments of the last call per operation.
type fakeReports struct {
	lastSub, lastRG, lastName string
	lastVM, lastStatus        string
	lastDays                  int
}

func (f *fakeReports) ListConfigurations(_ context.Context, sub, rg, name string) (*service.ConfigurationListReport, error) {
	f.lastSub, f.lastRG, f.lastName = sub, rg, name
	return &service.ConfigurationListReport{
		SubscriptionID:      sub,
		Configurations:      []service.ConfigurationEntry{{Name: "weekly-patch"}},
		TotalConfigurations: 1,
	}, nil
}

func (f *fakeReports) ListConfigurationVMStatus(_ context.Context, sub, rg, name string) (*service.VMStatusReport, error) {
	f.lastSub, f.lastRG, f.lastName = sub, rg, name
	return &service.VMStatusReport{SubscriptionID: sub}, nil
}

func (f *fakeReports) PatchHistory(_ context.Context, sub string, days int, rg string) (*service.PatchHistoryReport, error) {
	f.lastSub, f.lastDays, f.lastRG = sub, days, rg
	return &service.PatchHistoryReport{SubscriptionID: sub, PeriodDays: days}, nil
}

func (f *fakeReports) DiagnosePatchFailure(_ context.Context, sub, rg, vmName, status string) (*service.PatchFailureDiagnosis, error) {
	f.lastSub, f.lastRG, f.lastVM, f.lastStatus = sub, rg, vmName, status
	return &service.PatchFailureDiagnosis{VMName: vmName, ResourceGroup: rg}, nil
}

func TestDispatch_ConfigurationDetails(t *testing.T) {
	reports := &fakeReports{}
	e := NewExecutor(reports, "default-sub", "default-rg")

	out, err := e.Dispatch(context.Background(), string(ToolConfigurationDetails),
		`{"subscription_id":"sub-1","resource_group":"rg1"}`)
	require.NoError(t, err)

	assert.Equal(t, "sub-1", reports.lastSub)
	assert.Equal(t, "rg1", reports.lastRG)

	var report service.ConfigurationListReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.TotalConfigurations)
}

func TestDispatch_DefaultsFillMissingArguments(t *testing.T) {
	reports := &fakeReports{}
	e := NewExecutor(reports, "default-sub", "default-rg")

	_, err := e.Dispatch(context.Background(), string(ToolConfigVMStatus),
		`{"configuration_name":"weekly-patch"}`)
	require.NoError(t, err)

	assert.Equal(t, "default-sub", reports.lastSub)
	// A bare configuration name pulls in the default resource group.
	assert.Equal(t, "default-rg", reports.lastRG)
	assert.Equal(t, "weekly-patch", reports.lastName)
}

func TestDispatch_NoResourceGroupDefaultWithoutName(t *testing.T) {
	reports := &fakeReports{}
	e := NewExecutor(reports, "default-sub", "default-rg")

	_, err := e.Dispatch(context.Background(), string(ToolConfigurationDetails), `{}`)
	require.NoError(t, err)
	// Listing everything must not silently narrow to the default group.
	assert.Empty(t, reports.lastRG)
}

func TestDispatch_PatchHistory(t *testing.T) {
	reports := &fakeReports{}
	e := NewExecutor(reports, "default-sub", "")

	_, err := e.Dispatch(context.Background(), string(ToolPatchHistory), `{"days":7}`)
	require.NoError(t, err)
	assert.Equal(t, 7, reports.lastDays)
}

func TestDispatch_DiagnosePatchFailure(t *testing.T) {
	reports := &fakeReports{}
	e := NewExecutor(reports, "default-sub", "default-rg")

	out, err := e.Dispatch(context.Background(), string(ToolDiagnosePatchFailure),
		`{"vm_name":"vm-a","assessment_status":"Failed"}`)
	require.NoError(t, err)

	assert.Equal(t, "default-sub", reports.lastSub)
	// A bare VM name pulls in the default resource group.
	assert.Equal(t, "default-rg", reports.lastRG)
	assert.Equal(t, "vm-a", reports.lastVM)
	assert.Equal(t, "Failed", reports.lastStatus)

	var report service.PatchFailureDiagnosis
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "vm-a", report.VMName)
}

func TestDispatch_UnknownTool(t *testing.T) {
	e := NewExecutor(&fakeReports{}, "", "")

	_, err := e.Dispatch(context.Background(), "drop_all_vms", `{}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool")
}

func TestDispatch_MalformedArguments(t *testing.T) {
	e := NewExecutor(&fakeReports{}, "", "")

	_, err := e.Dispatch(context.Background(), string(ToolPatchHistory), `{not json`)
	require.Error(t, err)
}

func TestDefinitionsCoverDispatchTable(t *testing.T) {
	defs := Definitions()
	require.Len(t, defs, 4)

	names := map[string]bool{}
	for _, d := range defs {
		assert.Equal(t, "function", d.Type)
		names[d.Function.Name] = true
	}
	assert.True(t, names[string(ToolConfigurationDetails)])
	assert.True(t, names[string(ToolConfigVMStatus)])
	assert.True(t, names[string(ToolPatchHistory)])
	assert.True(t, names[string(ToolDiagnosePatchFailure)])
}
