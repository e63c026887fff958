package azure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resourcegraph/armresourcegraph"

	"cloudpasture.io/maintwatch/internal/domain"
	apperrors "cloudpasture.io/maintwatch/internal/pkg/errors"
)

// patchHistoryQuery is the Azure Update Manager projection over patch
// installation results. SQL VMs and Arc machines resolve to their underlying
// resource so the resourceType column stays meaningful.
const patchHistoryQuery = `PatchInstallationResources
| where properties.lastModifiedDateTime > ago(%dd)
| where type in~ ("microsoft.compute/virtualmachines/patchinstallationresults", "microsoft.hybridcompute/machines/patchinstallationresults")
| parse tolower(id) with resourceId "/patchinstallationresults" *
| extend resourceId=tolower(resourceId), resourceType = strcat(split(type, "/")[0], "/", split(type, "/")[1])
| join kind=leftouter(
    resources
    | where type in~ ("Microsoft.SqlVirtualMachine/sqlVirtualMachines", "microsoft.azurearcdata/sqlserverinstances")
    | project resourceId = iff(type =~ "Microsoft.SqlVirtualMachine/sqlVirtualMachines", tolower(properties.virtualMachineResourceId), tolower(properties.containerResourceId)), sqlType = type
    | summarize by resourceId, sqlType
) on resourceId
| extend resourceType = iff(isnotempty(sqlType), sqlType, resourceType)
| project id, type, properties, resourceType, resourceId
| where resourceType in~ ("microsoft.compute/virtualmachines", "microsoft.hybridcompute/machines", "microsoft.sqlvirtualmachine/sqlvirtualmachines", "microsoft.azurearcdata/sqlserverinstances")`

const patchHistoryProjection = `
| extend
    vmName = tostring(split(resourceId, '/')[8]),
    resourceGroupName = tostring(split(resourceId, '/')[4]),
    osType = tostring(properties.osType),
    startedBy = tostring(properties.startedBy),
    status = tostring(properties.status),
    maintenanceRunId = tostring(properties.maintenanceRunId),
    isAutoPatching = isempty(properties.maintenanceRunId),
    startTime = todatetime(properties.startDateTime),
    endTime = todatetime(properties.lastModifiedDateTime),
    installedPatchCount = toint(properties.installedPatchCount),
    failedPatchCount = toint(properties.failedPatchCount),
    pendingPatchCount = toint(properties.pendingPatchCount),
    excludedPatchCount = toint(properties.excludedPatchCount),
    notSelectedPatchCount = toint(properties.notSelectedPatchCount),
    rebootStatus = tostring(properties.rebootStatus)
| project vmName, resourceGroupName, osType, startedBy, status, maintenanceRunId, isAutoPatching, startTime, endTime, installedPatchCount, failedPatchCount, pendingPatchCount, excludedPatchCount, notSelectedPatchCount, rebootStatus, resourceType
| order by startTime desc`

// resourceGraphClient adapts the armresourcegraph SDK to ResourceGraphAPI.
type resourceGraphClient struct {
	client *armresourcegraph.Client
}

func newResourceGraphClient(cred azcore.TokenCredential) (*resourceGraphClient, error) {
	client, err := armresourcegraph.NewClient(cred, nil)
	if err != nil {
		return nil, err
	}
	return &resourceGraphClient{client: client}, nil
}

func (c *resourceGraphClient) QueryPatchInstallations(ctx context.Context, subscriptionID string, days int, resourceGroup string) ([]*domain.PatchInstallation, error) {
	query := buildPatchHistoryQuery(days, resourceGroup)

	request := armresourcegraph.QueryRequest{
		Query:         to.Ptr(query),
		Subscriptions: []*string{to.Ptr(subscriptionID)},
		Options: &armresourcegraph.QueryRequestOptions{
			ResultFormat: to.Ptr(armresourcegraph.ResultFormatObjectArray),
		},
	}

	result, err := c.client.Resources(ctx, request, nil)
	if err != nil {
		return nil, translateError(err, "subscription "+subscriptionID)
	}

	return decodePatchInstallations(result.Data)
}

func buildPatchHistoryQuery(days int, resourceGroup string) string {
	if days <= 0 {
		days = 30
	}

	var b strings.Builder
	fmt.Fprintf(&b, patchHistoryQuery, days)
	if resourceGroup != "" {
		// Single quotes delimit KQL string literals; strip them from input.
		fmt.Fprintf(&b, "\n| where resourceId contains '%s'",
			strings.ToLower(strings.ReplaceAll(resourceGroup, "'", "")))
	}
	b.WriteString(patchHistoryProjection)
	return b.String()
}

// decodePatchInstallations converts the objectArray rows into typed records.
// The SDK surfaces Data as interface{}; round-tripping through JSON keeps the
// field mapping in one place (the struct tags).
func decodePatchInstallations(data interface{}) ([]*domain.PatchInstallation, error) {
	if data == nil {
		return nil, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCloudUnavailable,
			"unexpected resource graph payload", http.StatusBadGateway)
	}

	var installations []*domain.PatchInstallation
	if err := json.Unmarshal(raw, &installations); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCloudUnavailable,
			"unexpected resource graph payload", http.StatusBadGateway)
	}
	return installations, nil
}
