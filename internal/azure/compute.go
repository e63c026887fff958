package azure

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v6"

	"cloudpasture.io/maintwatch/internal/domain"
	apperrors "cloudpasture.io/maintwatch/internal/pkg/errors"
)

// computeClient adapts the armcompute SDK to ComputeAPI.
type computeClient struct {
	vms            *armcompute.VirtualMachinesClient
	subscriptionID string
}

func newComputeClient(subscriptionID string, cred azcore.TokenCredential) (*computeClient, error) {
	vms, err := armcompute.NewVirtualMachinesClient(subscriptionID, cred, nil)
	if err != nil {
		return nil, err
	}
	return &computeClient{vms: vms, subscriptionID: subscriptionID}, nil
}

func (c *computeClient) ListVMs(ctx context.Context, resourceGroup string) ([]*domain.VirtualMachine, error) {
	var out []*domain.VirtualMachine

	pager := c.vms.NewListPager(resourceGroup, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			if isNotFound(err) {
				return out, nil
			}
			return nil, translateError(err, "resource group "+resourceGroup)
		}
		for _, item := range page.Value {
			vm, err := mapVirtualMachine(item)
			if err != nil {
				continue
			}
			out = append(out, vm)
		}
	}
	return out, nil
}

func (c *computeClient) ListAllVMs(ctx context.Context) ([]*domain.VirtualMachine, error) {
	var out []*domain.VirtualMachine

	pager := c.vms.NewListAllPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, translateError(err, "subscription "+c.subscriptionID)
		}
		for _, item := range page.Value {
			vm, err := mapVirtualMachine(item)
			if err != nil {
				continue
			}
			out = append(out, vm)
		}
	}
	return out, nil
}

func (c *computeClient) GetVMPatchDetail(ctx context.Context, resourceGroup, name string) (*domain.VMPatchDetail, error) {
	resp, err := c.vms.Get(ctx, resourceGroup, name, &armcompute.VirtualMachinesClientGetOptions{
		Expand: to.Ptr(armcompute.InstanceViewTypesInstanceView),
	})
	if err != nil {
		return nil, translateError(err, "resource group "+resourceGroup)
	}
	return mapPatchDetail(&resp.VirtualMachine), nil
}

func (c *computeClient) GetVMDiagnostics(ctx context.Context, resourceGroup, name string) (*domain.VMDiagnostics, error) {
	resp, err := c.vms.Get(ctx, resourceGroup, name, &armcompute.VirtualMachinesClientGetOptions{
		Expand: to.Ptr(armcompute.InstanceViewTypesInstanceView),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrVMNotFound(name, resourceGroup)
		}
		return nil, translateError(err, "resource group "+resourceGroup)
	}

	diag, err := mapDiagnostics(&resp.VirtualMachine)
	if err != nil {
		return nil, translateError(err, "resource group "+resourceGroup)
	}

	if diag.Boot.Enabled {
		data, err := c.vms.RetrieveBootDiagnosticsData(ctx, resourceGroup, name, nil)
		if err != nil {
			// Unreadable console data is noted on the report, the rest
			// of the diagnosis still goes through.
			diag.Boot.DataError = err.Error()
		} else {
			diag.Boot.ConsoleScreenshotURI = deref(data.ConsoleScreenshotBlobURI)
			diag.Boot.SerialConsoleLogURI = deref(data.SerialConsoleLogBlobURI)
		}
	}
	return diag, nil
}
