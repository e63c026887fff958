package azure

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/maintenance/armmaintenance"

	"cloudpasture.io/maintwatch/internal/domain"
	apperrors "cloudpasture.io/maintwatch/internal/pkg/errors"
)

const (
	computeProviderName = "Microsoft.Compute"
	vmResourceType      = "virtualMachines"
)

// maintenanceClient adapts the armmaintenance SDK to MaintenanceAPI.
type maintenanceClient struct {
	configs        *armmaintenance.ConfigurationsClient
	assignments    *armmaintenance.ConfigurationAssignmentsClient
	subAssignments *armmaintenance.ConfigurationAssignmentsWithinSubscriptionClient
	subscriptionID string
}

func newMaintenanceClient(subscriptionID string, cred azcore.TokenCredential) (*maintenanceClient, error) {
	configs, err := armmaintenance.NewConfigurationsClient(subscriptionID, cred, nil)
	if err != nil {
		return nil, err
	}
	assignments, err := armmaintenance.NewConfigurationAssignmentsClient(subscriptionID, cred, nil)
	if err != nil {
		return nil, err
	}
	subAssignments, err := armmaintenance.NewConfigurationAssignmentsWithinSubscriptionClient(subscriptionID, cred, nil)
	if err != nil {
		return nil, err
	}
	return &maintenanceClient{
		configs:        configs,
		assignments:    assignments,
		subAssignments: subAssignments,
		subscriptionID: subscriptionID,
	}, nil
}

func (c *maintenanceClient) GetConfiguration(ctx context.Context, resourceGroup, name string) (*domain.MaintenanceConfiguration, error) {
	resp, err := c.configs.Get(ctx, resourceGroup, name, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrConfigurationNotFound(name, resourceGroup)
		}
		return nil, translateError(err, "subscription "+c.subscriptionID)
	}

	mc, err := mapConfiguration(&resp.Configuration)
	if err != nil {
		return nil, err
	}
	return mc, nil
}

func (c *maintenanceClient) ListConfigurations(ctx context.Context) ([]*domain.MaintenanceConfiguration, error) {
	var out []*domain.MaintenanceConfiguration

	pager := c.configs.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			if isNotFound(err) {
				return out, nil
			}
			return nil, translateError(err, "subscription "+c.subscriptionID)
		}
		for _, item := range page.Value {
			mc, err := mapConfiguration(item)
			if err != nil {
				// Malformed records are skipped; the rest of the page is kept.
				continue
			}
			out = append(out, mc)
		}
	}
	return out, nil
}

func (c *maintenanceClient) ListAssignments(ctx context.Context) ([]*domain.ConfigurationAssignment, error) {
	var out []*domain.ConfigurationAssignment

	pager := c.subAssignments.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			if isNotFound(err) {
				return out, nil
			}
			return nil, translateError(err, "subscription "+c.subscriptionID)
		}
		for _, item := range page.Value {
			ca, err := mapAssignment(item)
			if err != nil {
				continue
			}
			out = append(out, ca)
		}
	}
	return out, nil
}

func (c *maintenanceClient) ListVMAssignments(ctx context.Context, resourceGroup, vmName string) ([]*domain.ConfigurationAssignment, error) {
	var out []*domain.ConfigurationAssignment

	pager := c.assignments.NewListPager(resourceGroup, computeProviderName, vmResourceType, vmName, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			if isNotFound(err) {
				return out, nil
			}
			return nil, translateError(err, "resource group "+resourceGroup)
		}
		for _, item := range page.Value {
			ca, err := mapAssignment(item)
			if err != nil {
				continue
			}
			out = append(out, ca)
		}
	}
	return out, nil
}
