// Package azure is the anti-corruption layer between maintwatch and the ARM
// SDK. The resolver in internal/service depends only on the interfaces here;
// the armmaintenance/armcompute/armresourcegraph bindings live in the
// adapters and are swapped for the in-memory fake in tests.
package azure

import (
	"context"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"

	"cloudpasture.io/maintwatch/internal/domain"
)

// MaintenanceAPI lists maintenance configurations and their assignments.
type MaintenanceAPI interface {
	// GetConfiguration fetches one named configuration. A missing
	// configuration is a CONFIGURATION_NOT_FOUND AppError.
	GetConfiguration(ctx context.Context, resourceGroup, name string) (*domain.MaintenanceConfiguration, error)

	// ListConfigurations lists every configuration visible in the
	// subscription, in control-plane order.
	ListConfigurations(ctx context.Context) ([]*domain.MaintenanceConfiguration, error)

	// ListAssignments lists configuration assignments subscription-wide.
	ListAssignments(ctx context.Context) ([]*domain.ConfigurationAssignment, error)

	// ListVMAssignments lists the assignments attached to a single VM.
	ListVMAssignments(ctx context.Context, resourceGroup, vmName string) ([]*domain.ConfigurationAssignment, error)
}

// ComputeAPI lists virtual machines.
type ComputeAPI interface {
	// ListVMs lists the VMs of one resource group, in control-plane order.
	ListVMs(ctx context.Context, resourceGroup string) ([]*domain.VirtualMachine, error)

	// ListAllVMs lists every VM in the subscription.
	ListAllVMs(ctx context.Context) ([]*domain.VirtualMachine, error)

	// GetVMPatchDetail fetches one VM with its instance view expanded:
	// power state plus patch assessment/installation summaries.
	GetVMPatchDetail(ctx context.Context, resourceGroup, name string) (*domain.VMPatchDetail, error)

	// GetVMDiagnostics fetches the diagnostic surfaces of one VM: boot
	// diagnostics, extension statuses and guest agent health. A missing
	// VM is a VM_NOT_FOUND AppError.
	GetVMDiagnostics(ctx context.Context, resourceGroup, name string) (*domain.VMDiagnostics, error)
}

// ResourceGraphAPI runs Azure Resource Graph queries.
type ResourceGraphAPI interface {
	// QueryPatchInstallations returns Update Manager installation runs for
	// the last `days` days, newest first, optionally filtered to one
	// resource group.
	QueryPatchInstallations(ctx context.Context, subscriptionID string, days int, resourceGroup string) ([]*domain.PatchInstallation, error)
}

// Clients bundles the per-subscription API surface.
type Clients struct {
	Maintenance MaintenanceAPI
	Compute     ComputeAPI
	Graph       ResourceGraphAPI
}

// ClientFactory builds and caches per-subscription client bundles over one
// process-wide credential. The credential is injected at construction and
// never mutated afterwards.
type ClientFactory struct {
	credential azcore.TokenCredential

	mu    sync.RWMutex
	cache map[string]*Clients
}

// NewClientFactory creates a factory over the given credential.
func NewClientFactory(cred azcore.TokenCredential) *ClientFactory {
	return &ClientFactory{
		credential: cred,
		cache:      make(map[string]*Clients),
	}
}

// For returns the client bundle for a subscription, creating it on first use.
func (f *ClientFactory) For(subscriptionID string) (*Clients, error) {
	f.mu.RLock()
	if c, ok := f.cache[subscriptionID]; ok {
		f.mu.RUnlock()
		return c, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	// Double-check after acquiring write lock
	if c, ok := f.cache[subscriptionID]; ok {
		return c, nil
	}

	maint, err := newMaintenanceClient(subscriptionID, f.credential)
	if err != nil {
		return nil, err
	}
	compute, err := newComputeClient(subscriptionID, f.credential)
	if err != nil {
		return nil, err
	}
	graph, err := newResourceGraphClient(f.credential)
	if err != nil {
		return nil, err
	}

	c := &Clients{Maintenance: maint, Compute: compute, Graph: graph}
	f.cache[subscriptionID] = c
	return c, nil
}
