package azure

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// NewCredential builds the process-wide token credential. The default chain
// tries environment variables, workload identity, managed identity and the
// Azure CLI in that order; tenantID pins the chain when set.
func NewCredential(tenantID string) (azcore.TokenCredential, error) {
	opts := &azidentity.DefaultAzureCredentialOptions{}
	if tenantID != "" {
		opts.TenantID = tenantID
	}

	cred, err := azidentity.NewDefaultAzureCredential(opts)
	if err != nil {
		return nil, fmt.Errorf("building default azure credential: %w", err)
	}
	return cred, nil
}
