package domain

// VirtualMachine is a read-only snapshot of an Azure VM.
type VirtualMachine struct {
	ID                string
	Name              string
	ResourceGroup     string
	SubscriptionID    string
	Location          string
	VMSize            string
	ProvisioningState string
	Tags              map[string]string
}
