package domain

// StatusEntry is one instance-view status line.
type StatusEntry struct {
	Code          string `json:"code,omitempty"`
	Level         string `json:"level,omitempty"`
	DisplayStatus string `json:"display_status,omitempty"`
	Message       string `json:"message,omitempty"`
	Time          string `json:"time,omitempty"`
}

// BootDiagnostics is the boot diagnostics state of one VM. DataError is set
// when boot diagnostics is enabled but the console data could not be read.
type BootDiagnostics struct {
	Enabled              bool   `json:"enabled"`
	StorageURI           string `json:"storage_uri,omitempty"`
	ConsoleScreenshotURI string `json:"console_screenshot_uri,omitempty"`
	SerialConsoleLogURI  string `json:"serial_console_log_uri,omitempty"`
	DataError            string `json:"data_error,omitempty"`
}

// ExtensionStatus is the instance-view state of one VM extension. HasErrors
// is true when any status reports at the Error level.
type ExtensionStatus struct {
	Name               string        `json:"name"`
	Type               string        `json:"type,omitempty"`
	TypeHandlerVersion string        `json:"type_handler_version,omitempty"`
	Statuses           []StatusEntry `json:"statuses,omitempty"`
	Substatuses        []StatusEntry `json:"substatuses,omitempty"`
	HasErrors          bool          `json:"has_errors"`
}

// ExtensionHandler is one guest-agent extension handler.
type ExtensionHandler struct {
	Type               string       `json:"type,omitempty"`
	TypeHandlerVersion string       `json:"type_handler_version,omitempty"`
	Status             *StatusEntry `json:"status,omitempty"`
}

// GuestAgentStatus is the guest agent state of one VM. Ready follows the
// agent's own "Ready" display status.
type GuestAgentStatus struct {
	Installed         bool               `json:"installed"`
	Version           string             `json:"version,omitempty"`
	Ready             bool               `json:"ready"`
	Statuses          []StatusEntry      `json:"statuses,omitempty"`
	ExtensionHandlers []ExtensionHandler `json:"extension_handlers,omitempty"`
}

// VMDiagnostics bundles the read-only diagnostic surfaces of one VM.
type VMDiagnostics struct {
	VMName        string            `json:"vm_name"`
	ResourceGroup string            `json:"resource_group"`
	Boot          BootDiagnostics   `json:"boot_diagnostics"`
	VMStatuses    []StatusEntry     `json:"vm_statuses,omitempty"`
	Extensions    []ExtensionStatus `json:"extensions,omitempty"`
	GuestAgent    GuestAgentStatus  `json:"guest_agent"`
}
