package errors

import "net/http"

// Error code constants. Errors carry code + params; the HTTP layer and the
// agent gateway translate codes, never free-form strings.

// Request validation codes.
const (
	CodeMissingParameter = "MISSING_PARAMETER"
	CodeInvalidParameter = "INVALID_PARAMETER"
)

// Cloud access codes.
const (
	CodeAuthFailed       = "AUTH_FAILED"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeCloudUnavailable = "CLOUD_UNAVAILABLE"
)

// Maintenance domain codes.
const (
	CodeConfigurationNotFound = "CONFIGURATION_NOT_FOUND"
	CodeVMNotFound            = "VM_NOT_FOUND"
	CodeAgentUnavailable      = "AGENT_UNAVAILABLE"
)

// Convenience constructors using predefined codes.

// ErrMissingParameter creates a caller error for an incomplete filter.
func ErrMissingParameter(param string) *AppError {
	return &AppError{
		Code:       CodeMissingParameter,
		Message:    "missing required parameter: " + param,
		HTTPStatus: http.StatusBadRequest,
	}
}

// ErrConfigurationNotFound creates a not-found error for a named lookup.
func ErrConfigurationNotFound(name, resourceGroup string) *AppError {
	return &AppError{
		Code:       CodeConfigurationNotFound,
		Message:    "maintenance configuration not found",
		HTTPStatus: http.StatusNotFound,
		Params: map[string]interface{}{
			"configuration_name": name,
			"resource_group":     resourceGroup,
		},
	}
}

// ErrVMNotFound creates a not-found error for a named VM lookup.
func ErrVMNotFound(name, resourceGroup string) *AppError {
	return &AppError{
		Code:       CodeVMNotFound,
		Message:    "virtual machine not found",
		HTTPStatus: http.StatusNotFound,
		Params: map[string]interface{}{
			"vm_name":        name,
			"resource_group": resourceGroup,
		},
	}
}

// ErrPermissionDenied creates a 403 naming the role the identity is missing.
func ErrPermissionDenied(scope string) *AppError {
	return &AppError{
		Code:       CodePermissionDenied,
		Message:    "access denied; the identity needs the Reader role on " + scope,
		HTTPStatus: http.StatusForbidden,
	}
}

// ErrAuthFailed creates a 401 for an exhausted credential chain.
func ErrAuthFailed(err error) *AppError {
	return &AppError{
		Code:       CodeAuthFailed,
		Message:    "authentication against the cloud control plane failed",
		HTTPStatus: http.StatusUnauthorized,
		Err:        err,
	}
}
