package azure

import (
	"errors"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	apperrors "cloudpasture.io/maintwatch/internal/pkg/errors"
)

// translateError maps an ARM SDK failure onto the application error taxonomy.
// scope is the resource the caller was reading, used in permission messages.
// 404s are NOT translated here: not-found semantics depend on the call site
// (a named Get is an error, a listing is just empty), so adapters check
// isNotFound first and only then fall through to translateError.
func translateError(err error, scope string) error {
	if err == nil {
		return nil
	}

	var authErr *azidentity.AuthenticationFailedError
	if errors.As(err, &authErr) {
		return apperrors.ErrAuthFailed(err)
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.StatusCode {
		case http.StatusUnauthorized:
			return apperrors.ErrAuthFailed(err)
		case http.StatusForbidden:
			return apperrors.ErrPermissionDenied(scope)
		}
		return apperrors.Wrap(err, apperrors.CodeCloudUnavailable,
			"cloud control plane request failed", http.StatusBadGateway)
	}

	return apperrors.Wrap(err, apperrors.CodeCloudUnavailable,
		"cloud control plane unreachable", http.StatusBadGateway)
}

// isNotFound reports whether the error is an ARM 404.
func isNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}
