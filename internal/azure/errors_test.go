package azure

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"

	apperrors "cloudpasture.io/maintwatch/internal/pkg/errors"
)

func respError(status int) error {
	return &azcore.ResponseError{StatusCode: status, ErrorCode: "TestError"}
}

func TestTranslateError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		wantCode string
		wantHTTP int
	}{
		{name: "unauthorized", err: respError(http.StatusUnauthorized), wantCode: apperrors.CodeAuthFailed, wantHTTP: http.StatusUnauthorized},
		{name: "forbidden", err: respError(http.StatusForbidden), wantCode: apperrors.CodePermissionDenied, wantHTTP: http.StatusForbidden},
		{name: "throttled", err: respError(http.StatusTooManyRequests), wantCode: apperrors.CodeCloudUnavailable, wantHTTP: http.StatusBadGateway},
		{name: "transport", err: errors.New("dial tcp: timeout"), wantCode: apperrors.CodeCloudUnavailable, wantHTTP: http.StatusBadGateway},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			appErr, ok := apperrors.IsAppError(translateError(tc.err, "subscription sub-1"))
			if !ok {
				t.Fatalf("expected AppError, got %T", tc.err)
			}
			if appErr.Code != tc.wantCode {
				t.Fatalf("code = %s, want %s", appErr.Code, tc.wantCode)
			}
			if appErr.HTTPStatus != tc.wantHTTP {
				t.Fatalf("status = %d, want %d", appErr.HTTPStatus, tc.wantHTTP)
			}
		})
	}
}

func TestTranslateError_PermissionMessageNamesScope(t *testing.T) {
	err := translateError(respError(http.StatusForbidden), "subscription sub-1")
	if !strings.Contains(err.Error(), "Reader") || !strings.Contains(err.Error(), "sub-1") {
		t.Fatalf("permission error must name the Reader role and the scope: %v", err)
	}
}

func TestTranslateError_Nil(t *testing.T) {
	if translateError(nil, "x") != nil {
		t.Fatalf("nil must stay nil")
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(respError(http.StatusNotFound)) {
		t.Fatalf("404 response error must be detected")
	}
	if isNotFound(respError(http.StatusForbidden)) {
		t.Fatalf("403 is not a not-found")
	}
	if isNotFound(errors.New("plain")) {
		t.Fatalf("plain errors are not not-found")
	}
}

func TestBuildPatchHistoryQuery(t *testing.T) {
	q := buildPatchHistoryQuery(0, "")
	if !strings.Contains(q, "ago(30d)") {
		t.Fatalf("zero days must default to 30: %s", q)
	}
	if strings.Contains(q, "resourceId contains") {
		t.Fatalf("no resource group filter expected")
	}

	q = buildPatchHistoryQuery(7, "RG-Ops")
	if !strings.Contains(q, "ago(7d)") {
		t.Fatalf("days not applied: %s", q)
	}
	if !strings.Contains(q, "| where resourceId contains 'rg-ops'") {
		t.Fatalf("resource group filter missing or not lowercased: %s", q)
	}

	q = buildPatchHistoryQuery(7, "rg'injected")
	if strings.Contains(q, "'rg'injected'") {
		t.Fatalf("quotes must be stripped from the filter value")
	}
}
