// Package handlers implements the HTTP API surface.
//
// Handlers validate parameters, call the resolver or the agent gateway, and
// hand failures to the ErrorHandler middleware via c.Error. They never build
// error payloads themselves.
package handlers

import (
	"context"
	"time"

	"cloudpasture.io/maintwatch/internal/agent"
	"cloudpasture.io/maintwatch/internal/service"
)

// ReportService is the resolver surface the handlers use.
type ReportService interface {
	ListConfigurations(ctx context.Context, subscriptionID, resourceGroup, configName string) (*service.ConfigurationListReport, error)
	ListVMsInConfiguration(ctx context.Context, subscriptionID, resourceGroup, configName string) (*service.AssignmentReport, error)
	ListConfigurationVMStatus(ctx context.Context, subscriptionID, resourceGroup, configName string) (*service.VMStatusReport, error)
	PatchHistory(ctx context.Context, subscriptionID string, days int, resourceGroup string) (*service.PatchHistoryReport, error)
	DiagnosePatchFailure(ctx context.Context, subscriptionID, resourceGroup, vmName, assessmentStatus string) (*service.PatchFailureDiagnosis, error)
}

// QueryGateway runs natural-language queries through the agent.
type QueryGateway interface {
	Query(ctx context.Context, query, conversationID string) (*agent.QueryResult, error)
}

// ResponseLogger persists agent exchanges; a no-op implementation is valid.
type ResponseLogger interface {
	LogResponse(query, response, conversationID, status string, executionTime time.Duration)
}

// Server holds the handler dependencies, injected at construction.
type Server struct {
	reports ReportService
	gateway QueryGateway
	kb      ResponseLogger

	defaultSubscription  string
	defaultResourceGroup string
}

// Deps bundles the Server dependencies.
type Deps struct {
	Reports ReportService
	Gateway QueryGateway
	KB      ResponseLogger

	DefaultSubscription  string
	DefaultResourceGroup string
}

// NewServer creates the handler set.
func NewServer(deps Deps) *Server {
	return &Server{
		reports:              deps.Reports,
		gateway:              deps.Gateway,
		kb:                   deps.KB,
		defaultSubscription:  deps.DefaultSubscription,
		defaultResourceGroup: deps.DefaultResourceGroup,
	}
}

// subscription resolves the effective subscription: explicit query parameter
// or the configured default.
func (s *Server) subscription(requested string) string {
	if requested != "" {
		return requested
	}
	return s.defaultSubscription
}
