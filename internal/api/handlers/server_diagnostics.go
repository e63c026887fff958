package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "cloudpasture.io/maintwatch/internal/pkg/errors"
)

// GetVMDiagnostics handles
// GET /api/v1/virtual-machines/:name/diagnostics?subscription_id&resource_group&assessment_status
func (s *Server) GetVMDiagnostics(c *gin.Context) {
	sub := s.subscription(c.Query("subscription_id"))
	if sub == "" {
		c.Error(apperrors.ErrMissingParameter("subscription_id"))
		return
	}

	resourceGroup := c.Query("resource_group")
	if resourceGroup == "" {
		resourceGroup = s.defaultResourceGroup
	}

	report, err := s.reports.DiagnosePatchFailure(c.Request.Context(), sub,
		resourceGroup, c.Param("name"), c.Query("assessment_status"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, report)
}
