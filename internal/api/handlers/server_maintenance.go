package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "cloudpasture.io/maintwatch/internal/pkg/errors"
)

// GetConfigurations handles
// GET /api/v1/maintenance-configurations?subscription_id&resource_group&configuration_name
func (s *Server) GetConfigurations(c *gin.Context) {
	sub := s.subscription(c.Query("subscription_id"))
	if sub == "" {
		c.Error(apperrors.ErrMissingParameter("subscription_id"))
		return
	}

	report, err := s.reports.ListConfigurations(c.Request.Context(), sub,
		c.Query("resource_group"), c.Query("configuration_name"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetConfigurationVMs handles
// GET /api/v1/maintenance-configurations/:name/vms?subscription_id&resource_group
func (s *Server) GetConfigurationVMs(c *gin.Context) {
	sub := s.subscription(c.Query("subscription_id"))
	if sub == "" {
		c.Error(apperrors.ErrMissingParameter("subscription_id"))
		return
	}

	resourceGroup := c.Query("resource_group")
	if resourceGroup == "" {
		resourceGroup = s.defaultResourceGroup
	}

	report, err := s.reports.ListVMsInConfiguration(c.Request.Context(), sub,
		resourceGroup, c.Param("name"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetConfigurationVMStatus handles
// GET /api/v1/maintenance-configurations/vm-status?subscription_id&resource_group&configuration_name
func (s *Server) GetConfigurationVMStatus(c *gin.Context) {
	sub := s.subscription(c.Query("subscription_id"))
	if sub == "" {
		c.Error(apperrors.ErrMissingParameter("subscription_id"))
		return
	}

	report, err := s.reports.ListConfigurationVMStatus(c.Request.Context(), sub,
		c.Query("resource_group"), c.Query("configuration_name"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetPatchHistory handles
// GET /api/v1/patch-history?subscription_id&days&resource_group
func (s *Server) GetPatchHistory(c *gin.Context) {
	sub := s.subscription(c.Query("subscription_id"))
	if sub == "" {
		c.Error(apperrors.ErrMissingParameter("subscription_id"))
		return
	}

	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.Error(apperrors.BadRequest(apperrors.CodeInvalidParameter, "days must be a non-negative integer"))
			return
		}
		days = parsed
	}

	report, err := s.reports.PatchHistory(c.Request.Context(), sub, days, c.Query("resource_group"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, report)
}
