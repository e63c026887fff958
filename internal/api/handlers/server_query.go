package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "cloudpasture.io/maintwatch/internal/pkg/errors"
)

// queryRequest is the agent gateway request body.
type queryRequest struct {
	Query          string `json:"query"`
	ConversationID string `json:"conversation_id"`
}

// PostQuery handles POST /api/v1/query: one natural-language question routed
// through the agent. The exchange is queued to the knowledge base after the
// response is ready; storage never delays the reply.
func (s *Server) PostQuery(c *gin.Context) {
	if s.gateway == nil {
		c.Error(apperrors.New(apperrors.CodeAgentUnavailable,
			"agent front-end is not configured", http.StatusServiceUnavailable))
		return
	}

	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.BadRequest(apperrors.CodeInvalidParameter, "request body must be JSON"))
		return
	}
	if req.Query == "" {
		c.Error(apperrors.ErrMissingParameter("query"))
		return
	}

	started := time.Now()
	result, err := s.gateway.Query(c.Request.Context(), req.Query, req.ConversationID)
	if err != nil {
		c.Error(err)
		return
	}

	if s.kb != nil {
		s.kb.LogResponse(req.Query, result.Response, result.ConversationID,
			result.Status, time.Since(started))
	}
	c.JSON(http.StatusOK, result)
}
