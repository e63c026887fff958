package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health returns the static liveness payload. The route stays anonymous.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
