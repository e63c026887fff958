package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "cloudpasture.io/maintwatch/internal/pkg/errors"
)

// APIKeyHeader carries the caller's key, mirroring the function-key header
// convention of the managed front-end this service replaces.
const APIKeyHeader = "X-Functions-Key"

// APIKey enforces a shared-key check on non-public routes. An empty
// configured key disables the check; paths in publicPaths stay anonymous.
func APIKey(key string, publicPaths ...string) gin.HandlerFunc {
	public := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		if _, ok := public[c.FullPath()]; ok {
			c.Next()
			return
		}

		provided := c.GetHeader(APIKeyHeader)
		if provided == "" {
			provided = c.Query("code")
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			appErr := apperrors.Unauthorized(apperrors.CodeAuthFailed, "invalid or missing API key")
			c.AbortWithStatusJSON(appErr.HTTPStatus, gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			})
			return
		}
		c.Next()
	}
}
