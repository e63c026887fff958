package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestID_Generated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())

	var fromCtx string
	r.GET("/", func(c *gin.Context) {
		fromCtx = GetRequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := performRequest(r, http.MethodGet, "/", nil)

	header := w.Header().Get(RequestIDHeader)
	if header == "" {
		t.Fatal("response must carry a request id")
	}
	if fromCtx != header {
		t.Fatalf("context id %q != header id %q", fromCtx, header)
	}
}

func TestRequestID_Propagated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := performRequest(r, http.MethodGet, "/", map[string]string{RequestIDHeader: "caller-id-1"})

	if got := w.Header().Get(RequestIDHeader); got != "caller-id-1" {
		t.Fatalf("request id = %q, want caller-id-1", got)
	}
}
