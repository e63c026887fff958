package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"cloudpasture.io/maintwatch/internal/api/handlers"
	"cloudpasture.io/maintwatch/internal/config"
	"cloudpasture.io/maintwatch/internal/pkg/logger"
)

func init() {
	// Initialize logger for tests
	_ = logger.Init("error", "json")
}

func newTestRouter(apiKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.Server.APIKey = apiKey
	return newRouter(cfg, handlers.NewServer(handlers.Deps{}))
}

func TestRouter_HealthIsPublic(t *testing.T) {
	r := newTestRouter("secret")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_DataRoutesRequireKey(t *testing.T) {
	r := newTestRouter("secret")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/maintenance-configurations", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRouter_RequestIDHeaderSet(t *testing.T) {
	r := newTestRouter("")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("request id header missing")
	}
}
