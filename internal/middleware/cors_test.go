package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newCORSRouter() *gin.Engine {
	r := gin.New()
	r.Use(CORS())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	return r
}

func TestCORS_Headers(t *testing.T) {
	r := newCORSRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	// 通配 Origin 下浏览器拒绝带凭据头的响应, 不应下发
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("Access-Control-Allow-Credentials = %q, want 不下发", got)
	}
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	r := newCORSRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/health", nil))

	if w.Code != http.StatusNoContent {
		t.Fatalf("预检请求 status = %d, want 204", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("预检响应不应有响应体: %s", w.Body.String())
	}
}
