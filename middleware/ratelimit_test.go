package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRateLimiterWindow(t *testing.T) {
	t.Setenv("RATE_LIMIT", "3")
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RateLimiter())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	status := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 3; i++ {
		if got := status(); got != http.StatusOK {
			t.Fatalf("request %d returned %d, want 200", i, got)
		}
	}
	if got := status(); got != http.StatusTooManyRequests {
		t.Errorf("request over the limit returned %d, want 429", got)
	}

	// A different client IP has its own window.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("fresh client returned %d, want 200", w.Code)
	}
}
