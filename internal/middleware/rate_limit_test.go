package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"staffsync/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestKeyedRateLimiter_GetLimiter(t *testing.T) {
	l := middleware.NewKeyedRateLimiter(rate.Limit(1), 1)

	a := l.GetLimiter("10.0.0.1")
	assert.Same(t, a, l.GetLimiter("10.0.0.1"))
	assert.NotSame(t, a, l.GetLimiter("10.0.0.2"))
}

func TestRateLimitByEmployee(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-Employee"); id == "1" {
			c.Set(middleware.ContextEmployeeID, uint(1))
		}
	})
	r.Use(middleware.RateLimitByEmployee(rate.Limit(0.0001), 1))
	r.GET("/leaves/me", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(employee string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/leaves/me", nil)
		req.Header.Set("X-Test-Employee", employee)
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("1"))
	assert.Equal(t, http.StatusTooManyRequests, call("1"))
	// anonymous requests are not limited per employee
	assert.Equal(t, http.StatusOK, call(""))
	assert.Equal(t, http.StatusOK, call(""))
}
