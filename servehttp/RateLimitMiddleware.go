package servehttp

import (
	"net/http"
	"sync"
	"timewheel/common"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit applies a token-bucket limiter per client IP.
func RateLimit(r rate.Limit, burst int) gin.HandlerFunc {
	limiters := sync.Map{}

	return func(c *gin.Context) {
		key := c.ClientIP()
		value, _ := limiters.LoadOrStore(key, rate.NewLimiter(r, burst))
		limiter := value.(*rate.Limiter)

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, &common.ErrorBody{
				Code: "common.too_many_requests", Message: "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
