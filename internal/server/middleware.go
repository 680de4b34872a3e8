package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RateLimitMiddleware throttles a route per client IP using a fixed window
// counter in Redis. With no cache configured the middleware is a pass-through.
func (s *Server) RateLimitMiddleware() gin.HandlerFunc {
	limit := s.config.Ingest.RateLimitRequests
	window := time.Duration(s.config.Ingest.RateLimitPeriod) * time.Second

	return func(c *gin.Context) {
		if s.cache == nil {
			c.Next()
			return
		}

		key := c.FullPath() + ":" + c.ClientIP()
		allowed, err := s.cache.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			// A broken limiter store should not take the API down.
			log.Warn().Err(err).Str("key", key).Msg("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
