package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) rootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to Locally Data Connector API",
		"status":  s.sc.Online(),
	})
}

// statsHandler reports product and per-status job counts
func (s *Server) statsHandler(c *gin.Context) {
	stats, err := s.sc.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to collect stats: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (s *Server) healthHandler(c *gin.Context) {
	if err := s.sc.DBHealth(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": err.Error()})
		return
	}

	if err := s.sc.CacheHealth(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
