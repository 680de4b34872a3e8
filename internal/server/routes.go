package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.CORS.AllowedOrigins,
		AllowMethods:     s.config.CORS.AllowedMethods,
		AllowHeaders:     s.config.CORS.AllowedHeaders,
		AllowCredentials: s.config.CORS.AllowCredentials,
		MaxAge:           time.Duration(s.config.CORS.MaxAge) * time.Second,
	}))

	r.GET("/", s.rootHandler)
	r.GET("/health", s.healthHandler)

	v1 := r.Group("/api/v1")

	v1.POST("/ingest-csv", s.RateLimitMiddleware(), s.IngestCSVHandler)

	v1.GET("/stats", s.statsHandler)

	v1.POST("/jobs", s.CreateJobHandler)
	v1.GET("/jobs", s.ListJobsHandler)
	v1.GET("/jobs/:id", s.GetJobHandler)
	v1.DELETE("/jobs/:id", s.DeleteJobHandler)

	return r
}
