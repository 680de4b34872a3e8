package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Batman16012001/Locally-Connector-New/internal/model"
)

// CreateJobHandler creates a new ingestion job from a source descriptor
func (s *Server) CreateJobHandler(c *gin.Context) {
	var req model.JobCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := s.ic.SubmitDescriptor(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to create job: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, job)
}

// GetJobHandler returns a specific job by ID
func (s *Server) GetJobHandler(c *gin.Context) {
	jobID := c.Param("id")

	job, err := s.jc.GetJob(c.Request.Context(), jobID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get job: " + err.Error()})
		return
	}

	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListJobsHandler returns jobs, optionally filtered by status, paginated
func (s *Server) ListJobsHandler(c *gin.Context) {
	limit, skip := getPaginationParams(c)

	status := model.JobStatus(c.Query("status"))
	if status != "" && !isValidJobStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job status"})
		return
	}

	jobs, err := s.jc.ListJobs(c.Request.Context(), status, limit, skip)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list jobs: " + err.Error()})
		return
	}

	if jobs == nil {
		jobs = []*model.Job{}
	}
	c.JSON(http.StatusOK, jobs)
}

// DeleteJobHandler removes job bookkeeping; ingested records stay persisted
func (s *Server) DeleteJobHandler(c *gin.Context) {
	jobID := c.Param("id")

	deleted, err := s.jc.DeleteJob(c.Request.Context(), jobID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete job: " + err.Error()})
		return
	}

	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Job deleted successfully"})
}

// getPaginationParams extracts pagination parameters from request
func getPaginationParams(c *gin.Context) (int, int) {
	limit := 10
	skip := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			limit = parsedLimit
		}
	}

	if skipStr := c.Query("skip"); skipStr != "" {
		if parsedSkip, err := strconv.Atoi(skipStr); err == nil && parsedSkip >= 0 {
			skip = parsedSkip
		}
	}

	return limit, skip
}

// isValidJobStatus checks if a job status is valid
func isValidJobStatus(status model.JobStatus) bool {
	switch status {
	case model.StatusPending, model.StatusProcessing, model.StatusCompleted, model.StatusFailed:
		return true
	}
	return false
}
