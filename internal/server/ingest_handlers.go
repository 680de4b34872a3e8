package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// IngestCSVHandler accepts a multipart CSV upload, creates a tracking job,
// and returns the job id immediately; ingestion proceeds out of band.
func (s *Server) IngestCSVHandler(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".csv") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only CSV files are allowed"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload: " + err.Error()})
		return
	}
	defer file.Close()

	job, err := s.ic.SubmitUpload(c.Request.Context(), fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to submit upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit ingestion: " + err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "CSV ingestion accepted",
		"job_id":  job.ID,
		"status":  job.Status,
	})
}
