package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"vidgrab/internal/jobs"
	"vidgrab/internal/models"
)

// SubmitDownload handles POST /api/download. Validation failures are
// rejected synchronously; everything after acceptance surfaces through
// the progress endpoint.
func (h *Handler) SubmitDownload(c echo.Context) error {
	var req models.DownloadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if !validateURL(req.URL) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "url must point at a supported video host"})
	}
	if !validContainer(req.Format) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "format must be mp3 or mp4"})
	}
	if req.Quality == "" {
		req.Quality = models.QualityMedium
	}
	if !validQuality(req.Quality) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "quality must be high, medium or low"})
	}
	if err := validateClip(req.StartTime, req.EndTime); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	job, err := h.pool.Submit(req)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "server is shutting down"})
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"download_id": job.ID,
		"status":      string(job.Status),
	})
}

// Progress handles GET /api/progress/:id.
func (h *Handler) Progress(c echo.Context) error {
	job, err := h.store.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "download not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, job)
}

// Retrieve handles GET /api/download/:id. Artifacts are served
// repeatedly until the retention sweeper reclaims them.
func (h *Handler) Retrieve(c echo.Context) error {
	job, err := h.store.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "download not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	if job.Status != models.StatusCompleted {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error":  "download is not ready",
			"status": string(job.Status),
		})
	}
	if _, err := os.Stat(job.ArtifactPath); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "artifact no longer available"})
	}

	c.Response().Header().Set(echo.HeaderContentType, contentTypeFor(job.ArtifactPath))
	return c.Attachment(job.ArtifactPath, job.Filename)
}

func validateClip(start, end *float64) error {
	if start != nil && *start < 0 {
		return errors.New("start_time must not be negative")
	}
	if end != nil && *end <= 0 {
		return errors.New("end_time must be positive")
	}
	if start != nil && end != nil && *end <= *start {
		return errors.New("end_time must be after start_time")
	}
	return nil
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return "audio/mpeg"
	case ".mp4":
		return "video/mp4"
	}
	return "application/octet-stream"
}
