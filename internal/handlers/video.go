package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type videoInfoRequest struct {
	URL string `json:"url"`
}

// VideoInfo handles POST /api/video-info: metadata lookup without
// queueing any work.
func (h *Handler) VideoInfo(c echo.Context) error {
	var req videoInfoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if !validateURL(req.URL) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "url must point at a supported video host"})
	}

	md, err := h.fetcher.FetchMetadata(c.Request().Context(), req.URL)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, md)
}
