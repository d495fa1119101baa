// Package handlers exposes the HTTP API over the job lifecycle core.
package handlers

import (
	"context"
	"net/url"
	"strings"

	"vidgrab/internal/extract"
	"vidgrab/internal/jobs"
	"vidgrab/internal/models"
)

// MetadataFetcher is the metadata-only side of the extraction client.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, url string) (*extract.Metadata, error)
}

// Handler carries the dependencies of the API endpoints.
type Handler struct {
	pool    *jobs.Pool
	store   *jobs.Store
	fetcher MetadataFetcher
}

func New(pool *jobs.Pool, store *jobs.Store, fetcher MetadataFetcher) *Handler {
	return &Handler{pool: pool, store: store, fetcher: fetcher}
}

var allowedHosts = map[string]struct{}{
	"youtube.com":       {},
	"www.youtube.com":   {},
	"m.youtube.com":     {},
	"music.youtube.com": {},
	"youtu.be":          {},
}

// validateURL accepts only http(s) URLs pointing at a known host.
func validateURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	_, ok := allowedHosts[strings.ToLower(u.Hostname())]
	return ok
}

func validContainer(c models.Container) bool {
	return c == models.ContainerMP3 || c == models.ContainerMP4
}

func validQuality(q models.Quality) bool {
	return q == models.QualityHigh || q == models.QualityMedium || q == models.QualityLow
}
