// Package extract wraps the media-extraction engine behind the small
// surface the rest of the server needs: metadata lookup and a blocking
// download with progress callbacks.
package extract

import (
	"context"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
)

// Metadata is the stream-independent description of a video.
type Metadata struct {
	Title     string       `json:"title"`
	Duration  float64      `json:"duration"`
	Thumbnail string       `json:"thumbnail"`
	Formats   []FormatInfo `json:"formats"`
}

// FormatInfo describes one stream the engine can fetch.
type FormatInfo struct {
	Itag     int    `json:"itag"`
	MimeType string `json:"mime_type"`
	Quality  string `json:"quality"`
	Bitrate  int    `json:"bitrate"`
	Size     int64  `json:"size,omitempty"`
}

// ClipRange trims the output to [Start, End] seconds. Either bound may
// be nil.
type ClipRange struct {
	Start *float64
	End   *float64
}

// OutputTemplate tells Download where the artifact goes and the
// job-unique token its filename must embed.
type OutputTemplate struct {
	Dir   string
	Token string
}

// Progress is one telemetry sample from a running download. Finished
// is set on exactly one terminal sample, emitted when the transfer is
// done and post-processing begins.
type Progress struct {
	DownloadedBytes int64
	TotalBytes      int64
	BytesPerSecond  float64
	ETA             time.Duration
	Finished        bool
}

// ProgressFunc receives telemetry samples. It is invoked from the
// downloading goroutine only; callers serialize their own state.
type ProgressFunc func(Progress)

// Client drives the extraction engine.
type Client struct {
	yt       youtube.Client
	tempDir  string
	maxBytes int64
}

// NewClient creates a client writing intermediate files to tempDir.
// maxBytes caps the total transfer size; 0 disables the cap.
func NewClient(tempDir string, maxBytes int64) *Client {
	return &Client{
		yt:       youtube.Client{},
		tempDir:  tempDir,
		maxBytes: maxBytes,
	}
}

// FetchMetadata resolves a URL without downloading anything.
func (c *Client) FetchMetadata(ctx context.Context, url string) (*Metadata, error) {
	video, err := c.yt.GetVideoContext(ctx, url)
	if err != nil {
		return nil, &ExtractionError{URL: url, Err: err}
	}

	md := &Metadata{
		Title:    video.Title,
		Duration: video.Duration.Seconds(),
	}
	if len(video.Thumbnails) > 0 {
		// Thumbnails arrive smallest first.
		md.Thumbnail = video.Thumbnails[len(video.Thumbnails)-1].URL
	}
	for _, f := range video.Formats {
		quality := f.QualityLabel
		if quality == "" {
			quality = f.AudioQuality
		}
		md.Formats = append(md.Formats, FormatInfo{
			Itag:     f.ItagNo,
			MimeType: f.MimeType,
			Quality:  quality,
			Bitrate:  f.Bitrate,
			Size:     f.ContentLength,
		})
	}
	return md, nil
}

func mimeHasPrefix(f *youtube.Format, prefix string) bool {
	return strings.HasPrefix(f.MimeType, prefix)
}
