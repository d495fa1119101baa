package media

import (
	"testing"

	"vidgrab/internal/models"
)

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		name      string
		container models.Container
		quality   models.Quality
		want      string
	}{
		{"mp3 high", models.ContainerMP3, models.QualityHigh, "bestaudio:320k"},
		{"mp3 medium", models.ContainerMP3, models.QualityMedium, "bestaudio:192k"},
		{"mp3 low", models.ContainerMP3, models.QualityLow, "bestaudio:128k"},
		{"mp3 unknown falls back to 192k", models.ContainerMP3, "ultra", "bestaudio:192k"},
		{"mp3 empty falls back to 192k", models.ContainerMP3, "", "bestaudio:192k"},
		{"mp4 high", models.ContainerMP4, models.QualityHigh, "bestvideo+bestaudio/best"},
		{"mp4 medium", models.ContainerMP4, models.QualityMedium, "bestvideo[height<=720]+bestaudio/best"},
		{"mp4 low", models.ContainerMP4, models.QualityLow, "bestvideo[height<=480]+bestaudio/best"},
		{"mp4 unknown falls back to best", models.ContainerMP4, "4k", "bestvideo+bestaudio/best"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveFormat(tt.container, tt.quality)
			if got == "" {
				t.Fatal("selector must never be empty")
			}
			if got != tt.want {
				t.Fatalf("ResolveFormat(%q, %q) = %q, want %q", tt.container, tt.quality, got, tt.want)
			}
		})
	}
}
