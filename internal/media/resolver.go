// Package media holds the pure format/quality resolution and filename
// rules shared by the HTTP layer and the workers.
package media

import "vidgrab/internal/models"

// ResolveFormat maps a (container, quality) pair to the selector
// expression consumed by the extraction client. It never errors:
// unrecognized quality tiers fall back to the documented defaults.
//
// mp3 selectors carry the target transcode bitrate
// ("bestaudio:192k"); mp4 selectors are descending preference chains
// in the engine's own grammar.
func ResolveFormat(container models.Container, quality models.Quality) string {
	switch container {
	case models.ContainerMP3:
		switch quality {
		case models.QualityHigh:
			return "bestaudio:320k"
		case models.QualityLow:
			return "bestaudio:128k"
		default:
			return "bestaudio:192k"
		}
	default: // mp4
		switch quality {
		case models.QualityMedium:
			return "bestvideo[height<=720]+bestaudio/best"
		case models.QualityLow:
			return "bestvideo[height<=480]+bestaudio/best"
		default:
			return "bestvideo+bestaudio/best"
		}
	}
}
