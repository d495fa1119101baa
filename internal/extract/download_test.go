package extract

import (
	"testing"

	"github.com/kkdai/youtube/v2"
)

func TestParseSelector(t *testing.T) {
	tests := []struct {
		name string
		sel  string
		want plan
	}{
		{"audio explicit bitrate", "bestaudio:320k", plan{audioOnly: true, bitrate: "320k"}},
		{"audio default bitrate", "bestaudio:", plan{audioOnly: true, bitrate: "192k"}},
		{"best video", "bestvideo+bestaudio/best", plan{}},
		{"capped 720", "bestvideo[height<=720]+bestaudio/best", plan{maxHeight: 720}},
		{"capped 480", "bestvideo[height<=480]+bestaudio/best", plan{maxHeight: 480}},
		{"garbage degrades to best", "whatever", plan{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseSelector(tt.sel); got != tt.want {
				t.Errorf("parseSelector(%q) = %+v, want %+v", tt.sel, got, tt.want)
			}
		})
	}
}

func TestArtifactName(t *testing.T) {
	tests := []struct {
		name  string
		title string
		token string
		ext   string
		want  string
	}{
		{"plain title", "My Video", "abc123", ".mp4", "My_Video_abc123.mp4"},
		{"shell characters stripped", "rm -rf / $(boom)", "abc123", ".mp3", "rm_-rf__boom_abc123.mp3"},
		{"empty title", "", "abc123", ".mp4", "abc123.mp4"},
		{"unicode title kept", "動画 タイトル", "abc123", ".mp4", "動画_タイトル_abc123.mp4"},
		{"symbols-only title collapses to token", "★☆★", "abc123", ".mp4", "abc123.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := artifactName(tt.title, tt.token, tt.ext); got != tt.want {
				t.Errorf("artifactName(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestClipArgs(t *testing.T) {
	start, end := 5.0, 12.5
	tests := []struct {
		name string
		clip *ClipRange
		want []string
	}{
		{"nil clip", nil, nil},
		{"start only", &ClipRange{Start: &start}, []string{"-ss", "5.000"}},
		{"end only", &ClipRange{End: &end}, []string{"-to", "12.500"}},
		{"both", &ClipRange{Start: &start, End: &end}, []string{"-ss", "5.000", "-to", "12.500"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clipArgs(tt.clip)
			if len(got) != len(tt.want) {
				t.Fatalf("clipArgs = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("clipArgs = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestBestAudioFormatPrefersHighestBitrate(t *testing.T) {
	formats := youtube.FormatList{
		{MimeType: "audio/webm; codecs=\"opus\"", Bitrate: 160000},
		{MimeType: "audio/mp4; codecs=\"mp4a.40.2\"", Bitrate: 128000},
		{MimeType: "video/mp4; codecs=\"avc1\"", Bitrate: 2000000},
	}
	got := bestAudioFormat(formats, false)
	if got == nil || got.Bitrate != 160000 {
		t.Fatalf("bestAudioFormat picked %+v, want the 160k stream", got)
	}
}

func TestBestAudioFormatMP4PreferredForMux(t *testing.T) {
	// The typical case: Opus at a higher bitrate than AAC. Stream-copy
	// muxing into mp4 needs the mp4 audio even though it loses on bitrate.
	formats := youtube.FormatList{
		{MimeType: "audio/webm; codecs=\"opus\"", Bitrate: 160000},
		{MimeType: "audio/mp4; codecs=\"mp4a.40.2\"", Bitrate: 128000},
		{MimeType: "audio/mp4; codecs=\"mp4a.40.2\"", Bitrate: 48000},
	}
	got := bestAudioFormat(formats, true)
	if got == nil || got.MimeType != "audio/mp4; codecs=\"mp4a.40.2\"" || got.Bitrate != 128000 {
		t.Fatalf("mux pick = %+v, want the best audio/mp4 stream", got)
	}

	// No mp4 audio at all: fall back to the best available.
	opusOnly := youtube.FormatList{
		{MimeType: "audio/webm; codecs=\"opus\"", Bitrate: 160000},
	}
	got = bestAudioFormat(opusOnly, true)
	if got == nil || got.Bitrate != 160000 {
		t.Fatalf("mux fallback pick = %+v, want the opus stream", got)
	}
}

func TestBestAudioFormatMP4Tiebreak(t *testing.T) {
	formats := youtube.FormatList{
		{MimeType: "audio/webm; codecs=\"opus\"", Bitrate: 128000},
		{MimeType: "audio/mp4; codecs=\"mp4a.40.2\"", Bitrate: 128000},
	}
	got := bestAudioFormat(formats, false)
	if got == nil || got.MimeType != "audio/mp4; codecs=\"mp4a.40.2\"" {
		t.Fatalf("equal bitrates must prefer the mp4 container, got %+v", got)
	}
}

func TestBestAudioFormatNoAudio(t *testing.T) {
	formats := youtube.FormatList{{MimeType: "video/mp4", Bitrate: 1000}}
	if got := bestAudioFormat(formats, true); got != nil {
		t.Fatalf("expected nil for a list without audio, got %+v", got)
	}
}

func TestBestVideoFormat(t *testing.T) {
	formats := youtube.FormatList{
		{MimeType: "video/mp4", Height: 1080},
		{MimeType: "video/mp4", Height: 720},
		{MimeType: "video/mp4", Height: 360},
		{MimeType: "audio/mp4", Bitrate: 128000},
	}

	if got := bestVideoFormat(formats, 0); got == nil || got.Height != 1080 {
		t.Fatalf("uncapped pick = %+v, want 1080", got)
	}
	if got := bestVideoFormat(formats, 720); got == nil || got.Height != 720 {
		t.Fatalf("720 cap pick = %+v, want 720", got)
	}
	if got := bestVideoFormat(formats, 480); got == nil || got.Height != 360 {
		t.Fatalf("480 cap pick = %+v, want 360", got)
	}
	// Nothing fits under the cap: fall back to the best available.
	if got := bestVideoFormat(formats, 100); got == nil || got.Height != 1080 {
		t.Fatalf("impossible cap pick = %+v, want best-available 1080", got)
	}
}

func TestMeterPreflightRejectsOversizedAnnouncement(t *testing.T) {
	m := newMeter(nil, 600<<20, 500<<20)
	if err := m.preflight(); err != ErrSizeLimit {
		t.Fatalf("preflight = %v, want ErrSizeLimit", err)
	}

	m = newMeter(nil, 100<<20, 500<<20)
	if err := m.preflight(); err != nil {
		t.Fatalf("preflight within the cap failed: %v", err)
	}

	// Unknown length passes preflight and is checked as bytes arrive.
	m = newMeter(nil, 0, 500<<20)
	if err := m.preflight(); err != nil {
		t.Fatalf("preflight with unknown length failed: %v", err)
	}
}

func TestMeterAddEnforcesCapMidTransfer(t *testing.T) {
	m := newMeter(nil, 0, 1024)
	if err := m.add(1000); err != nil {
		t.Fatalf("add under the cap failed: %v", err)
	}
	if err := m.add(100); err != ErrSizeLimit {
		t.Fatalf("add past the cap = %v, want ErrSizeLimit", err)
	}
}

func TestMeterFinishEmitsSingleTerminalSample(t *testing.T) {
	var samples []Progress
	m := newMeter(func(p Progress) { samples = append(samples, p) }, 1000, 0)
	_ = m.add(1000)
	m.finish()
	m.finish()

	terminal := 0
	for _, s := range samples {
		if s.Finished {
			terminal++
			if s.DownloadedBytes != 1000 {
				t.Fatalf("terminal sample bytes = %d, want 1000", s.DownloadedBytes)
			}
		}
	}
	if terminal != 1 {
		t.Fatalf("%d terminal samples emitted, want exactly 1", terminal)
	}
}
