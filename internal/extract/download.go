package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kkdai/youtube/v2"

	"vidgrab/internal/media"
)

const progressInterval = 250 * time.Millisecond

// Download fetches the streams the selector asks for, emits progress
// samples, post-processes with ffmpeg and returns the final artifact
// path. Intermediate files are removed on every exit path; the caller
// owns cleanup of the final artifact.
func (c *Client) Download(ctx context.Context, url, selector string, out OutputTemplate, onProgress ProgressFunc, clip *ClipRange) (string, error) {
	video, err := c.yt.GetVideoContext(ctx, url)
	if err != nil {
		return "", &DownloadError{URL: url, Err: err}
	}

	var path string
	if p := parseSelector(selector); p.audioOnly {
		path, err = c.downloadAudio(ctx, video, p, out, onProgress, clip)
	} else {
		path, err = c.downloadVideo(ctx, video, p, out, onProgress, clip)
	}
	if err != nil {
		return "", &DownloadError{URL: url, Err: err}
	}

	if info, statErr := os.Stat(path); statErr != nil || info.Size() == 0 {
		os.Remove(path)
		return "", &DownloadError{URL: url, Err: fmt.Errorf("generated file is empty")}
	}
	return path, nil
}

func (c *Client) downloadAudio(ctx context.Context, video *youtube.Video, p plan, out OutputTemplate, onProgress ProgressFunc, clip *ClipRange) (string, error) {
	format := bestAudioFormat(video.Formats, false)
	if format == nil {
		return "", fmt.Errorf("no audio stream available")
	}

	m := newMeter(onProgress, format.ContentLength, c.maxBytes)
	if err := m.preflight(); err != nil {
		return "", err
	}

	temp := filepath.Join(c.tempDir, out.Token+".audio.part")
	defer os.Remove(temp)

	if err := c.downloadStream(ctx, video, format, temp, m); err != nil {
		return "", err
	}
	m.finish()

	final := filepath.Join(out.Dir, artifactName(video.Title, out.Token, ".mp3"))
	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", temp}
	args = append(args, clipArgs(clip)...)
	args = append(args, "-vn", "-codec:a", "libmp3lame", "-b:a", p.bitrate, final)
	if err := runFFmpeg(ctx, args...); err != nil {
		os.Remove(final)
		return "", err
	}
	return final, nil
}

func (c *Client) downloadVideo(ctx context.Context, video *youtube.Video, p plan, out OutputTemplate, onProgress ProgressFunc, clip *ClipRange) (string, error) {
	videoFormat := bestVideoFormat(video.Formats, p.maxHeight)
	if videoFormat == nil {
		return "", fmt.Errorf("no video stream available")
	}
	audioFormat := bestAudioFormat(video.Formats, true)

	total := videoFormat.ContentLength
	if audioFormat != nil {
		total += audioFormat.ContentLength
	}
	m := newMeter(onProgress, total, c.maxBytes)
	if err := m.preflight(); err != nil {
		return "", err
	}

	videoTemp := filepath.Join(c.tempDir, out.Token+".video.part")
	defer os.Remove(videoTemp)

	var audioTemp string
	if audioFormat != nil {
		audioTemp = filepath.Join(c.tempDir, out.Token+".audio.part")
		defer os.Remove(audioTemp)
	}

	var wg sync.WaitGroup
	var errV, errA error
	wg.Add(1)
	go func() {
		defer wg.Done()
		errV = c.downloadStream(ctx, video, videoFormat, videoTemp, m)
	}()
	if audioFormat != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errA = c.downloadStream(ctx, video, audioFormat, audioTemp, m)
		}()
	}
	wg.Wait()
	if errV != nil {
		return "", errV
	}
	if errA != nil {
		return "", errA
	}
	m.finish()

	final := filepath.Join(out.Dir, artifactName(video.Title, out.Token, ".mp4"))
	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", videoTemp}
	if audioTemp != "" {
		args = append(args, "-i", audioTemp)
	}
	args = append(args, clipArgs(clip)...)
	args = append(args, "-c", "copy", final)
	if err := runFFmpeg(ctx, args...); err != nil {
		os.Remove(final)
		return "", err
	}
	return final, nil
}

func (c *Client) downloadStream(ctx context.Context, video *youtube.Video, format *youtube.Format, path string, m *meter) error {
	stream, _, err := c.yt.GetStreamContext(ctx, video, format)
	if err != nil {
		return err
	}
	defer stream.Close()

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	buf := make([]byte, 32*1024)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, readErr := stream.Read(buf)
		if n > 0 {
			if _, writeErr := file.Write(buf[:n]); writeErr != nil {
				return writeErr
			}
			if addErr := m.add(n); addErr != nil {
				return addErr
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				return nil
			}
			return readErr
		}
	}
}

// artifactName builds the stored filename from the sanitized title and
// the job-unique token.
func artifactName(title, token, ext string) string {
	base := strings.TrimSpace(media.SanitizeFilename(title))
	base = strings.ReplaceAll(base, " ", "_")
	if base == "" {
		return token + ext
	}
	return base + "_" + token + ext
}

func clipArgs(clip *ClipRange) []string {
	if clip == nil {
		return nil
	}
	var args []string
	if clip.Start != nil {
		args = append(args, "-ss", formatSeconds(*clip.Start))
	}
	if clip.End != nil {
		args = append(args, "-to", formatSeconds(*clip.End))
	}
	return args
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}

func runFFmpeg(ctx context.Context, args ...string) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found: %w", err)
	}
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg: %s", strings.TrimSpace(string(out)))
	}
	return nil
}

// bestAudioFormat picks the highest-bitrate audio stream. With
// preferMP4 set, an audio/mp4 stream wins over any other container
// when one exists: the mp4 mux stream-copies the audio, and Opus in
// MP4 is gated behind experimental ffmpeg flags.
func bestAudioFormat(formats youtube.FormatList, preferMP4 bool) *youtube.Format {
	var best, mp4 *youtube.Format
	for i := range formats {
		f := &formats[i]
		if !mimeHasPrefix(f, "audio/") {
			continue
		}
		if best == nil || f.Bitrate > best.Bitrate ||
			(f.Bitrate == best.Bitrate && strings.Contains(f.MimeType, "mp4") && !strings.Contains(best.MimeType, "mp4")) {
			best = f
		}
		if strings.Contains(f.MimeType, "mp4") && (mp4 == nil || f.Bitrate > mp4.Bitrate) {
			mp4 = f
		}
	}
	if preferMP4 && mp4 != nil {
		return mp4
	}
	return best
}

// bestVideoFormat picks the tallest video stream at or below maxHeight
// (0 means uncapped), falling back to the best available when nothing
// fits under the cap.
func bestVideoFormat(formats youtube.FormatList, maxHeight int) *youtube.Format {
	var best, capped *youtube.Format
	for i := range formats {
		f := &formats[i]
		if !mimeHasPrefix(f, "video/") {
			continue
		}
		if best == nil || f.Height > best.Height {
			best = f
		}
		if maxHeight > 0 && f.Height <= maxHeight {
			if capped == nil || f.Height > capped.Height {
				capped = f
			}
		}
	}
	if maxHeight > 0 && capped != nil {
		return capped
	}
	return best
}
