// Package media extracts audio tracks from source video URLs by shelling
// out to yt-dlp (which drives ffmpeg for the mp3 transcode). Extraction is
// I/O bound and runs one video at a time inside a job.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/creatorly/styletrain/internal/domain"
)

// Extractor runs yt-dlp against a video URL and returns the extracted
// audio as an in-memory buffer ready for upload.
type Extractor struct {
	binary  string
	workDir string
}

// NewExtractor creates an Extractor. Empty arguments fall back to the
// yt-dlp on PATH and the OS temp dir.
func NewExtractor(binary, workDir string) *Extractor {
	if binary == "" {
		binary = "yt-dlp"
	}
	if workDir == "" {
		workDir = os.TempDir()
	}
	return &Extractor{binary: binary, workDir: workDir}
}

// CheckDependencies verifies yt-dlp and ffmpeg are installed.
func (e *Extractor) CheckDependencies() error {
	if _, err := exec.LookPath(e.binary); err != nil {
		return fmt.Errorf("missing dependency: %s is not installed or not on PATH", e.binary)
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("missing dependency: ffmpeg is required for audio extraction and was not found on PATH")
	}
	return nil
}

// ExtractAudio downloads the best audio track for sourceURL, transcodes it
// to mp3, and returns the bytes. The temp file is removed before return.
// Failures are tagged as retryable external-service errors; the extraction
// stage itself does not retry (a failed video fails the job).
func (e *Extractor) ExtractAudio(ctx context.Context, sourceURL, videoID string) ([]byte, error) {
	tmpDir, err := os.MkdirTemp(e.workDir, "styletrain-audio-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outPath := filepath.Join(tmpDir, videoID+".mp3")
	args := []string{
		"-f", "bestaudio",
		"-x",
		"--audio-format", "mp3",
		"--audio-quality", "5",
		"--no-playlist",
		"-o", outPath,
		sourceURL,
	}

	cmd := exec.CommandContext(ctx, e.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, domain.NewRetryable(domain.ErrExternalService, err,
			"audio extraction failed for %s: %s", videoID, lastLine(stderr.String()))
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted audio for %s: %w", videoID, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("extracted audio for %s is empty", videoID)
	}
	return data, nil
}

// lastLine returns the final non-empty line of command output, which is
// where yt-dlp puts its error message.
func lastLine(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "no output"
}
