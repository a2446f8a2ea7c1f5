// Package localmedia shells out to ffmpeg for the one media transform
// the ingestion path needs: extracting a mono audio track from a lesson
// video before transcription.
package localmedia

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/courseagent/backend/internal/platform/ctxutil"
	"github.com/courseagent/backend/internal/platform/logger"
)

type Tools interface {
	ExtractAudio(ctx context.Context, videoPath string, outDir string) (string, error)
}

type tools struct {
	log            *logger.Logger
	ffmpegPath     string
	sampleRate     int
	defaultTimeout time.Duration
}

func NewTools(log *logger.Logger) (Tools, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	ffmpegPath := os.Getenv("FFMPEG_PATH")
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if _, err := exec.LookPath(ffmpegPath); err != nil {
		return nil, fmt.Errorf("ffmpeg not found at %q: %w", ffmpegPath, err)
	}
	return &tools{
		log:            log.With("service", "localmedia.Tools"),
		ffmpegPath:     ffmpegPath,
		sampleRate:     16000,
		defaultTimeout: 10 * time.Minute,
	}, nil
}

// ExtractAudio writes a 16kHz mono FLAC next to outDir and returns its path.
func (m *tools) ExtractAudio(ctx context.Context, videoPath string, outDir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), m.defaultTimeout)
	defer cancel()

	outPath := filepath.Join(outDir, "audio.flac")
	args := []string{
		"-y",
		"-i", videoPath,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(m.sampleRate),
		"-f", "flac", outPath,
	}

	cmd := exec.CommandContext(ctx, m.ffmpegPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg extract audio failed: %w; out=%s", err, string(out))
	}
	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("audio output missing at %s", outPath)
	}
	return outPath, nil
}
