package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// AudioExtractor isolates the audio track of a video file. An empty path with
// a nil error means the video has no audio track.
type AudioExtractor interface {
	Extract(ctx context.Context, videoPath string) (string, error)
}

// FFmpegAudioExtractor shells out to ffmpeg, writing a 16kHz mono wav next to
// the configured output directory.
type FFmpegAudioExtractor struct {
	ffmpegPath  string
	ffprobePath string
	outputDir   string
}

func NewFFmpegAudioExtractor(outputDir string) (*FFmpegAudioExtractor, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audio output directory: %w", err)
	}

	return &FFmpegAudioExtractor{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		outputDir:   outputDir,
	}, nil
}

func (ae *FFmpegAudioExtractor) Extract(ctx context.Context, videoPath string) (string, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return "", fmt.Errorf("video file not accessible: %w", err)
	}

	hasAudio, err := ae.hasAudioStream(ctx, videoPath)
	if err != nil {
		return "", err
	}
	if !hasAudio {
		logrus.Warnf("[Audio] No audio track found in video: %s", videoPath)
		return "", nil
	}

	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	audioPath := filepath.Join(ae.outputDir, base+"_audio.wav")

	cmd := exec.CommandContext(ctx, ae.ffmpegPath,
		"-y",
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		audioPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(audioPath)
		return "", fmt.Errorf("ffmpeg audio extraction failed: %w (%s)", err, lastLine(stderr.String()))
	}

	logrus.Infof("[Audio] Extracted audio to %s", audioPath)
	return audioPath, nil
}

func (ae *FFmpegAudioExtractor) hasAudioStream(ctx context.Context, videoPath string) (bool, error) {
	cmd := exec.CommandContext(ctx, ae.ffprobePath,
		"-v", "error",
		"-select_streams", "a",
		"-show_entries", "stream=codec_type",
		"-of", "csv=p=0",
		videoPath,
	)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return false, fmt.Errorf("ffprobe failed: %w", err)
	}
	return strings.TrimSpace(stdout.String()) != "", nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}
