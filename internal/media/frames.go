package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Frame is one decoded sampled frame with its position in the clip.
type Frame struct {
	Image     image.Image
	Timestamp float64
}

type VideoInfo struct {
	FPS      float64
	Duration float64
	Width    int
	Height   int
}

// FrameStream yields sampled frames in timestamp order. Next returns io.EOF
// when the clip is exhausted.
type FrameStream interface {
	Next() (*Frame, error)
	Close() error
}

// FrameSource opens a video for sampled sequential reading at roughly two
// frames per second.
type FrameSource interface {
	Open(ctx context.Context, videoPath string) (FrameStream, *VideoInfo, error)
}

// FFmpegFrameSource extracts every K-th frame with ffmpeg, K = max(1,
// round(fps/2)), into a temp directory consumed by the returned stream.
type FFmpegFrameSource struct {
	ffmpegPath  string
	ffprobePath string
	tempDir     string
}

func NewFFmpegFrameSource() (*FFmpegFrameSource, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	tempDir := filepath.Join(os.TempDir(), "classlens-frames")
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &FFmpegFrameSource{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		tempDir:     tempDir,
	}, nil
}

func (fs *FFmpegFrameSource) Open(ctx context.Context, videoPath string) (FrameStream, *VideoInfo, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return nil, nil, fmt.Errorf("video file not accessible: %w", err)
	}

	info, err := fs.probe(ctx, videoPath)
	if err != nil {
		return nil, nil, err
	}

	interval := 1
	if info.FPS > 0 {
		interval = int(math.Round(info.FPS / 2))
		if interval < 1 {
			interval = 1
		}
	}

	frameDir := filepath.Join(fs.tempDir, uuid.New().String())
	if err := os.MkdirAll(frameDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create frame directory: %w", err)
	}

	cmd := exec.CommandContext(ctx, fs.ffmpegPath,
		"-i", videoPath,
		"-vf", fmt.Sprintf("select='not(mod(n\\,%d))'", interval),
		"-vsync", "vfr",
		"-q:v", "2",
		filepath.Join(frameDir, "frame_%06d.jpg"),
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.RemoveAll(frameDir)
		return nil, nil, fmt.Errorf("ffmpeg frame extraction failed: %w (%s)", err, lastLine(stderr.String()))
	}

	entries, err := os.ReadDir(frameDir)
	if err != nil {
		os.RemoveAll(frameDir)
		return nil, nil, fmt.Errorf("failed to read frame directory: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".jpg") {
			paths = append(paths, filepath.Join(frameDir, entry.Name()))
		}
	}
	sort.Strings(paths)

	logrus.Infof("[Frames] Sampled %d frames from %s (fps=%.2f, interval=%d)",
		len(paths), videoPath, info.FPS, interval)

	step := float64(interval)
	if info.FPS > 0 {
		step = float64(interval) / info.FPS
	}

	return &fileFrameStream{dir: frameDir, paths: paths, step: step}, info, nil
}

func (fs *FFmpegFrameSource) probe(ctx context.Context, videoPath string) (*VideoInfo, error) {
	cmd := exec.CommandContext(ctx, fs.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=r_frame_rate,width,height",
		"-show_entries", "format=duration",
		"-of", "json",
		videoPath,
	)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe struct {
		Streams []struct {
			RFrameRate string `json:"r_frame_rate"`
			Width      int    `json:"width"`
			Height     int    `json:"height"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 {
		return nil, fmt.Errorf("no video stream in %s", videoPath)
	}

	info := &VideoInfo{
		FPS:    parseFrameRate(probe.Streams[0].RFrameRate),
		Width:  probe.Streams[0].Width,
		Height: probe.Streams[0].Height,
	}
	if d, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		info.Duration = d
	}
	return info, nil
}

// parseFrameRate handles ffprobe's rational form, e.g. "30000/1001".
func parseFrameRate(rate string) float64 {
	parts := strings.Split(rate, "/")
	if len(parts) == 2 {
		num, err1 := strconv.ParseFloat(parts[0], 64)
		den, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 == nil && err2 == nil && den != 0 {
			return num / den
		}
		return 0
	}
	f, err := strconv.ParseFloat(rate, 64)
	if err != nil {
		return 0
	}
	return f
}

type fileFrameStream struct {
	dir   string
	paths []string
	step  float64
	index int
}

func (s *fileFrameStream) Next() (*Frame, error) {
	if s.index >= len(s.paths) {
		return nil, io.EOF
	}

	path := s.paths[s.index]
	timestamp := float64(s.index) * s.step
	s.index++

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}

	return &Frame{Image: img, Timestamp: timestamp}, nil
}

func (s *fileFrameStream) Close() error {
	return os.RemoveAll(s.dir)
}
