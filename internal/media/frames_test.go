package media

import (
	"image"
	"image/jpeg"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		name     string
		rate     string
		expected float64
	}{
		{"integer rational", "30/1", 30},
		{"ntsc rational", "30000/1001", 29.97002997002997},
		{"plain float", "25", 25},
		{"zero denominator", "30/0", 0},
		{"garbage", "abc", 0},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFrameRate(tt.rate)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("parseFrameRate(%q) = %v, want %v", tt.rate, got, tt.expected)
			}
		})
	}
}

func TestSamplingInterval(t *testing.T) {
	tests := []struct {
		fps      float64
		expected int
	}{
		{30, 15},
		{29.97, 15},
		{25, 13},
		{2, 1},
		{1, 1},
		{0.5, 1},
	}

	for _, tt := range tests {
		interval := 1
		if tt.fps > 0 {
			interval = int(math.Round(tt.fps / 2))
			if interval < 1 {
				interval = 1
			}
		}
		if interval != tt.expected {
			t.Errorf("fps %v: expected interval %d, got %d", tt.fps, tt.expected, interval)
		}
	}
}

func writeTestJPEG(t *testing.T, path string) {
	t.Helper()
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create frame file: %v", err)
	}
	defer file.Close()
	if err := jpeg.Encode(file, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil); err != nil {
		t.Fatalf("Failed to encode frame: %v", err)
	}
}

func TestFileFrameStream(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 3)
	for i := range paths {
		paths[i] = filepath.Join(dir, "frame_"+string(rune('a'+i))+".jpg")
		writeTestJPEG(t, paths[i])
	}

	stream := &fileFrameStream{dir: dir, paths: paths, step: 0.5}

	for i := 0; i < 3; i++ {
		frame, err := stream.Next()
		if err != nil {
			t.Fatalf("Next failed at frame %d: %v", i, err)
		}
		expected := float64(i) * 0.5
		if frame.Timestamp != expected {
			t.Errorf("Frame %d: expected timestamp %v, got %v", i, expected, frame.Timestamp)
		}
		if frame.Image == nil {
			t.Fatalf("Frame %d: expected a decoded image", i)
		}
	}

	if _, err := stream.Next(); err != io.EOF {
		t.Errorf("Expected io.EOF after last frame, got %v", err)
	}

	if err := stream.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("Expected frame directory removed on Close")
	}
}

func TestFileFrameStreamBadFrame(t *testing.T) {
	dir := t.TempDir()
	badPath := filepath.Join(dir, "frame_bad.jpg")
	if err := os.WriteFile(badPath, []byte("not a jpeg"), 0644); err != nil {
		t.Fatalf("Failed to write bad frame: %v", err)
	}
	goodPath := filepath.Join(dir, "frame_good.jpg")
	writeTestJPEG(t, goodPath)

	stream := &fileFrameStream{dir: dir, paths: []string{badPath, goodPath}, step: 0.5}

	if _, err := stream.Next(); err == nil {
		t.Fatal("Expected decode error for corrupt frame")
	}

	frame, err := stream.Next()
	if err != nil {
		t.Fatalf("Expected the stream to advance past the bad frame: %v", err)
	}
	if frame.Timestamp != 0.5 {
		t.Errorf("Expected timestamp 0.5 for second frame, got %v", frame.Timestamp)
	}
}

func TestLastLine(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"single", "single"},
		{"first\nsecond\nthird", "third"},
		{"trailing newline\n", "trailing newline"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := lastLine(tt.input); got != tt.expected {
			t.Errorf("lastLine(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
