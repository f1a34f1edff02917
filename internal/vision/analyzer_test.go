package vision

import (
	"context"
	"image"
	"image/color"
	"io"
	"math"
	"testing"

	"github.com/effectiveclass/classlens/internal/media"
)

func TestAggregateAttentionPeriods(t *testing.T) {
	engagement := []float64{0.6, 0.7, 0.3, 0.8, 0.8, 0.2}
	samples := make([]FrameSample, len(engagement))
	for i, score := range engagement {
		samples[i] = FrameSample{Timestamp: float64(i), EngagementScore: score}
	}

	result := Aggregate(samples, 6.0)
	periods := result.EngagementMetrics.EngagementPeriods

	if len(periods) != 2 {
		t.Fatalf("expected 2 engagement periods, got %d", len(periods))
	}
	if periods[0].Start != 0 || periods[0].End != 2 || periods[0].Duration != 2 {
		t.Errorf("unexpected first period: %+v", periods[0])
	}
	if periods[1].Start != 3 || periods[1].End != 5 || periods[1].Duration != 2 {
		t.Errorf("unexpected second period: %+v", periods[1])
	}
	if result.EngagementMetrics.AttentionSpanAvg != 2 {
		t.Errorf("expected average span 2, got %v", result.EngagementMetrics.AttentionSpanAvg)
	}
}

func TestAggregateOpenPeriodClosesAtDuration(t *testing.T) {
	samples := []FrameSample{
		{Timestamp: 0, EngagementScore: 0.2},
		{Timestamp: 1, EngagementScore: 0.9},
		{Timestamp: 2, EngagementScore: 0.9},
	}

	result := Aggregate(samples, 4.5)
	periods := result.EngagementMetrics.EngagementPeriods

	if len(periods) != 1 {
		t.Fatalf("expected 1 period, got %d", len(periods))
	}
	if periods[0].Start != 1 || periods[0].End != 4.5 || periods[0].Duration != 3.5 {
		t.Errorf("unexpected period: %+v", periods[0])
	}
}

func TestAggregateThresholdIsExclusive(t *testing.T) {
	samples := []FrameSample{
		{Timestamp: 0, EngagementScore: 0.5},
		{Timestamp: 1, EngagementScore: 0.5},
	}

	result := Aggregate(samples, 2.0)
	if len(result.EngagementMetrics.EngagementPeriods) != 0 {
		t.Errorf("scores at the threshold must not open a period, got %+v",
			result.EngagementMetrics.EngagementPeriods)
	}
}

func TestAggregateEmptySamples(t *testing.T) {
	result := Aggregate(nil, 10.0)

	if result.FaceDetectionData == nil || len(result.FaceDetectionData) != 0 {
		t.Error("expected empty non-nil face data")
	}
	if result.MotionAnalysisData == nil || len(result.MotionAnalysisData) != 0 {
		t.Error("expected empty non-nil motion data")
	}
	if result.EngagementMetrics.EngagementPeriods == nil || len(result.EngagementMetrics.EngagementPeriods) != 0 {
		t.Error("expected empty non-nil periods")
	}
	if result.EngagementMetrics.FaceDetectionCount != 0 ||
		result.EngagementMetrics.MotionActivityScore != 0 ||
		result.EngagementMetrics.AttentionSpanAvg != 0 {
		t.Errorf("expected zeroed metrics, got %+v", result.EngagementMetrics)
	}
	if result.TechnicalAnalysis.VideoQualityScore != 0 || result.TechnicalAnalysis.CameraStabilityScore != 0 {
		t.Errorf("expected zeroed technical analysis, got %+v", result.TechnicalAnalysis)
	}
}

func TestAggregateMotionAndStability(t *testing.T) {
	samples := []FrameSample{
		{Timestamp: 0, MotionScore: 0.2},
		{Timestamp: 1, MotionScore: 0},
		{Timestamp: 2, MotionScore: 0.4},
	}

	result := Aggregate(samples, 3.0)

	// Zero-motion samples are excluded from the activity average.
	if math.Abs(result.EngagementMetrics.MotionActivityScore-0.3) > 1e-9 {
		t.Errorf("expected motion activity 0.3, got %v", result.EngagementMetrics.MotionActivityScore)
	}
	if math.Abs(result.TechnicalAnalysis.CameraStabilityScore-0.7) > 1e-9 {
		t.Errorf("expected stability 0.7, got %v", result.TechnicalAnalysis.CameraStabilityScore)
	}
	if result.TechnicalAnalysis.VideoQualityScore != 0.8 || result.TechnicalAnalysis.AudioQualityScore != 0.7 {
		t.Errorf("unexpected quality placeholders: %+v", result.TechnicalAnalysis)
	}
	if result.TechnicalAnalysis.Lighting.BrightnessScore != 0.8 || result.TechnicalAnalysis.Lighting.ContrastScore != 0.7 {
		t.Errorf("unexpected lighting placeholders: %+v", result.TechnicalAnalysis.Lighting)
	}
}

func TestAggregateFaceCount(t *testing.T) {
	samples := []FrameSample{
		{Timestamp: 0, FaceCount: 2, FaceConfidence: 0.9},
		{Timestamp: 1},
		{Timestamp: 2, FaceCount: 1, FaceConfidence: 0.8},
	}

	result := Aggregate(samples, 3.0)

	if result.EngagementMetrics.FaceDetectionCount != 2 {
		t.Errorf("expected 2 face samples, got %d", result.EngagementMetrics.FaceDetectionCount)
	}
	if len(result.FaceDetectionData) != 2 {
		t.Fatalf("expected 2 face data entries, got %d", len(result.FaceDetectionData))
	}
	if result.FaceDetectionData[0].FaceCount != 2 || result.FaceDetectionData[0].Confidence != 0.9 {
		t.Errorf("unexpected first face entry: %+v", result.FaceDetectionData[0])
	}
}

func TestEngagementScore(t *testing.T) {
	tests := []struct {
		name      string
		landmarks FaceLandmarks
		expected  float64
	}{
		{
			name: "open eyes facing camera",
			landmarks: FaceLandmarks{
				LeftEyeTop: Point{Y: 0.40}, LeftEyeBottom: Point{Y: 0.44},
				RightEyeTop: Point{Y: 0.40}, RightEyeBottom: Point{Y: 0.44},
				LeftEar: Point{X: 0.30}, RightEar: Point{X: 0.70},
			},
			// eye 0.04, head 1-0.4*2=0.2 -> (0.04+0.2)/2 = 0.12
			expected: 0.12,
		},
		{
			name: "profile view drops head pose term",
			landmarks: FaceLandmarks{
				LeftEyeTop: Point{Y: 0.40}, LeftEyeBottom: Point{Y: 0.44},
				RightEyeTop: Point{Y: 0.40}, RightEyeBottom: Point{Y: 0.44},
				LeftEar: Point{X: 0.48}, RightEar: Point{X: 0.50},
			},
			// eye 0.04, head 1-0.02*2=0.96 -> 0.5
			expected: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EngagementScore(&tt.landmarks)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("EngagementScore = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPoseScore(t *testing.T) {
	level := PoseScore(&PoseLandmarks{LeftShoulder: Point{Y: 0.6}, RightShoulder: Point{Y: 0.6}})
	if level != 1.0 {
		t.Errorf("level shoulders should score 1.0, got %v", level)
	}

	tilted := PoseScore(&PoseLandmarks{LeftShoulder: Point{Y: 0.4}, RightShoulder: Point{Y: 0.7}})
	if math.Abs(tilted-0.7) > 1e-9 {
		t.Errorf("tilted shoulders should score 0.7, got %v", tilted)
	}
}

func TestMotionScoreUniformFrame(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			frame.Set(x, y, color.Gray{Y: 128})
		}
	}

	if got := MotionScore(frame); got != 0 {
		t.Errorf("uniform frame should have zero motion, got %v", got)
	}
}

func TestMotionScoreHighContrastFrame(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if (x/8+y/8)%2 == 0 {
				frame.Set(x, y, color.Gray{Y: 255})
			} else {
				frame.Set(x, y, color.Gray{Y: 0})
			}
		}
	}

	got := MotionScore(frame)
	if got <= 0 || got > 1 {
		t.Errorf("checkerboard frame should score in (0,1], got %v", got)
	}
}

type fakeFrameStream struct {
	frames []*media.Frame
	errs   []error
	index  int
	closed bool
}

func (s *fakeFrameStream) Next() (*media.Frame, error) {
	if s.index < len(s.errs) && s.errs[s.index] != nil {
		err := s.errs[s.index]
		s.index++
		return nil, err
	}
	if s.index >= len(s.frames) {
		return nil, io.EOF
	}
	frame := s.frames[s.index]
	s.index++
	return frame, nil
}

func (s *fakeFrameStream) Close() error {
	s.closed = true
	return nil
}

type fakeFrameSource struct {
	stream *fakeFrameStream
	info   media.VideoInfo
	err    error
}

func (fs *fakeFrameSource) Open(ctx context.Context, videoPath string) (media.FrameStream, *media.VideoInfo, error) {
	if fs.err != nil {
		return nil, nil, fs.err
	}
	return fs.stream, &fs.info, nil
}

type fakeDetector struct {
	detections Detections
	err        error
}

func (d *fakeDetector) Detect(ctx context.Context, frame image.Image) (*Detections, error) {
	if d.err != nil {
		return nil, d.err
	}
	return &d.detections, nil
}

func testFrame(ts float64) *media.Frame {
	return &media.Frame{Image: image.NewRGBA(image.Rect(0, 0, 8, 8)), Timestamp: ts}
}

func TestAnalyzeProducesSamples(t *testing.T) {
	stream := &fakeFrameStream{frames: []*media.Frame{testFrame(0), testFrame(0.5), testFrame(1)}}
	source := &fakeFrameSource{stream: stream, info: media.VideoInfo{FPS: 2, Duration: 1.5}}
	detector := &fakeDetector{detections: Detections{
		Faces: []Face{{Confidence: 0.9}},
		FaceLandmarks: &FaceLandmarks{
			LeftEyeTop: Point{Y: 0.1}, LeftEyeBottom: Point{Y: 0.5},
			RightEyeTop: Point{Y: 0.1}, RightEyeBottom: Point{Y: 0.5},
			LeftEar: Point{X: 0.45}, RightEar: Point{X: 0.55},
		},
	}}

	result, err := NewAnalyzer(source, detector).Analyze(context.Background(), "lesson.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.EngagementMetrics.FaceDetectionCount != 3 {
		t.Errorf("expected 3 face samples, got %d", result.EngagementMetrics.FaceDetectionCount)
	}
	// eye 0.4, head 0.8 -> engagement 0.6, a single period over the clip.
	periods := result.EngagementMetrics.EngagementPeriods
	if len(periods) != 1 {
		t.Fatalf("expected 1 engagement period, got %d", len(periods))
	}
	if periods[0].Start != 0 || periods[0].End != 1.5 {
		t.Errorf("unexpected period: %+v", periods[0])
	}
	if !stream.closed {
		t.Error("expected stream to be closed")
	}
}

func TestAnalyzeDetectorFailuresAreSkipped(t *testing.T) {
	stream := &fakeFrameStream{frames: []*media.Frame{testFrame(0), testFrame(0.5)}}
	source := &fakeFrameSource{stream: stream, info: media.VideoInfo{Duration: 1}}
	detector := &fakeDetector{err: context.DeadlineExceeded}

	result, err := NewAnalyzer(source, detector).Analyze(context.Background(), "lesson.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.EngagementMetrics.FaceDetectionCount != 0 {
		t.Errorf("expected no face samples, got %d", result.EngagementMetrics.FaceDetectionCount)
	}
}

func TestAnalyzeFrameReadFailuresAreSkipped(t *testing.T) {
	stream := &fakeFrameStream{
		frames: []*media.Frame{testFrame(0), testFrame(0.5), testFrame(1)},
		errs:   []error{nil, io.ErrUnexpectedEOF},
	}
	source := &fakeFrameSource{stream: stream, info: media.VideoInfo{Duration: 1.5}}
	detector := &fakeDetector{detections: Detections{Faces: []Face{{Confidence: 0.9}}}}

	result, err := NewAnalyzer(source, detector).Analyze(context.Background(), "lesson.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.EngagementMetrics.FaceDetectionCount != 2 {
		t.Errorf("expected the bad frame dropped, got %d face samples", result.EngagementMetrics.FaceDetectionCount)
	}
}

func TestAnalyzeOpenFailure(t *testing.T) {
	source := &fakeFrameSource{err: io.ErrUnexpectedEOF}

	_, err := NewAnalyzer(source, &fakeDetector{}).Analyze(context.Background(), "missing.mp4")
	if err == nil {
		t.Fatal("expected an error when the video cannot be opened")
	}
}
