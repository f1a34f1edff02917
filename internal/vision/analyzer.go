package vision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/effectiveclass/classlens/internal/media"
)

// engagementThreshold separates an engaged sample from an unengaged one when
// computing attention spans.
const engagementThreshold = 0.5

// Placeholder technical scores; there is no dedicated quality model.
const (
	placeholderVideoQuality = 0.8
	placeholderAudioQuality = 0.7
	placeholderBrightness   = 0.8
	placeholderContrast     = 0.7
)

// FrameSample holds the per-frame signals for one sampled frame. Samples are
// consumed by aggregation and never persisted.
type FrameSample struct {
	Timestamp       float64
	FaceCount       int
	FaceConfidence  float64
	EngagementScore float64
	MotionScore     float64
	PoseScore       float64
}

type FaceSample struct {
	Timestamp  float64 `json:"timestamp"`
	FaceCount  int     `json:"face_count"`
	Confidence float64 `json:"confidence"`
}

type MotionSample struct {
	Timestamp   float64 `json:"timestamp"`
	MotionScore float64 `json:"motion_score"`
}

type EngagementPeriod struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
}

type EngagementMetrics struct {
	FaceDetectionCount  int                `json:"face_detection_count"`
	MotionActivityScore float64            `json:"motion_activity_score"`
	AttentionSpanAvg    float64            `json:"attention_span_avg"`
	EngagementPeriods   []EngagementPeriod `json:"engagement_periods"`
}

type LightingAnalysis struct {
	BrightnessScore float64 `json:"brightness_score"`
	ContrastScore   float64 `json:"contrast_score"`
}

type TechnicalAnalysis struct {
	VideoQualityScore    float64          `json:"video_quality_score"`
	AudioQualityScore    float64          `json:"audio_quality_score"`
	Lighting             LightingAnalysis `json:"lighting_analysis"`
	CameraStabilityScore float64          `json:"camera_stability_score"`
}

type AnalysisResult struct {
	FaceDetectionData  []FaceSample      `json:"face_detection_data"`
	MotionAnalysisData []MotionSample    `json:"motion_analysis_data"`
	EngagementMetrics  EngagementMetrics `json:"engagement_metrics"`
	TechnicalAnalysis  TechnicalAnalysis `json:"technical_analysis"`
}

// Analyzer aggregates noisy per-frame signals into session-level engagement
// metrics. Per-frame failures are skipped; only an unopenable file is an
// error.
type Analyzer struct {
	source   media.FrameSource
	detector Detector
}

func NewAnalyzer(source media.FrameSource, detector Detector) *Analyzer {
	return &Analyzer{source: source, detector: detector}
}

func (a *Analyzer) Analyze(ctx context.Context, videoPath string) (*AnalysisResult, error) {
	stream, info, err := a.source.Open(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("could not open video: %w", err)
	}
	defer stream.Close()

	var samples []FrameSample
	for {
		frame, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logrus.Warnf("[Vision] Skipping frame: %v", err)
			continue
		}
		samples = append(samples, a.analyzeFrame(ctx, frame))
	}

	duration := info.Duration
	if len(samples) > 0 && samples[len(samples)-1].Timestamp > duration {
		duration = samples[len(samples)-1].Timestamp
	}

	result := Aggregate(samples, duration)
	logrus.Infof("[Vision] Analysis completed for %s: %d samples, %d with faces",
		videoPath, len(samples), result.EngagementMetrics.FaceDetectionCount)
	return result, nil
}

func (a *Analyzer) analyzeFrame(ctx context.Context, frame *media.Frame) FrameSample {
	sample := FrameSample{
		Timestamp:   frame.Timestamp,
		MotionScore: MotionScore(frame.Image),
	}

	detections, err := a.detector.Detect(ctx, frame.Image)
	if err != nil {
		logrus.Warnf("[Vision] Detector failed at %.2fs: %v", frame.Timestamp, err)
		return sample
	}

	sample.FaceCount = len(detections.Faces)
	if sample.FaceCount > 0 {
		var sum float64
		for _, face := range detections.Faces {
			sum += face.Confidence
		}
		sample.FaceConfidence = sum / float64(sample.FaceCount)
	}

	if detections.FaceLandmarks != nil {
		sample.EngagementScore = EngagementScore(detections.FaceLandmarks)
	}
	if detections.Pose != nil {
		sample.PoseScore = PoseScore(detections.Pose)
	}
	return sample
}

// EngagementScore combines an eye-openness estimate with a head-pose proxy
// derived from ear-to-nose horizontal symmetry, clamped to [0,1].
func EngagementScore(landmarks *FaceLandmarks) float64 {
	leftOpenness := math.Abs(landmarks.LeftEyeTop.Y - landmarks.LeftEyeBottom.Y)
	rightOpenness := math.Abs(landmarks.RightEyeTop.Y - landmarks.RightEyeBottom.Y)
	eyeScore := (leftOpenness + rightOpenness) / 2

	headPoseScore := 1.0 - math.Abs(landmarks.LeftEar.X-landmarks.RightEar.X)*2

	return clamp01((eyeScore + headPoseScore) / 2)
}

// PoseScore measures shoulder vertical alignment in [0,1].
func PoseScore(pose *PoseLandmarks) float64 {
	return clamp01(1.0 - math.Abs(pose.LeftShoulder.Y-pose.RightShoulder.Y))
}

// Aggregate reduces the sampled sequence to session-level metrics. An empty
// sample set yields an explicit all-zero result with empty slices so callers
// never see missing keys.
func Aggregate(samples []FrameSample, duration float64) *AnalysisResult {
	result := &AnalysisResult{
		FaceDetectionData:  []FaceSample{},
		MotionAnalysisData: []MotionSample{},
		EngagementMetrics: EngagementMetrics{
			EngagementPeriods: []EngagementPeriod{},
		},
	}
	if len(samples) == 0 {
		return result
	}

	var motionSum float64
	var motionCount int
	for _, sample := range samples {
		if sample.FaceCount > 0 {
			result.FaceDetectionData = append(result.FaceDetectionData, FaceSample{
				Timestamp:  sample.Timestamp,
				FaceCount:  sample.FaceCount,
				Confidence: sample.FaceConfidence,
			})
		}
		if sample.MotionScore > 0 {
			result.MotionAnalysisData = append(result.MotionAnalysisData, MotionSample{
				Timestamp:   sample.Timestamp,
				MotionScore: sample.MotionScore,
			})
			motionSum += sample.MotionScore
			motionCount++
		}
	}

	avgMotion := 0.0
	if motionCount > 0 {
		avgMotion = motionSum / float64(motionCount)
	}

	periods := attentionPeriods(samples, duration)

	avgSpan := 0.0
	if len(periods) > 0 {
		var total float64
		for _, period := range periods {
			total += period.Duration
		}
		avgSpan = total / float64(len(periods))
	}

	result.EngagementMetrics = EngagementMetrics{
		FaceDetectionCount:  len(result.FaceDetectionData),
		MotionActivityScore: avgMotion,
		AttentionSpanAvg:    avgSpan,
		EngagementPeriods:   periods,
	}
	result.TechnicalAnalysis = TechnicalAnalysis{
		VideoQualityScore: placeholderVideoQuality,
		AudioQualityScore: placeholderAudioQuality,
		Lighting: LightingAnalysis{
			BrightnessScore: placeholderBrightness,
			ContrastScore:   placeholderContrast,
		},
		CameraStabilityScore: 1.0 - avgMotion,
	}
	return result
}

// attentionPeriods scans the samples in timestamp order, opening an engaged
// period when the engagement score crosses above the threshold and closing it
// at the first sample at or below it. A period still open at the last sample
// closes at the clip's end.
func attentionPeriods(samples []FrameSample, duration float64) []EngagementPeriod {
	periods := []EngagementPeriod{}
	start := -1.0

	for _, sample := range samples {
		if sample.EngagementScore > engagementThreshold {
			if start < 0 {
				start = sample.Timestamp
			}
		} else if start >= 0 {
			periods = append(periods, EngagementPeriod{
				Start:    start,
				End:      sample.Timestamp,
				Duration: sample.Timestamp - start,
			})
			start = -1
		}
	}

	if start >= 0 {
		periods = append(periods, EngagementPeriod{
			Start:    start,
			End:      duration,
			Duration: duration - start,
		})
	}
	return periods
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
