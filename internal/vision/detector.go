package vision

import (
	"context"
	"image"
)

// Point is a landmark position normalized to [0,1] image coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Face struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Confidence float64 `json:"confidence"`
}

// FaceLandmarks are the facial points the engagement score is derived from,
// for the most prominent detected face.
type FaceLandmarks struct {
	LeftEyeTop     Point `json:"left_eye_top"`
	LeftEyeBottom  Point `json:"left_eye_bottom"`
	RightEyeTop    Point `json:"right_eye_top"`
	RightEyeBottom Point `json:"right_eye_bottom"`
	NoseTip        Point `json:"nose_tip"`
	LeftEar        Point `json:"left_ear"`
	RightEar       Point `json:"right_ear"`
}

type PoseLandmarks struct {
	Nose          Point `json:"nose"`
	LeftShoulder  Point `json:"left_shoulder"`
	RightShoulder Point `json:"right_shoulder"`
}

type Detections struct {
	Faces         []Face         `json:"faces"`
	FaceLandmarks *FaceLandmarks `json:"face_landmarks,omitempty"`
	Pose          *PoseLandmarks `json:"pose_landmarks,omitempty"`
}

// Detector is the vision capability boundary: given a frame, return face
// boxes, facial landmarks, and pose landmarks. Implementations must tolerate
// frames with no people in them (empty Detections, nil error).
type Detector interface {
	Detect(ctx context.Context, frame image.Image) (*Detections, error)
}
