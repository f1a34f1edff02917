package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"time"
)

// LandmarkClient talks to a landmark-detection sidecar over HTTP, posting a
// JPEG-encoded frame and receiving face boxes plus facial and pose landmarks.
type LandmarkClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewLandmarkClient(baseURL string) *LandmarkClient {
	return &LandmarkClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type detectResponse struct {
	Faces         []Face         `json:"faces"`
	FaceLandmarks *FaceLandmarks `json:"face_landmarks"`
	Pose          *PoseLandmarks `json:"pose_landmarks"`
	Error         string         `json:"error"`
}

func (c *LandmarkClient) Detect(ctx context.Context, frame image.Image) (*Detections, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/detect", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detector error %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var detectResp detectResponse
	if err := json.Unmarshal(body, &detectResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if detectResp.Error != "" {
		return nil, fmt.Errorf("detector error: %s", detectResp.Error)
	}

	return &Detections{
		Faces:         detectResp.Faces,
		FaceLandmarks: detectResp.FaceLandmarks,
		Pose:          detectResp.Pose,
	}, nil
}
