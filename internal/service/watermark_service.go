package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// WatermarkPosition is a normalised on-screen coordinate in [0,1]².
type WatermarkPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WatermarkService derives traceability seeds and rotating overlay positions.
// Seeds tie a leaked stream back to the issuing session; they are not secret.
type WatermarkService struct {
	bucket time.Duration
}

// NewWatermarkService constructs the policy with the given rotation bucket.
func NewWatermarkService(bucket time.Duration) *WatermarkService {
	if bucket <= 0 {
		bucket = 15 * time.Second
	}
	return &WatermarkService{bucket: bucket}
}

// GenerateSeed produces the per-session seed: a one-way hash over the student,
// lesson and issuance second, truncated to 16 hex chars.
func (s *WatermarkService) GenerateSeed(studentID, lessonID string) string {
	return s.seedAt(studentID, lessonID, time.Now())
}

func (s *WatermarkService) seedAt(studentID, lessonID string, at time.Time) string {
	input := fmt.Sprintf("%s%s%d", studentID, lessonID, at.Unix())
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:16]
}

// PositionAt maps a timestamp to one of four screen quadrants, cycling every
// bucket so the same timestamp always yields the same quadrant.
func (s *WatermarkService) PositionAt(at time.Time) WatermarkPosition {
	bucketSeconds := int64(s.bucket / time.Second)
	if bucketSeconds <= 0 {
		bucketSeconds = 15
	}
	quadrant := (at.Unix() / bucketSeconds) % 4
	switch quadrant {
	case 0:
		return WatermarkPosition{X: 0.1, Y: 0.1}
	case 1:
		return WatermarkPosition{X: 0.8, Y: 0.1}
	case 2:
		return WatermarkPosition{X: 0.1, Y: 0.8}
	default:
		return WatermarkPosition{X: 0.8, Y: 0.8}
	}
}
