package models

import "time"

// PlaybackAccessGrant is a short-lived, immutable authorization record for
// retrieving one lesson's video by one student. Every request produces a
// fresh row; grants are never deduplicated or mutated.
type PlaybackAccessGrant struct {
	ID            string    `db:"id" json:"id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	LessonID      string    `db:"lesson_id" json:"lesson_id"`
	DeviceID      *string   `db:"device_id" json:"device_id,omitempty"`
	SignedURLHash string    `db:"signed_url_hash" json:"signed_url_hash"`
	IssuedAt      time.Time `db:"issued_at" json:"issued_at"`
	ExpiresAt     time.Time `db:"expires_at" json:"expires_at"`
}

// PlaybackGrant is the response composed for the player.
type PlaybackGrant struct {
	ManifestURL   string    `json:"manifest_url"`
	ExpiresAt     time.Time `json:"expires_at"`
	WatermarkSeed string    `json:"watermark_seed"`
	CourseID      string    `json:"course_id"`
}
