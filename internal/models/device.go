package models

import "time"

// RegisteredDevice records one physical device a student has used.
// The (student_id, fingerprint_hash) pair is unique; rows are only
// removed by explicit administrative action.
type RegisteredDevice struct {
	ID              string    `db:"id" json:"id"`
	StudentID       string    `db:"student_id" json:"student_id"`
	FingerprintHash string    `db:"fingerprint_hash" json:"fingerprint_hash"`
	LastSeenAt      time.Time `db:"last_seen_at" json:"last_seen_at"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
