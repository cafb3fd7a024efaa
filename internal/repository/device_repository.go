package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/securemath/securemath-api/internal/models"
)

// DeviceRepository handles persistence of registered devices.
type DeviceRepository struct {
	db *sqlx.DB
}

// NewDeviceRepository constructs the repository.
func NewDeviceRepository(db *sqlx.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// Exists checks whether the fingerprint is already registered for the student.
func (r *DeviceRepository) Exists(ctx context.Context, studentID, fingerprintHash string) (bool, error) {
	const query = `SELECT 1 FROM registered_devices WHERE student_id = $1 AND fingerprint_hash = $2 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, studentID, fingerprintHash); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check registered device: %w", err)
	}
	return true, nil
}

// Touch refreshes last_seen_at for a known device.
func (r *DeviceRepository) Touch(ctx context.Context, studentID, fingerprintHash string, seenAt time.Time) error {
	const query = `UPDATE registered_devices SET last_seen_at = $3 WHERE student_id = $1 AND fingerprint_hash = $2`
	if _, err := r.db.ExecContext(ctx, query, studentID, fingerprintHash, seenAt); err != nil {
		return fmt.Errorf("touch registered device: %w", err)
	}
	return nil
}

// RegisterIfUnderLimit inserts a new device only while the student holds fewer
// than limit devices. The count and insert run inside one transaction holding a
// per-student advisory lock, so two concurrent first-time registrations cannot
// both slip under the cap. Returns true when the device was admitted (inserted
// or already present), false when the cap is reached.
func (r *DeviceRepository) RegisterIfUnderLimit(ctx context.Context, device *models.RegisteredDevice, limit int) (bool, error) {
	if device.ID == "" {
		device.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if device.LastSeenAt.IsZero() {
		device.LastSeenAt = now
	}
	if device.CreatedAt.IsZero() {
		device.CreatedAt = now
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin device registration: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, device.StudentID); err != nil {
		return false, fmt.Errorf("acquire device registration lock: %w", err)
	}

	var one int
	err = tx.GetContext(ctx, &one,
		`SELECT 1 FROM registered_devices WHERE student_id = $1 AND fingerprint_hash = $2 LIMIT 1`,
		device.StudentID, device.FingerprintHash)
	if err == nil {
		// Lost a race against an identical fingerprint; the device is registered.
		return true, tx.Commit()
	}
	if err != sql.ErrNoRows {
		return false, fmt.Errorf("recheck registered device: %w", err)
	}

	var count int
	if err := tx.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM registered_devices WHERE student_id = $1`, device.StudentID); err != nil {
		return false, fmt.Errorf("count registered devices: %w", err)
	}
	if count >= limit {
		return false, tx.Commit()
	}

	const insert = `INSERT INTO registered_devices (id, student_id, fingerprint_hash, last_seen_at, created_at)
        VALUES (:id, :student_id, :fingerprint_hash, :last_seen_at, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insert, device); err != nil {
		return false, fmt.Errorf("register device: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit device registration: %w", err)
	}
	return true, nil
}

// ListByStudent returns the student's registered devices, oldest first.
func (r *DeviceRepository) ListByStudent(ctx context.Context, studentID string) ([]models.RegisteredDevice, error) {
	const query = `SELECT id, student_id, fingerprint_hash, last_seen_at, created_at
        FROM registered_devices WHERE student_id = $1 ORDER BY created_at ASC`
	var devices []models.RegisteredDevice
	if err := r.db.SelectContext(ctx, &devices, query, studentID); err != nil {
		return nil, fmt.Errorf("list registered devices: %w", err)
	}
	return devices, nil
}

// Delete removes a device by id. Administrative action only.
func (r *DeviceRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM registered_devices WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete registered device: %w", err)
	}
	return nil
}
