package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/securemath/securemath-api/internal/models"
	appErrors "github.com/securemath/securemath-api/pkg/errors"
)

type mockDeviceRepo struct {
	devices map[string][]models.RegisteredDevice
	touched int
}

func (m *mockDeviceRepo) Exists(ctx context.Context, studentID, fingerprintHash string) (bool, error) {
	for _, d := range m.devices[studentID] {
		if d.FingerprintHash == fingerprintHash {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockDeviceRepo) Touch(ctx context.Context, studentID, fingerprintHash string, seenAt time.Time) error {
	m.touched++
	return nil
}

func (m *mockDeviceRepo) RegisterIfUnderLimit(ctx context.Context, device *models.RegisteredDevice, limit int) (bool, error) {
	if len(m.devices[device.StudentID]) >= limit {
		return false, nil
	}
	if m.devices == nil {
		m.devices = make(map[string][]models.RegisteredDevice)
	}
	m.devices[device.StudentID] = append(m.devices[device.StudentID], *device)
	return true, nil
}

func (m *mockDeviceRepo) ListByStudent(ctx context.Context, studentID string) ([]models.RegisteredDevice, error) {
	return m.devices[studentID], nil
}

func (m *mockDeviceRepo) Delete(ctx context.Context, id string) error {
	for studentID, devices := range m.devices {
		for i, d := range devices {
			if d.ID == id {
				m.devices[studentID] = append(devices[:i], devices[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func TestDeviceAdmitMissingFingerprint(t *testing.T) {
	svc := NewDeviceService(&mockDeviceRepo{}, nil, 2, zap.NewNop())

	err := svc.Admit(context.Background(), "stu1", "")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	// The rejection must not reveal that the fingerprint was the problem.
	assert.Equal(t, "access denied", appErr.Message)
}

func TestDeviceAdmitNewDeviceUnderLimit(t *testing.T) {
	repo := &mockDeviceRepo{devices: make(map[string][]models.RegisteredDevice)}
	svc := NewDeviceService(repo, nil, 2, zap.NewNop())

	require.NoError(t, svc.Admit(context.Background(), "stu1", "laptop"))
	require.NoError(t, svc.Admit(context.Background(), "stu1", "phone"))
	assert.Len(t, repo.devices["stu1"], 2)
}

func TestDeviceAdmitKnownDeviceAtLimit(t *testing.T) {
	repo := &mockDeviceRepo{devices: map[string][]models.RegisteredDevice{
		"stu1": {
			{ID: "d1", StudentID: "stu1", FingerprintHash: HashFingerprint("laptop")},
			{ID: "d2", StudentID: "stu1", FingerprintHash: HashFingerprint("phone")},
		},
	}}
	svc := NewDeviceService(repo, nil, 2, zap.NewNop())

	// A registered device keeps working even when the cap is full.
	require.NoError(t, svc.Admit(context.Background(), "stu1", "laptop"))
	assert.Equal(t, 1, repo.touched)
}

func TestDeviceAdmitThirdDeviceRejected(t *testing.T) {
	repo := &mockDeviceRepo{devices: map[string][]models.RegisteredDevice{
		"stu1": {
			{ID: "d1", StudentID: "stu1", FingerprintHash: HashFingerprint("laptop")},
			{ID: "d2", StudentID: "stu1", FingerprintHash: HashFingerprint("phone")},
		},
	}}
	svc := NewDeviceService(repo, nil, 2, zap.NewNop())

	err := svc.Admit(context.Background(), "stu1", "tablet")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrDeviceLimitExceeded.Code, appErr.Code)
	assert.Len(t, repo.devices["stu1"], 2)
}

func TestDeviceRevokeFreesSlot(t *testing.T) {
	repo := &mockDeviceRepo{devices: map[string][]models.RegisteredDevice{
		"stu1": {
			{ID: "d1", StudentID: "stu1", FingerprintHash: HashFingerprint("laptop")},
			{ID: "d2", StudentID: "stu1", FingerprintHash: HashFingerprint("phone")},
		},
	}}
	svc := NewDeviceService(repo, nil, 2, zap.NewNop())

	require.NoError(t, svc.Revoke(context.Background(), "d1"))
	require.NoError(t, svc.Admit(context.Background(), "stu1", "tablet"))
	assert.Len(t, repo.devices["stu1"], 2)
}

func TestHashFingerprintStable(t *testing.T) {
	first := HashFingerprint("device-abc")
	second := HashFingerprint("device-abc")
	assert.Equal(t, first, second)
	assert.Len(t, first, 32)
	assert.NotEqual(t, first, HashFingerprint("device-xyz"))
}
