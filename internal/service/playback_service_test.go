package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/securemath/securemath-api/internal/models"
	appErrors "github.com/securemath/securemath-api/pkg/errors"
	"github.com/securemath/securemath-api/pkg/storage"
)

type mockLessonReader struct {
	lessons map[string]*models.Lesson
}

func (m *mockLessonReader) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	if l, ok := m.lessons[id]; ok {
		return l, nil
	}
	return nil, sql.ErrNoRows
}

type mockChapterReader struct {
	chapters map[string]*models.Chapter
}

func (m *mockChapterReader) FindChapterByID(ctx context.Context, id string) (*models.Chapter, error) {
	if c, ok := m.chapters[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

type mockEnrollmentChecker struct {
	active map[string]bool
}

func (m *mockEnrollmentChecker) ExistsActive(ctx context.Context, studentID, courseID string) (bool, error) {
	return m.active[studentID+":"+courseID], nil
}

type mockAssetReader struct {
	assets map[string]*models.VideoAsset
}

func (m *mockAssetReader) FindByID(ctx context.Context, id string) (*models.VideoAsset, error) {
	if a, ok := m.assets[id]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

type mockGrantStore struct {
	created []models.PlaybackAccessGrant
}

func (m *mockGrantStore) Create(ctx context.Context, grant *models.PlaybackAccessGrant) error {
	m.created = append(m.created, *grant)
	return nil
}

func (m *mockGrantStore) ListByStudentAndLesson(ctx context.Context, studentID, lessonID string) ([]models.PlaybackAccessGrant, error) {
	var grants []models.PlaybackAccessGrant
	for _, g := range m.created {
		if g.StudentID == studentID && g.LessonID == lessonID {
			grants = append(grants, g)
		}
	}
	return grants, nil
}

func (m *mockGrantStore) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var kept []models.PlaybackAccessGrant
	var removed int64
	for _, g := range m.created {
		if g.ExpiresAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, g)
	}
	m.created = kept
	return removed, nil
}

func ptrString(v string) *string {
	return &v
}

type playbackFixture struct {
	svc         *PlaybackService
	enrollments *mockEnrollmentChecker
	grants      *mockGrantStore
	assets      *mockAssetReader
}

func newPlaybackFixture(t *testing.T) *playbackFixture {
	t.Helper()
	lessons := &mockLessonReader{lessons: map[string]*models.Lesson{
		"les1": {ID: "les1", ChapterID: ptrString("ch1"), VideoAssetID: ptrString("asset1")},
		"les2": {ID: "les2", ChapterID: ptrString("ch1")},
		"les3": {ID: "les3", VideoAssetID: ptrString("asset1")},
	}}
	chapters := &mockChapterReader{chapters: map[string]*models.Chapter{
		"ch1": {ID: "ch1", CourseID: "course1"},
	}}
	enrollments := &mockEnrollmentChecker{active: map[string]bool{"stu1:course1": true}}
	assets := &mockAssetReader{assets: map[string]*models.VideoAsset{
		"asset1": {ID: "asset1", TranscodeStatus: models.TranscodeReady, HLSManifestKey: ptrString("hls/asset1/playlist.m3u8")},
	}}
	grants := &mockGrantStore{}

	signer := storage.NewSignedURLSigner("test-secret", 2*time.Hour)
	signedURLs := NewSignedURLService(signer, "http://cdn.test", zap.NewNop())
	watermarks := NewWatermarkService(15 * time.Second)

	svc := NewPlaybackService(lessons, chapters, enrollments, assets, grants,
		signedURLs, watermarks, nil, 2*time.Hour, zap.NewNop())
	return &playbackFixture{svc: svc, enrollments: enrollments, grants: grants, assets: assets}
}

func TestRequestGrantHappyPath(t *testing.T) {
	f := newPlaybackFixture(t)

	grant, err := f.svc.RequestGrant(context.Background(), "stu1", "les1", "dev-hash-1")
	require.NoError(t, err)

	assert.Equal(t, "course1", grant.CourseID)
	assert.True(t, strings.HasPrefix(grant.ManifestURL, "http://cdn.test/hls/asset1/playlist.m3u8?token="))
	assert.Len(t, grant.WatermarkSeed, 16)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), grant.ExpiresAt, 5*time.Second)
	require.Len(t, f.grants.created, 1)
	assert.Equal(t, "stu1", f.grants.created[0].StudentID)
	require.NotNil(t, f.grants.created[0].DeviceID)
	assert.Equal(t, "dev-hash-1", *f.grants.created[0].DeviceID)
}

func TestRequestGrantWithoutDeviceHash(t *testing.T) {
	f := newPlaybackFixture(t)

	_, err := f.svc.RequestGrant(context.Background(), "stu1", "les1", "")
	require.NoError(t, err)

	require.Len(t, f.grants.created, 1)
	assert.Nil(t, f.grants.created[0].DeviceID)
}

func TestRequestGrantEachCallPersistsFreshGrant(t *testing.T) {
	f := newPlaybackFixture(t)

	_, err := f.svc.RequestGrant(context.Background(), "stu1", "les1", "dev-hash-1")
	require.NoError(t, err)
	_, err = f.svc.RequestGrant(context.Background(), "stu1", "les1", "dev-hash-1")
	require.NoError(t, err)

	require.Len(t, f.grants.created, 2)
	assert.NotEqual(t, f.grants.created[0].SignedURLHash, f.grants.created[1].SignedURLHash)
}

func TestRequestGrantNotEnrolled(t *testing.T) {
	f := newPlaybackFixture(t)

	_, err := f.svc.RequestGrant(context.Background(), "stranger", "les1", "dev-hash-1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrEnrollmentRequired.Code, appErr.Code)
	assert.Empty(t, f.grants.created)
}

func TestRequestGrantEnrollmentRevokedBetweenRequests(t *testing.T) {
	f := newPlaybackFixture(t)

	_, err := f.svc.RequestGrant(context.Background(), "stu1", "les1", "dev-hash-1")
	require.NoError(t, err)

	// Removal takes effect on the very next request.
	f.enrollments.active["stu1:course1"] = false
	_, err = f.svc.RequestGrant(context.Background(), "stu1", "les1", "dev-hash-1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrEnrollmentRequired.Code, appErr.Code)
}

func TestRequestGrantLessonNotFound(t *testing.T) {
	f := newPlaybackFixture(t)

	_, err := f.svc.RequestGrant(context.Background(), "stu1", "ghost", "dev-hash-1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestRequestGrantLessonWithoutVideo(t *testing.T) {
	f := newPlaybackFixture(t)

	_, err := f.svc.RequestGrant(context.Background(), "stu1", "les2", "dev-hash-1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrIllegalState.Code, appErr.Code)
}

func TestRequestGrantLessonWithoutChapter(t *testing.T) {
	f := newPlaybackFixture(t)

	_, err := f.svc.RequestGrant(context.Background(), "stu1", "les3", "dev-hash-1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrIllegalState.Code, appErr.Code)
}

func TestRequestGrantAssetNotReady(t *testing.T) {
	f := newPlaybackFixture(t)
	f.assets.assets["asset1"].TranscodeStatus = models.TranscodeProcessing

	_, err := f.svc.RequestGrant(context.Background(), "stu1", "les1", "dev-hash-1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrIllegalState.Code, appErr.Code)
	assert.Empty(t, f.grants.created)
}

func TestSweepExpiredGrants(t *testing.T) {
	f := newPlaybackFixture(t)
	now := time.Now().UTC()
	f.grants.created = []models.PlaybackAccessGrant{
		{ID: "old", ExpiresAt: now.Add(-48 * time.Hour)},
		{ID: "fresh", ExpiresAt: now.Add(time.Hour)},
	}

	removed, err := f.svc.SweepExpiredGrants(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	require.Len(t, f.grants.created, 1)
	assert.Equal(t, "fresh", f.grants.created[0].ID)
}
