package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/securemath/securemath-api/internal/models"
	appErrors "github.com/securemath/securemath-api/pkg/errors"
)

type mockCourseReader struct {
	courses  map[string]*models.Course
	enrolled map[string][]models.Course
	chapters map[string][]models.Chapter
}

func (m *mockCourseReader) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseReader) ListEnrolledByStudent(ctx context.Context, studentID string) ([]models.Course, error) {
	return m.enrolled[studentID], nil
}

func (m *mockCourseReader) ListChapters(ctx context.Context, courseID string) ([]models.Chapter, error) {
	return m.chapters[courseID], nil
}

type mockLessonLister struct {
	byChapter map[string][]models.Lesson
}

func (m *mockLessonLister) ListByChapter(ctx context.Context, chapterID string) ([]models.Lesson, error) {
	return m.byChapter[chapterID], nil
}

func courseFixture() *CourseService {
	courses := &mockCourseReader{
		courses: map[string]*models.Course{
			"course1": {ID: "course1", Title: "Algebra I", Description: "Linear equations"},
		},
		enrolled: map[string][]models.Course{
			"stu1": {
				{ID: "course1", Title: "Algebra I"},
				{ID: "course2", Title: "Geometry"},
			},
		},
		chapters: map[string][]models.Chapter{
			"course1": {
				{ID: "ch1", CourseID: "course1", Title: "Equations", Position: 1},
				{ID: "ch2", CourseID: "course1", Title: "Inequalities", Position: 2},
			},
		},
	}
	lessons := &mockLessonLister{
		byChapter: map[string][]models.Lesson{
			"ch1": {
				{ID: "les1", Title: "Solving for x", Position: 1, VideoAssetID: ptrString("asset1")},
				{ID: "les2", Title: "Word problems", Position: 2},
			},
		},
	}
	enrollments := &mockEnrollmentChecker{active: map[string]bool{"stu1:course1": true}}
	return NewCourseService(courses, lessons, enrollments, zap.NewNop())
}

func TestCourseListEnrolled(t *testing.T) {
	svc := courseFixture()

	courses, err := svc.ListEnrolled(context.Background(), "stu1")
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "Algebra I", courses[0].Title)

	none, err := svc.ListEnrolled(context.Background(), "stu2")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCourseDetailTree(t *testing.T) {
	svc := courseFixture()

	detail, err := svc.Detail(context.Background(), "stu1", "course1")
	require.NoError(t, err)

	assert.Equal(t, "course1", detail.ID)
	require.Len(t, detail.Chapters, 2)
	assert.Equal(t, "Equations", detail.Chapters[0].Title)

	lessons := detail.Chapters[0].Lessons
	require.Len(t, lessons, 2)
	assert.True(t, lessons[0].HasVideo)
	assert.False(t, lessons[1].HasVideo)
	assert.Empty(t, detail.Chapters[1].Lessons)
}

func TestCourseDetailRequiresEnrollment(t *testing.T) {
	svc := courseFixture()

	_, err := svc.Detail(context.Background(), "stu2", "course1")
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrEnrollmentRequired.Code, appErr.Code)
}

func TestCourseDetailUnknownCourse(t *testing.T) {
	svc := courseFixture()

	// Enrollment rows can outlive their course; the lookup still 404s.
	enrollments := &mockEnrollmentChecker{active: map[string]bool{"stu1:ghost": true}}
	svc.enrollments = enrollments

	_, err := svc.Detail(context.Background(), "stu1", "ghost")
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
