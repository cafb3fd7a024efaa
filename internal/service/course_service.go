package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/securemath/securemath-api/internal/models"
	appErrors "github.com/securemath/securemath-api/pkg/errors"
)

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ListEnrolledByStudent(ctx context.Context, studentID string) ([]models.Course, error)
	ListChapters(ctx context.Context, courseID string) ([]models.Chapter, error)
}

type lessonLister interface {
	ListByChapter(ctx context.Context, chapterID string) ([]models.Lesson, error)
}

// CourseService exposes the enrolled course catalogue to students.
type CourseService struct {
	courses     courseReader
	lessons     lessonLister
	enrollments enrollmentChecker
	logger      *zap.Logger
}

// NewCourseService constructs CourseService.
func NewCourseService(courses courseReader, lessons lessonLister, enrollments enrollmentChecker, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{courses: courses, lessons: lessons, enrollments: enrollments, logger: logger}
}

// ListEnrolled returns the student's active courses.
func (s *CourseService) ListEnrolled(ctx context.Context, studentID string) ([]models.Course, error) {
	courses, err := s.courses.ListEnrolledByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Detail returns the chapter/lesson tree for a course the student holds.
func (s *CourseService) Detail(ctx context.Context, studentID, courseID string) (*models.CourseDetail, error) {
	enrolled, err := s.enrollments.ExistsActive(ctx, studentID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if !enrolled {
		return nil, appErrors.ErrEnrollmentRequired
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	chapters, err := s.courses.ListChapters(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list chapters")
	}

	detail := &models.CourseDetail{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Chapters:    make([]models.ChapterDetail, 0, len(chapters)),
	}
	for _, chapter := range chapters {
		lessons, err := s.lessons.ListByChapter(ctx, chapter.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
		}
		summaries := make([]models.LessonSummary, 0, len(lessons))
		for _, lesson := range lessons {
			summaries = append(summaries, models.LessonSummary{
				ID:       lesson.ID,
				Title:    lesson.Title,
				Position: lesson.Position,
				HasVideo: lesson.VideoAssetID != nil,
			})
		}
		detail.Chapters = append(detail.Chapters, models.ChapterDetail{
			ID:       chapter.ID,
			Title:    chapter.Title,
			Position: chapter.Position,
			Lessons:  summaries,
		})
	}

	return detail, nil
}
