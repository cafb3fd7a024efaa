package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/securemath/securemath-api/internal/models"
)

// CourseRepository provides read access to the course catalogue.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID returns a course by its ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, title, description, created_at, updated_at FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListEnrolledByStudent returns the courses the student actively holds.
func (r *CourseRepository) ListEnrolledByStudent(ctx context.Context, studentID string) ([]models.Course, error) {
	const query = `SELECT c.id, c.title, c.description, c.created_at, c.updated_at
        FROM courses c
        JOIN enrollments e ON e.course_id = c.id
        WHERE e.student_id = $1 AND e.status = $2
        ORDER BY e.enrolled_at ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, studentID, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("list enrolled courses: %w", err)
	}
	return courses, nil
}

// FindChapterByID returns a chapter by its ID.
func (r *CourseRepository) FindChapterByID(ctx context.Context, id string) (*models.Chapter, error) {
	const query = `SELECT id, course_id, title, position FROM chapters WHERE id = $1`
	var chapter models.Chapter
	if err := r.db.GetContext(ctx, &chapter, query, id); err != nil {
		return nil, err
	}
	return &chapter, nil
}

// ListChapters returns a course's chapters in position order.
func (r *CourseRepository) ListChapters(ctx context.Context, courseID string) ([]models.Chapter, error) {
	const query = `SELECT id, course_id, title, position FROM chapters WHERE course_id = $1 ORDER BY position ASC`
	var chapters []models.Chapter
	if err := r.db.SelectContext(ctx, &chapters, query, courseID); err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	return chapters, nil
}
