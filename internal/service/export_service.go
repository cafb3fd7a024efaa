package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/securemath/securemath-api/internal/models"
	appErrors "github.com/securemath/securemath-api/pkg/errors"
	"github.com/securemath/securemath-api/pkg/export"
)

type gradeExportRepository interface {
	ListGradesByStudent(ctx context.Context, studentID string) ([]models.GradeRecord, error)
	ListExportRowsByQuiz(ctx context.Context, quizID string) ([]models.AttemptExportRow, error)
}

type quizTitleReader interface {
	FindByID(ctx context.Context, id string) (*models.Quiz, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders grade data into downloadable documents.
type ExportService struct {
	attempts gradeExportRepository
	quizzes  quizTitleReader
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(attempts gradeExportRepository, quizzes quizTitleReader, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{attempts: attempts, quizzes: quizzes, csv: csv, pdf: pdf, logger: logger}
}

// StudentGradeReport renders a student's grade history as a PDF document.
func (s *ExportService) StudentGradeReport(ctx context.Context, studentID string) ([]byte, error) {
	grades, err := s.attempts.ListGradesByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}

	dataset := export.Dataset{
		Headers: []string{"Quiz", "Score", "Max Score", "Submitted At"},
		Rows:    make([]map[string]string, 0, len(grades)),
	}
	for _, g := range grades {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Quiz":         g.QuizTitle,
			"Score":        fmt.Sprintf("%.2f", g.Score),
			"Max Score":    fmt.Sprintf("%.2f", g.MaxScore),
			"Submitted At": g.SubmittedAt.Format(time.RFC3339),
		})
	}

	payload, err := s.pdf.Render(dataset, "Grade Report")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render grade report")
	}
	return payload, nil
}

// QuizAttemptsCSV renders every attempt of a quiz as CSV for admin review.
func (s *ExportService) QuizAttemptsCSV(ctx context.Context, quizID string) ([]byte, string, error) {
	quiz, err := s.quizzes.FindByID(ctx, quizID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "quiz not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load quiz")
	}

	rows, err := s.attempts.ListExportRowsByQuiz(ctx, quizID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attempts")
	}

	dataset := export.Dataset{
		Headers: []string{"Attempt ID", "Student ID", "Score", "Max Score", "Submitted At"},
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Attempt ID":   row.AttemptID,
			"Student ID":   row.StudentID,
			"Score":        fmt.Sprintf("%.2f", row.Score),
			"Max Score":    fmt.Sprintf("%.2f", row.MaxScore),
			"Submitted At": row.SubmittedAt.Format(time.RFC3339),
		})
	}

	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render attempts export")
	}
	filename := fmt.Sprintf("quiz_%s_attempts_%s.csv", quiz.ID, time.Now().UTC().Format("20060102150405"))
	return payload, filename, nil
}
