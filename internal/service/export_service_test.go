package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/securemath/securemath-api/internal/models"
)

type mockGradeExportRepo struct {
	grades map[string][]models.GradeRecord
	rows   map[string][]models.AttemptExportRow
}

func (m *mockGradeExportRepo) ListGradesByStudent(ctx context.Context, studentID string) ([]models.GradeRecord, error) {
	return m.grades[studentID], nil
}

func (m *mockGradeExportRepo) ListExportRowsByQuiz(ctx context.Context, quizID string) ([]models.AttemptExportRow, error) {
	return m.rows[quizID], nil
}

type mockQuizTitleReader struct {
	quizzes map[string]*models.Quiz
}

func (m *mockQuizTitleReader) FindByID(ctx context.Context, id string) (*models.Quiz, error) {
	if q, ok := m.quizzes[id]; ok {
		return q, nil
	}
	return nil, sql.ErrNoRows
}

func TestStudentGradeReportRendersPDF(t *testing.T) {
	repo := &mockGradeExportRepo{grades: map[string][]models.GradeRecord{
		"stu1": {
			{QuizID: "quiz1", QuizTitle: "Algebra Basics", Score: 8, MaxScore: 10, SubmittedAt: time.Now()},
		},
	}}
	svc := NewExportService(repo, &mockQuizTitleReader{}, nil, nil, zap.NewNop())

	payload, err := svc.StudentGradeReport(context.Background(), "stu1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestQuizAttemptsCSV(t *testing.T) {
	repo := &mockGradeExportRepo{rows: map[string][]models.AttemptExportRow{
		"quiz1": {
			{AttemptID: "att1", StudentID: "stu1", Score: 8, MaxScore: 10, SubmittedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)},
			{AttemptID: "att2", StudentID: "stu2", Score: 4.5, MaxScore: 10, SubmittedAt: time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC)},
		},
	}}
	quizzes := &mockQuizTitleReader{quizzes: map[string]*models.Quiz{
		"quiz1": {ID: "quiz1", Title: "Algebra Basics"},
	}}
	svc := NewExportService(repo, quizzes, nil, nil, zap.NewNop())

	payload, filename, err := svc.QuizAttemptsCSV(context.Background(), "quiz1")
	require.NoError(t, err)
	assert.Contains(t, filename, "quiz_quiz1_attempts_")
	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Attempt ID,Student ID,Score,Max Score,Submitted At", lines[0])
	assert.Contains(t, lines[1], "att1,stu1,8.00,10.00")
	assert.Contains(t, lines[2], "att2,stu2,4.50,10.00")
}

func TestQuizAttemptsCSVUnknownQuiz(t *testing.T) {
	svc := NewExportService(&mockGradeExportRepo{}, &mockQuizTitleReader{}, nil, nil, zap.NewNop())

	_, _, err := svc.QuizAttemptsCSV(context.Background(), "ghost")
	assert.Error(t, err)
}
