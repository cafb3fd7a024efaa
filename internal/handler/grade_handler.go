package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/securemath/securemath-api/internal/service"
	appErrors "github.com/securemath/securemath-api/pkg/errors"
	"github.com/securemath/securemath-api/pkg/response"
)

// GradeHandler exposes grade history endpoints for students.
type GradeHandler struct {
	quizzes *service.QuizService
	exports *service.ExportService
}

// NewGradeHandler constructs handler.
func NewGradeHandler(quizzes *service.QuizService, exports *service.ExportService) *GradeHandler {
	return &GradeHandler{quizzes: quizzes, exports: exports}
}

// List godoc
// @Summary List the student's graded attempts
// @Tags Grades
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /student/grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	grades, err := h.quizzes.GradesForStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// Report godoc
// @Summary Download the student's grade report as PDF
// @Tags Grades
// @Produce application/pdf
// @Success 200 {file} binary
// @Router /student/grades/report [get]
func (h *GradeHandler) Report(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	payload, err := h.exports.StudentGradeReport(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, "grade_report.pdf", "application/pdf", payload)
}
