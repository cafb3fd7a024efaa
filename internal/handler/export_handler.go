package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/securemath/securemath-api/internal/service"
	"github.com/securemath/securemath-api/pkg/response"
)

// ExportHandler exposes administrative data exports.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs handler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// QuizAttempts godoc
// @Summary Export all attempts of a quiz as CSV
// @Tags Exports
// @Produce text/csv
// @Param id path string true "Quiz ID"
// @Success 200 {file} binary
// @Router /admin/quizzes/{id}/attempts/export [get]
func (h *ExportHandler) QuizAttempts(c *gin.Context) {
	payload, filename, err := h.exports.QuizAttemptsCSV(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, filename, "text/csv", payload)
}
