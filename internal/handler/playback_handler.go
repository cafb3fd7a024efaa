package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/securemath/securemath-api/internal/service"
	appErrors "github.com/securemath/securemath-api/pkg/errors"
	"github.com/securemath/securemath-api/pkg/response"
)

// PlaybackHandler exposes the playback grant endpoint.
type PlaybackHandler struct {
	playback *service.PlaybackService
}

// NewPlaybackHandler constructs handler.
func NewPlaybackHandler(playback *service.PlaybackService) *PlaybackHandler {
	return &PlaybackHandler{playback: playback}
}

// Grant godoc
// @Summary Request a playback grant for a lesson
// @Tags Playback
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Router /student/lessons/{id}/playback [post]
func (h *PlaybackHandler) Grant(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	grant, err := h.playback.RequestGrant(c.Request.Context(), claims.UserID, c.Param("id"), deviceHashFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grant, nil)
}

// Audit godoc
// @Summary Grant audit trail for a student and lesson
// @Tags Playback
// @Produce json
// @Param studentId query string true "Student ID"
// @Param lessonId query string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Router /admin/grants [get]
func (h *PlaybackHandler) Audit(c *gin.Context) {
	studentID := c.Query("studentId")
	lessonID := c.Query("lessonId")
	if studentID == "" || lessonID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "studentId and lessonId required"))
		return
	}
	grants, err := h.playback.GrantHistory(c.Request.Context(), studentID, lessonID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grants, nil)
}
