package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/securemath/securemath-api/internal/service"
	appErrors "github.com/securemath/securemath-api/pkg/errors"
	"github.com/securemath/securemath-api/pkg/response"
)

// CourseHandler exposes course browsing for enrolled students.
type CourseHandler struct {
	courses *service.CourseService
}

// NewCourseHandler constructs handler.
func NewCourseHandler(courses *service.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// List godoc
// @Summary List enrolled courses
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /student/courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	courses, err := h.courses.ListEnrolled(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Detail godoc
// @Summary Course outline with chapters and lessons
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /student/courses/{id} [get]
func (h *CourseHandler) Detail(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	detail, err := h.courses.Detail(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}
