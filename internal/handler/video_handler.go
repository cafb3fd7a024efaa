package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/securemath/securemath-api/internal/service"
	appErrors "github.com/securemath/securemath-api/pkg/errors"
	"github.com/securemath/securemath-api/pkg/response"
)

// VideoHandler exposes administrative video intake endpoints.
type VideoHandler struct {
	videos *service.VideoService
}

// NewVideoHandler constructs handler.
func NewVideoHandler(videos *service.VideoService) *VideoHandler {
	return &VideoHandler{videos: videos}
}

// Upload godoc
// @Summary Upload a raw source video
// @Tags Videos
// @Accept mpfd
// @Produce json
// @Param file formData file true "Source video"
// @Success 202 {object} response.Envelope
// @Router /admin/videos [post]
func (h *VideoHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file field required"))
		return
	}
	src, err := file.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read upload"))
		return
	}
	defer src.Close()

	asset, err := h.videos.Upload(c.Request.Context(), src)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, asset, nil)
}

// Status godoc
// @Summary Transcode status of a video asset
// @Tags Videos
// @Produce json
// @Param id path string true "Asset ID"
// @Success 200 {object} response.Envelope
// @Router /admin/videos/{id} [get]
func (h *VideoHandler) Status(c *gin.Context) {
	asset, err := h.videos.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, asset, nil)
}

// Requeue godoc
// @Summary Requeue a failed transcode
// @Tags Videos
// @Produce json
// @Param id path string true "Asset ID"
// @Success 202 {object} response.Envelope
// @Router /admin/videos/{id}/requeue [post]
func (h *VideoHandler) Requeue(c *gin.Context) {
	asset, err := h.videos.Requeue(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, asset, nil)
}
