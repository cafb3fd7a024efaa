package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/securemath/securemath-api/internal/service"
	appErrors "github.com/securemath/securemath-api/pkg/errors"
	"github.com/securemath/securemath-api/pkg/response"
)

// DeviceHandler exposes device registry endpoints.
type DeviceHandler struct {
	devices *service.DeviceService
}

// NewDeviceHandler constructs handler.
func NewDeviceHandler(devices *service.DeviceService) *DeviceHandler {
	return &DeviceHandler{devices: devices}
}

// List godoc
// @Summary List the student's registered devices
// @Tags Devices
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /student/devices [get]
func (h *DeviceHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	devices, err := h.devices.ListForStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"devices": devices, "limit": h.devices.Limit()}, nil)
}

// Revoke godoc
// @Summary Remove a registered device
// @Tags Devices
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} response.Envelope
// @Router /admin/devices/{id} [delete]
func (h *DeviceHandler) Revoke(c *gin.Context) {
	if err := h.devices.Revoke(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "revoked"}, nil)
}
