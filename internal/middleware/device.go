package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/securemath/securemath-api/internal/models"
	"github.com/securemath/securemath-api/internal/service"
	"github.com/securemath/securemath-api/pkg/response"
)

// DeviceFingerprintHeader carries the client device fingerprint.
const DeviceFingerprintHeader = "X-Device-Fingerprint"

// ContextDeviceKey is the gin context key storing the admitted device's
// fingerprint hash for downstream handlers.
const ContextDeviceKey = "deviceFingerprintHash"

// DeviceGate admits or rejects the presenting device before any content or
// assessment route runs. Runs after JWT; only students are gated. The
// fingerprint comes from the X-Device-Fingerprint header, with a query
// fallback for players that cannot set headers.
func DeviceGate(deviceService *service.DeviceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			c.Next()
			return
		}
		claims := claimsValue.(*models.JWTClaims)
		if !claims.IsStudent() {
			c.Next()
			return
		}

		fingerprint := c.GetHeader(DeviceFingerprintHeader)
		if fingerprint == "" {
			fingerprint = c.Query("deviceFingerprint")
		}

		if err := deviceService.Admit(c.Request.Context(), claims.UserID, fingerprint); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(ContextDeviceKey, service.HashFingerprint(fingerprint))
		c.Next()
	}
}
