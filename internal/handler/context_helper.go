package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/securemath/securemath-api/internal/middleware"
	"github.com/securemath/securemath-api/internal/models"
)

func deviceHashFromContext(c *gin.Context) string {
	value, exists := c.Get(middleware.ContextDeviceKey)
	if !exists {
		return ""
	}
	hash, _ := value.(string)
	return hash
}

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
