package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/securemath/securemath-api/internal/service"
	appErrors "github.com/securemath/securemath-api/pkg/errors"
	"github.com/securemath/securemath-api/pkg/response"
	"github.com/securemath/securemath-api/pkg/storage"
)

// ContentHandler serves HLS manifests as the signed-URL origin. The token is
// the sole credential on this route; no JWT is involved, matching how the
// player's CDN requests arrive.
type ContentHandler struct {
	signedURLs *service.SignedURLService
	store      *storage.LocalStorage
}

// NewContentHandler constructs handler.
func NewContentHandler(signedURLs *service.SignedURLService, store *storage.LocalStorage) *ContentHandler {
	return &ContentHandler{signedURLs: signedURLs, store: store}
}

// Manifest godoc
// @Summary Retrieve an HLS manifest with a signed playback token
// @Tags Content
// @Produce application/vnd.apple.mpegurl
// @Param key path string true "Object key"
// @Param token query string true "Signed playback token"
// @Success 200 {file} binary
// @Router /content/{key} [get]
func (h *ContentHandler) Manifest(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "playback token required"))
		return
	}

	objectKey, err := h.signedURLs.ResolveObjectKey(token)
	if err != nil {
		response.Error(c, err)
		return
	}

	// The token names exactly one object; a request for any other path with
	// that token is a forgery attempt.
	if requested := strings.TrimPrefix(c.Param("key"), "/"); requested != objectKey {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "access denied"))
		return
	}

	if !h.store.Exists(objectKey) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "content not found"))
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Header("Content-Type", "application/vnd.apple.mpegurl")
	c.File(h.store.Path(objectKey))
}
