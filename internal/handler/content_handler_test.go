package handler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/securemath/securemath-api/internal/service"
	"github.com/securemath/securemath-api/pkg/storage"
)

func contentFixture(t *testing.T) (*gin.Engine, *storage.SignedURLSigner) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	manifestKey := storage.HLSManifestKey("asset1")
	manifestPath := store.Path(manifestKey)
	require.NoError(t, os.MkdirAll(filepath.Dir(manifestPath), 0o755))
	require.NoError(t, os.WriteFile(manifestPath, []byte("#EXTM3U\n"), 0o644))

	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	svc := service.NewSignedURLService(signer, "http://cdn.test", zap.NewNop())

	r := gin.New()
	r.GET("/content/*key", NewContentHandler(svc, store).Manifest)
	return r, signer
}

func TestContentManifestWithValidToken(t *testing.T) {
	r, signer := contentFixture(t)

	token, _, err := signer.Generate("asset1", storage.HLSManifestKey("asset1"))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/content/hls/asset1/playlist.m3u8?token="+token, nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "#EXTM3U\n", w.Body.String())
	assert.Equal(t, "application/vnd.apple.mpegurl", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestContentManifestMissingToken(t *testing.T) {
	r, _ := contentFixture(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/content/hls/asset1/playlist.m3u8", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestContentManifestTamperedToken(t *testing.T) {
	r, _ := contentFixture(t)

	forged := storage.NewSignedURLSigner("other-secret", time.Hour)
	token, _, err := forged.Generate("asset1", storage.HLSManifestKey("asset1"))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/content/hls/asset1/playlist.m3u8?token="+token, nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestContentManifestPathMismatch(t *testing.T) {
	r, signer := contentFixture(t)

	// A token for asset1 must not open any other object.
	token, _, err := signer.Generate("asset1", storage.HLSManifestKey("asset1"))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/content/hls/asset2/playlist.m3u8?token="+token, nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
