package service

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/securemath/securemath-api/pkg/errors"
	"github.com/securemath/securemath-api/pkg/storage"
)

// SignedURLService is the expiry policy layer over the storage signer. It owns
// how long a retrieval credential lives and for which asset, never the
// signature algorithm itself.
type SignedURLService struct {
	signer     *storage.SignedURLSigner
	cdnBaseURL string
	logger     *zap.Logger
}

// NewSignedURLService constructs the issuer.
func NewSignedURLService(signer *storage.SignedURLSigner, cdnBaseURL string, logger *zap.Logger) *SignedURLService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SignedURLService{signer: signer, cdnBaseURL: strings.TrimRight(cdnBaseURL, "/"), logger: logger}
}

// GenerateSignedURL returns the time-limited manifest URL for a ready asset.
func (s *SignedURLService) GenerateSignedURL(assetID, studentID string) (string, error) {
	manifestKey := storage.HLSManifestKey(assetID)
	token, _, err := s.signer.Generate(assetID, manifestKey)
	if err != nil {
		return "", fmt.Errorf("sign manifest url: %w", err)
	}
	s.logger.Debug("issued signed manifest url",
		zap.String("asset_id", assetID),
		zap.String("student_id", studentID))
	return fmt.Sprintf("%s/%s?token=%s", s.cdnBaseURL, manifestKey, token), nil
}

// ResolveObjectKey validates a retrieval token and returns the object key it
// grants access to. Tampered, malformed and expired tokens are rejected alike;
// the caller never learns which.
func (s *SignedURLService) ResolveObjectKey(token string) (string, error) {
	_, objectKey, _, err := s.signer.Parse(token, false)
	if err != nil {
		s.logger.Debug("rejected playback token", zap.Error(err))
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired playback token")
	}
	return objectKey, nil
}

// CalculateExpiryTime returns now + window. Successive calls never go
// backwards in expiry for non-decreasing wall-clock time.
func (s *SignedURLService) CalculateExpiryTime() time.Time {
	return time.Now().Add(s.signer.TTL())
}

// IsExpired reports whether the timestamp has passed, with no grace period.
func (s *SignedURLService) IsExpired(expiresAt time.Time) bool {
	return time.Now().After(expiresAt)
}
