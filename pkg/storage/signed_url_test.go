package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("asset-1", "hls/asset-1/playlist.m3u8")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	assetID, key, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "asset-1", assetID)
	require.Equal(t, "hls/asset-1/playlist.m3u8", key)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("asset-1", "hls/asset-1/playlist.m3u8")
	require.NoError(t, err)

	parts := []byte(token)
	parts[0] ^= 0x01
	_, _, _, err = signer.Parse(string(parts), false)
	require.Error(t, err)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Millisecond*10)
	token, _, err := signer.Generate("asset-1", "hls/asset-1/playlist.m3u8")
	require.NoError(t, err)
	time.Sleep(time.Millisecond * 20)

	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	assetID, key, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "asset-1", assetID)
	require.Equal(t, "hls/asset-1/playlist.m3u8", key)
}
