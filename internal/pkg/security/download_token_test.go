package security

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadTokenRoundTrip(t *testing.T) {
	token, err := GenerateDownloadToken("fig-123", "user-abc", time.Minute, "secret")
	require.NoError(t, err)

	claims, err := VerifyDownloadToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "fig-123", claims.FigureUUID)
	assert.Equal(t, "user-abc", claims.UserID)
}

func TestDownloadTokenRequiresSecret(t *testing.T) {
	_, err := GenerateDownloadToken("fig-123", "user-abc", time.Minute, "")
	assert.Error(t, err)

	_, err = VerifyDownloadToken("a.b", "")
	assert.Error(t, err)
}

func TestDownloadTokenWrongSecret(t *testing.T) {
	token, err := GenerateDownloadToken("fig-123", "user-abc", time.Minute, "secret")
	require.NoError(t, err)

	_, err = VerifyDownloadToken(token, "other-secret")
	assert.ErrorContains(t, err, "invalid token signature")
}

func TestDownloadTokenExpired(t *testing.T) {
	token, err := GenerateDownloadToken("fig-123", "user-abc", -time.Minute, "secret")
	require.NoError(t, err)

	_, err = VerifyDownloadToken(token, "secret")
	assert.ErrorContains(t, err, "token expired")
}

func TestDownloadTokenTampered(t *testing.T) {
	token, err := GenerateDownloadToken("fig-123", "user-abc", time.Minute, "secret")
	require.NoError(t, err)

	parts := strings.SplitN(token, ".", 2)
	tampered := parts[0] + "x." + parts[1]
	_, err = VerifyDownloadToken(tampered, "secret")
	assert.Error(t, err)

	_, err = VerifyDownloadToken("not-a-token", "secret")
	assert.ErrorContains(t, err, "invalid token format")
}
