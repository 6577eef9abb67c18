package s3archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LukasBrandt/PaperFig/internal/pkg/env"
)

func withEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	prev := env.Env
	env.Env = vars
	t.Cleanup(func() { env.Env = prev })
}

func TestLoadConfigDisabledByDefault(t *testing.T) {
	withEnv(t, map[string]string{})

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.IsEnabled())
}

func TestLoadConfigEnabledRequiresCredentials(t *testing.T) {
	withEnv(t, map[string]string{
		"S3_ARCHIVE_ENABLED": "true",
	})

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3_ACCESS_KEY_ID")
}

func TestLoadConfigEnabledComplete(t *testing.T) {
	withEnv(t, map[string]string{
		"S3_ARCHIVE_ENABLED":   "true",
		"S3_ACCESS_KEY_ID":     "key",
		"S3_SECRET_ACCESS_KEY": "secret",
		"S3_BUCKET_NAME":       "paperfig-figures",
	})

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsEnabled())
	assert.Equal(t, "paperfig-figures", cfg.GetBucketName())
}

func TestGetObjectKey(t *testing.T) {
	cfg := &Config{}
	key := cfg.GetObjectKey("abc-123", 2026, 8)
	assert.Equal(t, "figures/2026/08/abc-123.png", key)
}
