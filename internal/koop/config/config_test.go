package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	t.Setenv("WEB_URL", "https://tarimkoop.org.tr")
	t.Setenv("SECRET_KEY", "supersecret")
	t.Setenv("AWS_S3_USE_SSL", "true")
	t.Setenv("EDITOR_SETTLE_DELAY", "350ms")
	t.Setenv("EDITOR_LOAD_DELAY", "80")
	t.Setenv("HEARTBEAT_CRON", "")

	cfg, err := ReadConfig()
	require.NoError(t, err)

	assert.Equal(t, "tarimkoop.org.tr", cfg.WebURL.Host)
	assert.Equal(t, "supersecret", cfg.SecretKey)
	assert.True(t, cfg.AWSUseSSL)
	assert.Equal(t, 350*time.Millisecond, cfg.EditorSettleDelay)
	assert.Equal(t, 80*time.Millisecond, cfg.EditorLoadDelay)
	assert.Equal(t, defaultHeartbeatCron, cfg.HeartbeatCron)
	assert.False(t, cfg.MinioEnabled())
}

func TestReadConfigInvalidURL(t *testing.T) {
	t.Setenv("WEB_URL", "://bad")
	_, err := ReadConfig()
	assert.Error(t, err)

	t.Setenv("WEB_URL", "/haberler")
	_, err = ReadConfig()
	assert.ErrorContains(t, err, "has no host")
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "s*********t", maskValue("SecretKey", "supersecret"))
	assert.Equal(t, "**", maskValue("AWSSecretKey", "ab"))
	assert.Equal(t, "postgres://db", maskValue("DatabaseDSN", "postgres://db"))
}

func TestReadConfigInvalidValues(t *testing.T) {
	t.Setenv("CAPTCHA_DISABLED", "maybe")
	t.Setenv("EDITOR_SETTLE_DELAY", "soon")

	_, err := ReadConfig()
	assert.ErrorContains(t, err, "CAPTCHA_DISABLED")
	assert.ErrorContains(t, err, "EDITOR_SETTLE_DELAY")
}
