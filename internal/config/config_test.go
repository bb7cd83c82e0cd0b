package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoadFlowConfig_Defaults(t *testing.T) {
	cfg := LoadFlowConfig()

	assert.Equal(t, 1500*time.Millisecond, cfg.AuthenticatingDelay)
	assert.Equal(t, 2*time.Second, cfg.VerificationProcessingDelay)
	assert.Equal(t, 0.7, cfg.VerificationSuccessRate)
	assert.Equal(t, "BF-2025-", cfg.ReferencePrefix)
	assert.Equal(t, int64(2000), cfg.WalletBannerThreshold)
	assert.Equal(t, 5*time.Second, cfg.ProcessingDuration())
}

func TestLoadFlowConfig_EnvOverrides(t *testing.T) {
	t.Setenv("AUTHENTICATING_DELAY", "10ms")
	t.Setenv("VERIFICATION_SUCCESS_RATE", "1")
	t.Setenv("REFERENCE_PREFIX", "XX-")
	t.Setenv("WALLET_BANNER_THRESHOLD", "500")

	cfg := LoadFlowConfig()
	assert.Equal(t, 10*time.Millisecond, cfg.AuthenticatingDelay)
	assert.Equal(t, 1.0, cfg.VerificationSuccessRate)
	assert.Equal(t, "XX-", cfg.ReferencePrefix)
	assert.Equal(t, int64(500), cfg.WalletBannerThreshold)
}

func TestLoadFlowConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("VERIFICATION_SUCCESS_RATE", "1.5")
	t.Setenv("VERIFICATION_PROCESSING_DELAY", "soon")
	t.Setenv("RECEIPT_QR_SIZE", "big")

	cfg := LoadFlowConfig()
	assert.Equal(t, 0.7, cfg.VerificationSuccessRate)
	assert.Equal(t, 2*time.Second, cfg.VerificationProcessingDelay)
	assert.Equal(t, 256, cfg.ReceiptQRSize)
}

func TestGetServerConfig(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("server.port", "9090")
	viper.Set("prompts.store", "redis")

	cfg := GetServerConfig()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "redis", cfg.PromptStore)
	assert.Equal(t, "memory", cfg.LedgerBackend)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
}
