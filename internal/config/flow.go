package config

import (
	"os"
	"strconv"
	"time"
)

// FlowConfig holds the timings and thresholds of the simulated flows.
type FlowConfig struct {
	AuthenticatingDelay         time.Duration
	VerificationProcessingDelay time.Duration
	VerificationSuccessRate     float64
	OnboardingCompleteDelay     time.Duration
	BalanceCheckDelay           time.Duration
	ActivationDelay             time.Duration
	CompletionDelay             time.Duration
	PaymentProcessingDelay      time.Duration
	ReferencePrefix             string
	WalletBannerThreshold       int64 // in sen
	ReceiptQRSize               int
}

func LoadFlowConfig() *FlowConfig {
	return &FlowConfig{
		AuthenticatingDelay:         getEnvAsDuration("AUTHENTICATING_DELAY", 1500*time.Millisecond),
		VerificationProcessingDelay: getEnvAsDuration("VERIFICATION_PROCESSING_DELAY", 2*time.Second),
		VerificationSuccessRate:     getEnvAsFloat("VERIFICATION_SUCCESS_RATE", 0.7),
		OnboardingCompleteDelay:     getEnvAsDuration("ONBOARDING_COMPLETE_DELAY", 2*time.Second),
		BalanceCheckDelay:           getEnvAsDuration("INVEST_BALANCE_CHECK_DELAY", 1500*time.Millisecond),
		ActivationDelay:             getEnvAsDuration("INVEST_ACTIVATION_DELAY", 1500*time.Millisecond),
		CompletionDelay:             getEnvAsDuration("INVEST_COMPLETION_DELAY", 2*time.Second),
		PaymentProcessingDelay:      getEnvAsDuration("PAYMENT_PROCESSING_DELAY", 1500*time.Millisecond),
		ReferencePrefix:             getEnv("REFERENCE_PREFIX", "BF-2025-"),
		WalletBannerThreshold:       int64(getEnvAsInt("WALLET_BANNER_THRESHOLD", 2000)),
		ReceiptQRSize:               getEnvAsInt("RECEIPT_QR_SIZE", 256),
	}
}

// ProcessingDuration is the total time an investment spends in processing.
func (c *FlowConfig) ProcessingDuration() time.Duration {
	return c.BalanceCheckDelay + c.ActivationDelay + c.CompletionDelay
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil && f >= 0 && f <= 1 {
			return f
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}
