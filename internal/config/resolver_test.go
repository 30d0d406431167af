package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/akylbek/payment-system/risk-sdk/internal/models"
)

func TestResolve_EndpointTable(t *testing.T) {
	tests := []struct {
		env         models.Environment
		deviceData  string
		fingerprint string
	}{
		{models.EnvironmentQA, "https://prism-qa.ckotech.co", "https://fpjs.cko-qa.ckotech.co"},
		{models.EnvironmentSandbox, "https://risk.sandbox.checkout.com", "https://fpjs.sandbox.checkout.com"},
		{models.EnvironmentProduction, "https://risk.checkout.com", "https://fpjs.checkout.com"},
	}

	for _, tt := range tests {
		t.Run(string(tt.env), func(t *testing.T) {
			got := Resolve(models.RiskConfig{PublicKey: "pk_test", Environment: tt.env})
			assert.Equal(t, tt.deviceData, got.DeviceDataEndpoint)
			assert.Equal(t, tt.fingerprint, got.FingerprintEndpoint)
			assert.Equal(t, "pk_test", got.MerchantPublicKey)
			assert.Equal(t, tt.env, got.Environment)
		})
	}
}

func TestResolve_Standalone(t *testing.T) {
	got := Resolve(models.RiskConfig{
		PublicKey:     "pk_test",
		Environment:   models.EnvironmentSandbox,
		CorrelationID: "corr-1",
	})

	assert.Equal(t, models.IntegrationTypeStandalone, got.IntegrationType)
	assert.Equal(t, models.SourceTypeRiskSDK, got.SourceType)
	assert.Empty(t, got.CorrelationID, "correlation id is only kept in frames mode")
}

func TestResolve_FramesMode(t *testing.T) {
	got := Resolve(models.RiskConfig{
		PublicKey:     "pk_test",
		Environment:   models.EnvironmentSandbox,
		FramesMode:    true,
		CorrelationID: "corr-1",
	})

	assert.True(t, got.FramesMode)
	assert.Equal(t, models.IntegrationTypeFrames, got.IntegrationType)
	assert.Equal(t, models.SourceTypeCardToken, got.SourceType)
	assert.Equal(t, "corr-1", got.CorrelationID)
}

func TestResolve_UnknownEnvironmentPanics(t *testing.T) {
	assert.Panics(t, func() {
		Resolve(models.RiskConfig{PublicKey: "pk_test", Environment: "staging"})
	})
}
