package config

import (
	"fmt"

	"github.com/akylbek/payment-system/risk-sdk/internal/models"
)

type endpoints struct {
	deviceData  string
	fingerprint string
}

var endpointTable = map[models.Environment]endpoints{
	models.EnvironmentQA: {
		deviceData:  "https://prism-qa.ckotech.co",
		fingerprint: "https://fpjs.cko-qa.ckotech.co",
	},
	models.EnvironmentSandbox: {
		deviceData:  "https://risk.sandbox.checkout.com",
		fingerprint: "https://fpjs.sandbox.checkout.com",
	},
	models.EnvironmentProduction: {
		deviceData:  "https://risk.checkout.com",
		fingerprint: "https://fpjs.checkout.com",
	},
}

// Resolve derives the internal configuration. An environment outside the
// enum is a programming error and panics.
func Resolve(cfg models.RiskConfig) models.InternalConfig {
	ep, ok := endpointTable[cfg.Environment]
	if !ok {
		panic(fmt.Sprintf("config: unsupported risk environment %q", cfg.Environment))
	}

	internal := models.InternalConfig{
		MerchantPublicKey:   cfg.PublicKey,
		Environment:         cfg.Environment,
		FramesMode:          cfg.FramesMode,
		DeviceDataEndpoint:  ep.deviceData,
		FingerprintEndpoint: ep.fingerprint,
		IntegrationType:     models.IntegrationTypeStandalone,
		SourceType:          models.SourceTypeRiskSDK,
	}
	if cfg.FramesMode {
		internal.IntegrationType = models.IntegrationTypeFrames
		internal.SourceType = models.SourceTypeCardToken
		internal.CorrelationID = cfg.CorrelationID
	}
	return internal
}
