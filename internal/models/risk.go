package models

import "fmt"

type Environment string

const (
	EnvironmentQA         Environment = "qa"
	EnvironmentSandbox    Environment = "sandbox"
	EnvironmentProduction Environment = "prod"
)

// ParseEnvironment maps the textual form used in host configuration to an Environment.
func ParseEnvironment(s string) (Environment, error) {
	switch s {
	case "qa":
		return EnvironmentQA, nil
	case "sandbox":
		return EnvironmentSandbox, nil
	case "prod", "production":
		return EnvironmentProduction, nil
	}
	return "", fmt.Errorf("unknown risk environment %q", s)
}

// Name is the lower-case environment name used in log tags.
func (e Environment) Name() string {
	switch e {
	case EnvironmentQA:
		return "qa"
	case EnvironmentSandbox:
		return "sandbox"
	case EnvironmentProduction:
		return "production"
	}
	return string(e)
}

// LogEnvironment collapses the risk environment onto the two logging backends.
func (e Environment) LogEnvironment() LogEnvironment {
	if e == EnvironmentProduction {
		return LogEnvironmentProduction
	}
	return LogEnvironmentSandbox
}

type LogEnvironment string

const (
	LogEnvironmentSandbox    LogEnvironment = "sandbox"
	LogEnvironmentProduction LogEnvironment = "production"
)

type IntegrationType string

const (
	IntegrationTypeStandalone IntegrationType = "RiskAndroidStandalone"
	IntegrationTypeFrames     IntegrationType = "RiskAndroidInFramesAndroid"
)

type SourceType string

const (
	SourceTypeCardToken SourceType = "card_token"
	SourceTypeRiskSDK   SourceType = "riskandroid"
)

// RiskConfig is supplied once by the host application.
type RiskConfig struct {
	PublicKey     string
	Environment   Environment
	FramesMode    bool
	CorrelationID string
}

// InternalConfig is derived from RiskConfig and never changes afterwards.
type InternalConfig struct {
	MerchantPublicKey   string
	Environment         Environment
	FramesMode          bool
	DeviceDataEndpoint  string
	FingerprintEndpoint string
	IntegrationType     IntegrationType
	SourceType          SourceType
	CorrelationID       string
}
