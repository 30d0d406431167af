package interfaces

import (
	"context"

	"github.com/akylbek/payment-system/risk-sdk/internal/models"
)

// DeviceDataService defines the contract for the device data REST API
type DeviceDataService interface {
	GetConfiguration(ctx context.Context) (*models.DeviceDataConfiguration, error)
	PersistFingerprintData(ctx context.Context, requestID, cardToken string) (*models.PersistFingerprintDataResponse, error)
}

// FingerprintService collects a fingerprint request id
type FingerprintService interface {
	PublishData(ctx context.Context) (string, error)
}

// FingerprintVendor is the callback API of the third-party fingerprint library.
// Exactly one of onSuccess or onError is expected to be invoked, possibly from another goroutine.
type FingerprintVendor interface {
	GetVisitorID(ctx context.Context, tags map[string]string, onSuccess func(models.VisitorIDResponse), onError func(models.VendorError))
}

// RiskLogger records risk events
type RiskLogger interface {
	Log(ctx context.Context, entry models.LogEntry)
}

// EventSink receives formatted events
type EventSink interface {
	LogEvent(ctx context.Context, event models.Event)
}

// RiskPublisher is satisfied by an initialized risk handle
type RiskPublisher interface {
	PublishData(ctx context.Context, cardToken string) (string, error)
}
