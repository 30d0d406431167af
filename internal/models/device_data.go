package models

import "time"

type DeviceDataConfiguration struct {
	FingerprintIntegration FingerprintIntegration `json:"fingerprint_integration"`
}

type FingerprintIntegration struct {
	Enabled   bool    `json:"enabled"`
	PublicKey *string `json:"public_key"`
}

type PersistFingerprintDataRequest struct {
	FpRequestID     string  `json:"fp_request_id"`
	IntegrationType string  `json:"integration_type"`
	CardToken       *string `json:"card_token"`
}

type PersistFingerprintDataResponse struct {
	DeviceSessionID string `json:"device_session_id"`
}

// VendorConfiguration is what the fingerprint vendor client is built with.
type VendorConfiguration struct {
	APIKey      string
	EndpointURL string
}

type VisitorIDResponse struct {
	RequestID string `json:"requestId"`
	VisitorID string `json:"visitorId"`
}

type VendorError struct {
	Description string
}

type PublicationStatus string

const (
	PublicationPublished PublicationStatus = "published"
	PublicationFailed    PublicationStatus = "failed"
)

// Publication is the host service's record of a single PublishData call.
type Publication struct {
	ID              string            `json:"id"`
	DeviceSessionID string            `json:"device_session_id,omitempty"`
	CardToken       string            `json:"card_token,omitempty"`
	Status          PublicationStatus `json:"status"`
	Error           string            `json:"error,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}
