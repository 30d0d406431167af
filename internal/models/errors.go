package models

import (
	"errors"
	"fmt"
)

var (
	ErrConfigFetch         = errors.New("risk: device data configuration fetch failed")
	ErrIntegrationDisabled = errors.New("risk: fingerprint integration disabled")
	ErrPublishFailure      = errors.New("risk: publish failure")
	ErrPublishInProgress   = errors.New("risk: publish already in progress")
	ErrPublicationNotFound = errors.New("risk: publication not found")
)

// StatusError is a device data response that was not a 2xx with a readable body.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("device data service returned %d: %s", e.Code, e.Message)
}

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "device data transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

type FingerprintError struct {
	Description string
}

func (e *FingerprintError) Error() string { return "fingerprint: " + e.Description }
