// Package fingerprint adapts the callback-based fingerprint vendor API into a
// single blocking call that resolves exactly once.
package fingerprint

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/akylbek/payment-system/risk-sdk/internal/interfaces"
	"github.com/akylbek/payment-system/risk-sdk/internal/models"
	"github.com/akylbek/payment-system/risk-sdk/internal/telemetry"
)

const unknownError = "Unknown error"

// VendorFactory builds a vendor client for the server-provided key and endpoint.
type VendorFactory func(cfg models.VendorConfiguration) interfaces.FingerprintVendor

type Service struct {
	client     interfaces.FingerprintVendor
	sourceType models.SourceType
	now        func() time.Time
}

func NewService(cfg models.InternalConfig, publicKey string, factory VendorFactory) *Service {
	return &Service{
		client: factory(models.VendorConfiguration{
			APIKey:      publicKey,
			EndpointURL: cfg.FingerprintEndpoint,
		}),
		sourceType: cfg.SourceType,
		now:        time.Now,
	}
}

type outcome struct {
	requestID string
	err       error
}

// resolution hands the first outcome to the waiter and drops the rest.
type resolution struct {
	once sync.Once
	ch   chan outcome
}

func newResolution() *resolution {
	return &resolution{ch: make(chan outcome, 1)}
}

func (r *resolution) resolve(o outcome) {
	resolved := false
	r.once.Do(func() {
		r.ch <- o
		resolved = true
	})
	if !resolved {
		telemetry.Logger.Warn("Fingerprint vendor resolved more than once; ignoring late callback")
	}
}

// PublishData asks the vendor for a visitor id and returns its request id.
// There is no timeout of its own; it returns early only when ctx ends.
func (s *Service) PublishData(ctx context.Context) (string, error) {
	res := newResolution()

	s.client.GetVisitorID(ctx, s.metadata(),
		func(resp models.VisitorIDResponse) {
			res.resolve(outcome{requestID: resp.RequestID})
		},
		func(vendorErr models.VendorError) {
			description := vendorErr.Description
			if description == "" {
				description = unknownError
			}
			res.resolve(outcome{err: &models.FingerprintError{Description: description}})
		},
	)

	select {
	case o := <-res.ch:
		if o.err != nil {
			telemetry.Logger.Debug("Fingerprint collection failed", zap.Error(o.err))
		}
		return o.requestID, o.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Service) metadata() map[string]string {
	return map[string]string{
		"fpjsSource":    string(s.sourceType),
		"fpjsTimestamp": strconv.FormatInt(s.now().UnixMilli(), 10),
	}
}
