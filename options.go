package risk

import (
	"net/http"

	"github.com/akylbek/payment-system/risk-sdk/internal/devicedata"
	"github.com/akylbek/payment-system/risk-sdk/internal/eventlogger"
	"github.com/akylbek/payment-system/risk-sdk/internal/fingerprint"
	"github.com/akylbek/payment-system/risk-sdk/internal/interfaces"
	"github.com/akylbek/payment-system/risk-sdk/internal/models"
)

type (
	// FingerprintVendor is the callback API of a fingerprint provider.
	FingerprintVendor = interfaces.FingerprintVendor
	// VendorConfiguration carries the server-provided key and the fingerprint endpoint.
	VendorConfiguration = models.VendorConfiguration
	VisitorIDResponse   = models.VisitorIDResponse
	VendorError         = models.VendorError

	// EventProcessor delivers telemetry envelopes to a remote backend.
	EventProcessor = eventlogger.Processor
	EventEnvelope  = eventlogger.Envelope
)

type options struct {
	httpClient    *http.Client
	vendorFactory fingerprint.VendorFactory
	processor     eventlogger.Processor
	localLogging  bool
}

func defaultOptions() *options {
	return &options{httpClient: devicedata.NewHTTPClient()}
}

type Option func(*options)

// WithHTTPClient replaces the client used for the device data API, the
// default fingerprint vendor and the default telemetry endpoint.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithFingerprintVendor plugs in the fingerprint provider's client.
func WithFingerprintVendor(factory func(VendorConfiguration) FingerprintVendor) Option {
	return func(o *options) {
		o.vendorFactory = factory
	}
}

// WithEventProcessor sends risk telemetry to processor instead of the
// default logging endpoint, e.g. a Kafka or NATS processor.
func WithEventProcessor(processor EventProcessor) Option {
	return func(o *options) {
		o.processor = processor
	}
}

// WithLocalLogging mirrors every risk event to the SDK's zap logger.
func WithLocalLogging(enabled bool) Option {
	return func(o *options) {
		o.localLogging = enabled
	}
}
