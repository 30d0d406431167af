// Package risk produces device session ids for fraud-risk scoring during
// checkout. A handle is created once with New or GetInstance, which fetch the
// remote device data configuration and set up fingerprinting; PublishData then
// collects a fingerprint and persists it server side.
//
//	r, err := risk.GetInstance(ctx, risk.Config{PublicKey: pk, Environment: risk.EnvironmentSandbox})
//	switch {
//	case errors.Is(err, risk.ErrIntegrationDisabled):
//		// fingerprinting is switched off for this merchant
//	case err != nil:
//		// configuration could not be loaded
//	}
//	deviceSessionID, err := r.PublishData(ctx, cardToken)
package risk

import (
	"context"
	"time"

	"github.com/akylbek/payment-system/risk-sdk/internal/config"
	"github.com/akylbek/payment-system/risk-sdk/internal/devicedata"
	"github.com/akylbek/payment-system/risk-sdk/internal/eventlogger"
	"github.com/akylbek/payment-system/risk-sdk/internal/fingerprint"
	"github.com/akylbek/payment-system/risk-sdk/internal/interfaces"
	"github.com/akylbek/payment-system/risk-sdk/internal/models"
	"github.com/akylbek/payment-system/risk-sdk/internal/risklog"
	"github.com/akylbek/payment-system/risk-sdk/internal/service"
	"github.com/akylbek/payment-system/risk-sdk/internal/syncutil"
	"github.com/akylbek/payment-system/risk-sdk/internal/telemetry"
)

type (
	Config      = models.RiskConfig
	Environment = models.Environment
)

const (
	EnvironmentQA         = models.EnvironmentQA
	EnvironmentSandbox    = models.EnvironmentSandbox
	EnvironmentProduction = models.EnvironmentProduction
)

var (
	// ErrConfigFetch wraps the device data error that stopped initialization.
	ErrConfigFetch = models.ErrConfigFetch
	// ErrIntegrationDisabled means the server switched fingerprinting off or sent no key.
	ErrIntegrationDisabled = models.ErrIntegrationDisabled
	// ErrPublishFailure wraps the fingerprint or persist error of a failed PublishData.
	ErrPublishFailure = models.ErrPublishFailure
)

// Risk is an initialized SDK handle. It is safe for concurrent use.
type Risk struct {
	internal *service.Risk
	events   *eventlogger.Logger
}

// New initializes a handle owned by the caller. Every call runs the full
// initialization sequence.
func New(ctx context.Context, cfg Config, opts ...Option) (*Risk, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	internalCfg := config.Resolve(cfg)
	deviceData := devicedata.NewService(internalCfg, o.httpClient)
	events := newEventLogger(internalCfg, o)
	logger := risklog.NewService(internalCfg, events)

	vendorFactory := o.vendorFactory
	if vendorFactory == nil {
		vendorFactory = fingerprint.HTTPVendorFactory(o.httpClient)
	}
	newFingerprint := func(publicKey string) interfaces.FingerprintService {
		return fingerprint.NewService(internalCfg, publicKey, vendorFactory)
	}

	internal, err := service.NewRisk(ctx, deviceData, logger, newFingerprint)
	if err != nil {
		// Nobody owns the logger now; let it drain the failure event and stop.
		go func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
			defer cancel()
			_ = events.Close(closeCtx)
		}()
		return nil, err
	}
	return &Risk{internal: internal, events: events}, nil
}

const closeTimeout = 15 * time.Second

var (
	instanceMu = syncutil.NewContextMutex()
	instance   *Risk
)

// GetInstance returns the process-wide handle, creating it on first success.
// Concurrent callers wait for the initialization in flight and share its
// result; a failed initialization is not kept, so a later call tries again.
// Config and options only matter for the call that creates the handle.
func GetInstance(ctx context.Context, cfg Config, opts ...Option) (*Risk, error) {
	unlock, err := instanceMu.LockContext(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if instance != nil {
		return instance, nil
	}

	r, err := New(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	instance = r
	return r, nil
}

// PublishData collects a fingerprint and persists it, returning the device
// session id. cardToken may be empty.
func (r *Risk) PublishData(ctx context.Context, cardToken string) (string, error) {
	return r.internal.PublishData(ctx, cardToken)
}

// Close waits for queued telemetry to be sent, or for ctx to end. Events
// logged after Close are dropped; PublishData keeps working.
func (r *Risk) Close(ctx context.Context) error {
	return r.events.Close(ctx)
}

func newEventLogger(cfg models.InternalConfig, o *options) *eventlogger.Logger {
	logger := eventlogger.New(risklog.ProductName)
	if o.localLogging {
		logger.EnableLocalProcessor(models.LevelDebug, telemetry.Logger)
	}

	processor := o.processor
	if processor == nil {
		processor = eventlogger.NewHTTPProcessor(cfg.Environment.LogEnvironment(), o.httpClient)
	}
	logger.EnableRemoteProcessor(
		eventlogger.RemoteProcessorMetadataFrom(string(cfg.Environment.LogEnvironment()), risklog.ProductIdentifier, telemetry.SDKVersion),
		processor,
	)
	return logger
}
