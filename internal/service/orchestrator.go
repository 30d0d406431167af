package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/risk-sdk/internal/interfaces"
	"github.com/akylbek/payment-system/risk-sdk/internal/models"
	"github.com/akylbek/payment-system/risk-sdk/internal/telemetry"
)

const (
	reasonGetConfiguration = "getConfiguration"
	reasonPublishData      = "publishData"
	reasonPersist          = "persistFingerprintData"

	typeDeviceData  = "Device Data Service Error"
	typeFingerprint = "Fingerprint Service Error"

	msgIntegrationDisabled = "Fingerprint integration disabled"
)

// FingerprintFactory builds the fingerprint adapter once the server has
// handed out its public key.
type FingerprintFactory func(publicKey string) interfaces.FingerprintService

// Risk is an initialized orchestrator. It is immutable and safe for concurrent use.
type Risk struct {
	fingerprint interfaces.FingerprintService
	deviceData  interfaces.DeviceDataService
	logger      interfaces.RiskLogger
	fpLoadTime  time.Duration
}

// NewRisk runs the initialization sequence: fetch the device data
// configuration and, when fingerprinting is enabled with a key, build the
// adapter. Failures are logged and returned as ErrConfigFetch or
// ErrIntegrationDisabled; nothing is retried.
func NewRisk(
	ctx context.Context,
	deviceData interfaces.DeviceDataService,
	logger interfaces.RiskLogger,
	newFingerprint FingerprintFactory,
) (*Risk, error) {
	ctx, span := telemetry.Tracer.Start(ctx, "risk.initialize")
	defer span.End()

	start := time.Now()
	cfg, err := deviceData.GetConfiguration(ctx)
	loadTime := time.Since(start)
	timings := models.Timings{FpLoad: models.Millis(loadTime)}

	if err != nil {
		logger.Log(ctx, models.LogEntry{
			Event:   models.EventLoadFailure,
			Timings: timings,
			Error:   networkLogError(reasonGetConfiguration, err),
		})
		telemetry.Logger.Error("Risk initialization failed",
			zap.Duration("fp_load", loadTime),
			zap.Error(err),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "configuration fetch failed")
		return nil, fmt.Errorf("%w: %w", models.ErrConfigFetch, err)
	}

	integration := cfg.FingerprintIntegration
	if !integration.Enabled || integration.PublicKey == nil {
		logger.Log(ctx, models.LogEntry{
			Event:   models.EventPublishDisabled,
			Timings: timings,
			Error: &models.LogError{
				Reason:  reasonGetConfiguration,
				Message: msgIntegrationDisabled,
				Type:    typeDeviceData,
			},
		})
		telemetry.Logger.Warn("Risk fingerprint integration disabled",
			zap.Bool("enabled", integration.Enabled),
			zap.Bool("has_public_key", integration.PublicKey != nil),
		)
		span.SetStatus(codes.Error, "integration disabled")
		return nil, models.ErrIntegrationDisabled
	}

	fingerprint := newFingerprint(*integration.PublicKey)
	loadTime = time.Since(start)

	telemetry.Logger.Info("Risk initialized", zap.Duration("fp_load", loadTime))
	return &Risk{
		fingerprint: fingerprint,
		deviceData:  deviceData,
		logger:      logger,
		fpLoadTime:  loadTime,
	}, nil
}

// PublishData collects a fingerprint and persists it, returning the device
// session id. Any failure is logged and reported as ErrPublishFailure.
func (r *Risk) PublishData(ctx context.Context, cardToken string) (string, error) {
	ctx, span := telemetry.Tracer.Start(ctx, "risk.publishData")
	defer span.End()
	span.SetAttributes(attribute.Bool("risk.card_token_present", cardToken != ""))

	start := time.Now()
	requestID, err := r.fingerprint.PublishData(ctx)
	fpPublish := models.Millis(time.Since(start))

	if err != nil {
		r.logger.Log(ctx, models.LogEntry{
			Event: models.EventPublishFailure,
			Timings: models.Timings{
				Block:     models.Millis(time.Since(start)),
				FpPublish: fpPublish,
			},
			Error: &models.LogError{
				Reason:  reasonPublishData,
				Message: fingerprintMessage(err),
				Type:    typeFingerprint,
			},
		})
		span.RecordError(err)
		span.SetStatus(codes.Error, "fingerprint collection failed")
		return "", fmt.Errorf("%w: %w", models.ErrPublishFailure, err)
	}

	span.SetAttributes(attribute.String("risk.fp_request_id", requestID))
	r.logger.Log(ctx, models.LogEntry{
		Event: models.EventCollected,
		Timings: models.Timings{
			Block:     models.Millis(time.Since(start)),
			FpLoad:    models.Millis(r.fpLoadTime),
			FpPublish: fpPublish,
		},
		RequestID: requestID,
	})

	persistStart := time.Now()
	resp, err := r.deviceData.PersistFingerprintData(ctx, requestID, cardToken)
	persistTime := models.Millis(time.Since(persistStart))

	if err != nil {
		r.logger.Log(ctx, models.LogEntry{
			Event: models.EventPublishFailure,
			Timings: models.Timings{
				Block:             models.Millis(time.Since(start)),
				DeviceDataPersist: persistTime,
				FpPublish:         fpPublish,
			},
			Error: networkLogError(reasonPersist, err),
		})
		telemetry.Logger.Error("Risk fingerprint persist failed",
			zap.String("fp_request_id", requestID),
			zap.Error(err),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return "", fmt.Errorf("%w: %w", models.ErrPublishFailure, err)
	}

	r.logger.Log(ctx, models.LogEntry{
		Event: models.EventPublished,
		Timings: models.Timings{
			Block:             models.Millis(time.Since(start)),
			DeviceDataPersist: persistTime,
			FpLoad:            models.Millis(r.fpLoadTime),
			FpPublish:         fpPublish,
		},
		RequestID:       requestID,
		DeviceSessionID: resp.DeviceSessionID,
	})

	telemetry.Logger.Info("Risk data published",
		zap.String("fp_request_id", requestID),
		zap.String("device_session_id", resp.DeviceSessionID),
	)
	return resp.DeviceSessionID, nil
}

// networkLogError maps a device data error onto the failure log shape.
func networkLogError(reason string, err error) *models.LogError {
	logErr := &models.LogError{
		Reason:  reason,
		Message: err.Error(),
		Type:    typeDeviceData,
	}

	var statusErr *models.StatusError
	var transportErr *models.TransportError
	switch {
	case errors.As(err, &statusErr):
		code := statusErr.Code
		logErr.Message = statusErr.Message
		logErr.Status = &code
		logErr.InnerExceptionType = fmt.Sprintf("%T", statusErr)
	case errors.As(err, &transportErr):
		logErr.Message = transportErr.Err.Error()
		logErr.InnerExceptionType = fmt.Sprintf("%T", transportErr.Err)
	default:
		logErr.InnerExceptionType = fmt.Sprintf("%T", err)
	}
	return logErr
}

func fingerprintMessage(err error) string {
	var fpErr *models.FingerprintError
	if errors.As(err, &fpErr) {
		return fpErr.Description
	}
	return err.Error()
}
