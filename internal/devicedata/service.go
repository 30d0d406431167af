// Package devicedata is the client for the device data REST API: one
// configuration fetch and one fingerprint persist, no retries.
package devicedata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/risk-sdk/internal/models"
	"github.com/akylbek/payment-system/risk-sdk/internal/telemetry"
)

const (
	ConnectTimeout = 5 * time.Second

	configurationPath = "/collect/configuration"
	fingerprintPath   = "/collect/fingerprint"
)

// NewHTTPClient returns the default client: a fixed connect timeout and nothing else.
func NewHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: ConnectTimeout}).DialContext
	return &http.Client{Transport: transport}
}

type Service struct {
	baseURL           string
	merchantPublicKey string
	integrationType   models.IntegrationType
	httpClient        *http.Client
}

func NewService(cfg models.InternalConfig, httpClient *http.Client) *Service {
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	return &Service{
		baseURL:           strings.TrimRight(cfg.DeviceDataEndpoint, "/"),
		merchantPublicKey: cfg.MerchantPublicKey,
		integrationType:   cfg.IntegrationType,
		httpClient:        httpClient,
	}
}

func (s *Service) GetConfiguration(ctx context.Context) (*models.DeviceDataConfiguration, error) {
	query := url.Values{"integrationType": {string(s.integrationType)}}
	endpoint := s.baseURL + configurationPath + "?" + query.Encode()

	var out models.DeviceDataConfiguration
	if err := s.do(ctx, "getConfiguration", http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PersistFingerprintData stores the fingerprint request id. An empty cardToken is sent as null.
func (s *Service) PersistFingerprintData(ctx context.Context, requestID, cardToken string) (*models.PersistFingerprintDataResponse, error) {
	body := models.PersistFingerprintDataRequest{
		FpRequestID:     requestID,
		IntegrationType: string(s.integrationType),
	}
	if cardToken != "" {
		body.CardToken = &cardToken
	}

	var out models.PersistFingerprintDataResponse
	if err := s.do(ctx, "persistFingerprintData", http.MethodPut, s.baseURL+fingerprintPath, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do performs one request and classifies the result: nil on a decodable 2xx,
// *models.StatusError on any other response, *models.TransportError when no
// response arrived.
func (s *Service) do(ctx context.Context, operation, method, endpoint string, body, out any) (err error) {
	ctx, span := telemetry.Tracer.Start(ctx, "devicedata."+operation, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	start := time.Now()
	outcome := "success"
	defer func() {
		telemetry.HTTPRequestDuration.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	var reader io.Reader
	if body != nil {
		payload, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			outcome = "exception"
			return &models.TransportError{Err: fmt.Errorf("encode request: %w", marshalErr)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		outcome = "exception"
		return &models.TransportError{Err: err}
	}
	req.Header.Set("Authorization", s.merchantPublicKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		outcome = "exception"
		telemetry.Logger.Debug("Device data request failed",
			zap.String("operation", operation),
			zap.Error(err),
		)
		return &models.TransportError{Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	telemetry.Logger.Debug("Device data response",
		zap.String("operation", operation),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = "error"
		return &models.StatusError{Code: resp.StatusCode, Message: statusMessage(resp)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		outcome = "error"
		return &models.StatusError{Code: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}

func statusMessage(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}
