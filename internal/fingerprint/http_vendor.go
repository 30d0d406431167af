package fingerprint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/akylbek/payment-system/risk-sdk/internal/interfaces"
	"github.com/akylbek/payment-system/risk-sdk/internal/models"
)

// HTTPVendor talks to the fingerprint identification endpoint directly. The
// call runs on its own goroutine and reports through the callbacks. It keeps
// the caller's context values but not its cancellation, so a caller that
// stops waiting leaves the call running to completion.
type HTTPVendor struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

func NewHTTPVendor(cfg models.VendorConfiguration, httpClient *http.Client) *HTTPVendor {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPVendor{
		apiKey:     cfg.APIKey,
		endpoint:   strings.TrimRight(cfg.EndpointURL, "/") + "/",
		httpClient: httpClient,
	}
}

// HTTPVendorFactory returns a VendorFactory that shares httpClient across vendors.
func HTTPVendorFactory(httpClient *http.Client) VendorFactory {
	return func(cfg models.VendorConfiguration) interfaces.FingerprintVendor {
		return NewHTTPVendor(cfg, httpClient)
	}
}

type identifyRequest struct {
	Tags map[string]string `json:"tags"`
}

type identifyError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (v *HTTPVendor) GetVisitorID(ctx context.Context, tags map[string]string, onSuccess func(models.VisitorIDResponse), onError func(models.VendorError)) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		resp, err := v.identify(ctx, tags)
		if err != nil {
			onError(models.VendorError{Description: err.Error()})
			return
		}
		onSuccess(*resp)
	}()
}

func (v *HTTPVendor) identify(ctx context.Context, tags map[string]string) (*models.VisitorIDResponse, error) {
	payload, err := json.Marshal(identifyRequest{Tags: tags})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Auth-API-Key", v.apiKey)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body identifyError
		if json.NewDecoder(resp.Body).Decode(&body) == nil && body.Error.Message != "" {
			return nil, errors.New(body.Error.Message)
		}
		return nil, fmt.Errorf("identification failed with status %d", resp.StatusCode)
	}

	var out models.VisitorIDResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode identification response: %w", err)
	}
	if out.RequestID == "" {
		return nil, errors.New("identification response has no request id")
	}
	return &out, nil
}
