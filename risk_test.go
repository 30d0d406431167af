package risk

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// redirectTransport sends every request to target, keeping path and query, so
// the fixed environment endpoints can be served by a test server.
type redirectTransport struct {
	target *url.URL
}

func (t redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.URL.Scheme = t.target.Scheme
	clone.URL.Host = t.target.Host
	clone.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(clone)
}

type deviceDataServer struct {
	configBody   string
	configStatus int
	configDelay  time.Duration
	configCalls  atomic.Int32
	persisted    map[string]any
	mu           sync.Mutex
}

func (s *deviceDataServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/collect/configuration":
		s.configCalls.Add(1)
		time.Sleep(s.configDelay)
		s.mu.Lock()
		status, body := s.configStatus, s.configBody
		s.mu.Unlock()
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		_, _ = io.WriteString(w, body)
	case "/collect/fingerprint":
		s.mu.Lock()
		_ = json.NewDecoder(r.Body).Decode(&s.persisted)
		s.mu.Unlock()
		_, _ = io.WriteString(w, `{"device_session_id":"sess-1"}`)
	case "/logging":
		w.WriteHeader(http.StatusAccepted)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *deviceDataServer) respondWith(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configStatus = status
	s.configBody = body
}

func (s *deviceDataServer) persistedBody() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persisted
}

type stubVendor struct {
	cfg VendorConfiguration
}

func (v *stubVendor) GetVisitorID(_ context.Context, _ map[string]string, onSuccess func(VisitorIDResponse), _ func(VendorError)) {
	go onSuccess(VisitorIDResponse{RequestID: "req-1"})
}

// silentVendor never calls back.
type silentVendor struct{}

func (silentVendor) GetVisitorID(context.Context, map[string]string, func(VisitorIDResponse), func(VendorError)) {
}

type recordingProcessor struct {
	mu        sync.Mutex
	envelopes []EventEnvelope
	delay     time.Duration
}

func (p *recordingProcessor) Name() string { return "recording" }

func (p *recordingProcessor) Process(ctx context.Context, envelope EventEnvelope) error {
	select {
	case <-time.After(p.delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.envelopes = append(p.envelopes, envelope)
	return nil
}

func (p *recordingProcessor) properties(i int) map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.envelopes[i].Data.Properties
}

func (p *recordingProcessor) eventTypes() []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]any, 0, len(p.envelopes))
	for _, e := range p.envelopes {
		out = append(out, e.Data.Properties["EventType"])
	}
	return out
}

type harness struct {
	server    *deviceDataServer
	processor *recordingProcessor
	vendors   []*stubVendor
	opts      []Option
}

func newHarness(t *testing.T, server *deviceDataServer) *harness {
	t.Helper()
	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)
	target, err := url.Parse(ts.URL)
	require.NoError(t, err)

	h := &harness{server: server, processor: &recordingProcessor{}}
	var mu sync.Mutex
	h.opts = []Option{
		WithHTTPClient(&http.Client{Transport: redirectTransport{target: target}}),
		WithEventProcessor(h.processor),
		WithFingerprintVendor(func(cfg VendorConfiguration) FingerprintVendor {
			mu.Lock()
			defer mu.Unlock()
			v := &stubVendor{cfg: cfg}
			h.vendors = append(h.vendors, v)
			return v
		}),
	}
	return h
}

func closeRisk(t *testing.T, r *Risk) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Close(ctx))
}

func testConfig() Config {
	return Config{PublicKey: "pk_test_1234567890", Environment: EnvironmentSandbox}
}

func TestNew_PublishData(t *testing.T) {
	h := newHarness(t, &deviceDataServer{
		configBody: `{"fingerprint_integration":{"enabled":true,"public_key":"fp_pk"}}`,
	})

	r, err := New(context.Background(), testConfig(), h.opts...)
	require.NoError(t, err)

	require.Len(t, h.vendors, 1)
	assert.Equal(t, "fp_pk", h.vendors[0].cfg.APIKey)
	assert.Equal(t, "https://fpjs.sandbox.checkout.com", h.vendors[0].cfg.EndpointURL)

	id, err := r.PublishData(context.Background(), "tok_1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", id)

	assert.Equal(t, map[string]any{
		"fp_request_id":    "req-1",
		"integration_type": "RiskAndroidStandalone",
		"card_token":       "tok_1",
	}, h.server.persistedBody())

	closeRisk(t, r)

	assert.Equal(t, []any{"riskDataCollected", "riskDataPublished"}, h.processor.eventTypes())
	h.processor.mu.Lock()
	defer h.processor.mu.Unlock()
	for _, env := range h.processor.envelopes {
		assert.Equal(t, "req-1", env.Data.Properties["FpRequestId"])
		assert.Equal(t, "pk_test_********567890", env.Data.Properties["MaskedPublicKey"])
	}
}

func TestNew_IntegrationDisabled(t *testing.T) {
	h := newHarness(t, &deviceDataServer{configBody: `{"fingerprint_integration":{"enabled":false}}`})

	r, err := New(context.Background(), testConfig(), h.opts...)
	assert.Nil(t, r)
	assert.ErrorIs(t, err, ErrIntegrationDisabled)
	assert.Empty(t, h.vendors)
	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]any{"riskDataPublishDisabled"}, h.processor.eventTypes())
	}, time.Second, 10*time.Millisecond)
}

func TestNew_ServerError(t *testing.T) {
	h := newHarness(t, &deviceDataServer{configStatus: http.StatusInternalServerError})

	r, err := New(context.Background(), testConfig(), h.opts...)
	assert.Nil(t, r)
	assert.ErrorIs(t, err, ErrConfigFetch)

	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]any{"riskLoadFailure"}, h.processor.eventTypes())
	}, time.Second, 10*time.Millisecond)
	props := h.processor.properties(0)
	assert.NotEmpty(t, props["InnerExceptionType"])
	assert.Contains(t, props, "FpLoad")
}

func TestPublishData_SlowTelemetryDoesNotBlock(t *testing.T) {
	h := newHarness(t, &deviceDataServer{
		configBody: `{"fingerprint_integration":{"enabled":true,"public_key":"fp_pk"}}`,
	})
	h.processor.delay = 300 * time.Millisecond

	r, err := New(context.Background(), testConfig(), h.opts...)
	require.NoError(t, err)

	start := time.Now()
	_, err = r.PublishData(context.Background(), "")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 250*time.Millisecond)

	closeRisk(t, r)
	assert.Equal(t, []any{"riskDataCollected", "riskDataPublished"}, h.processor.eventTypes())
}

func TestPublishData_DeadlineFailureIsStillLogged(t *testing.T) {
	h := newHarness(t, &deviceDataServer{
		configBody: `{"fingerprint_integration":{"enabled":true,"public_key":"fp_pk"}}`,
	})
	opts := append(h.opts, WithFingerprintVendor(func(VendorConfiguration) FingerprintVendor {
		return silentVendor{}
	}))

	r, err := New(context.Background(), testConfig(), opts...)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = r.PublishData(ctx, "tok_1")
	assert.ErrorIs(t, err, ErrPublishFailure)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	closeRisk(t, r)
	assert.Equal(t, []any{"riskDataPublishFailure"}, h.processor.eventTypes())
}

func TestGetInstance_ConcurrentCallersShareOneInitialization(t *testing.T) {
	instance = nil
	t.Cleanup(func() { instance = nil })

	h := newHarness(t, &deviceDataServer{
		configBody:  `{"fingerprint_integration":{"enabled":true,"public_key":"fp_pk"}}`,
		configDelay: 50 * time.Millisecond,
	})

	const callers = 8
	results := make([]*Risk, callers)
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			r, err := GetInstance(context.Background(), testConfig(), h.opts...)
			assert.NoError(t, err)
			results[i] = r
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), h.server.configCalls.Load())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestGetInstance_RetriesAfterFailure(t *testing.T) {
	instance = nil
	t.Cleanup(func() { instance = nil })

	server := &deviceDataServer{configStatus: http.StatusServiceUnavailable}
	h := newHarness(t, server)

	_, err := GetInstance(context.Background(), testConfig(), h.opts...)
	assert.ErrorIs(t, err, ErrConfigFetch)

	server.respondWith(0, `{"fingerprint_integration":{"enabled":true,"public_key":"fp_pk"}}`)

	r, err := GetInstance(context.Background(), testConfig(), h.opts...)
	require.NoError(t, err)
	assert.NotNil(t, r)
	assert.Equal(t, int32(2), server.configCalls.Load())
}

func TestGetInstance_ContextCancelledWhileWaiting(t *testing.T) {
	instance = nil
	t.Cleanup(func() { instance = nil })

	unlock, err := instanceMu.LockContext(context.Background())
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = GetInstance(ctx, testConfig())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
