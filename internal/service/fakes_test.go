package service

import (
	"context"
	"sync"
	"time"

	"github.com/akylbek/payment-system/risk-sdk/internal/interfaces"
	"github.com/akylbek/payment-system/risk-sdk/internal/models"
)

type fakeDeviceData struct {
	config     *models.DeviceDataConfiguration
	configErr  error
	persist    *models.PersistFingerprintDataResponse
	persistErr error

	configCalls    int
	persistedID    string
	persistedToken string
}

func (f *fakeDeviceData) GetConfiguration(context.Context) (*models.DeviceDataConfiguration, error) {
	f.configCalls++
	return f.config, f.configErr
}

func (f *fakeDeviceData) PersistFingerprintData(_ context.Context, requestID, cardToken string) (*models.PersistFingerprintDataResponse, error) {
	f.persistedID = requestID
	f.persistedToken = cardToken
	return f.persist, f.persistErr
}

type fakeFingerprint struct {
	requestID string
	err       error
}

func (f *fakeFingerprint) PublishData(context.Context) (string, error) {
	return f.requestID, f.err
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []models.LogEntry
}

func (l *recordingLogger) Log(_ context.Context, entry models.LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

func (l *recordingLogger) events() []models.RiskEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.RiskEvent, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.Event)
	}
	return out
}

func enabledConfig(key string) *models.DeviceDataConfiguration {
	return &models.DeviceDataConfiguration{
		FingerprintIntegration: models.FingerprintIntegration{Enabled: true, PublicKey: &key},
	}
}

type fakePublisher struct {
	deviceSessionID string
	err             error
	calls           int
}

func (p *fakePublisher) PublishData(context.Context, string) (string, error) {
	p.calls++
	return p.deviceSessionID, p.err
}

type memoryRepo struct {
	rows      map[string]*models.Publication
	insertErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: map[string]*models.Publication{}}
}

func (r *memoryRepo) Insert(_ context.Context, p *models.Publication) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.rows[p.ID] = p
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*models.Publication, error) {
	p, ok := r.rows[id]
	if !ok {
		return nil, models.ErrPublicationNotFound
	}
	return p, nil
}

type memoryLock struct {
	held     map[string]bool
	acquired []string
	released []string
}

func newMemoryLock() *memoryLock {
	return &memoryLock{held: map[string]bool{}}
}

func (l *memoryLock) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	l.acquired = append(l.acquired, key)
	return true, nil
}

func (l *memoryLock) Release(_ context.Context, key string) error {
	delete(l.held, key)
	l.released = append(l.released, key)
	return nil
}

var (
	_ interfaces.DeviceDataService     = (*fakeDeviceData)(nil)
	_ interfaces.FingerprintService    = (*fakeFingerprint)(nil)
	_ interfaces.RiskLogger            = (*recordingLogger)(nil)
	_ interfaces.PublicationRepository = (*memoryRepo)(nil)
	_ interfaces.PublishLock           = (*memoryLock)(nil)
)
