// Package eventlogger is a small product event logger with an optional local
// zap processor and one remote processor. Remote delivery is best effort: events
// are queued and sent by a single worker, and a full queue drops the event.
package eventlogger

import (
	"context"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/akylbek/payment-system/risk-sdk/internal/models"
	"github.com/akylbek/payment-system/risk-sdk/internal/telemetry"
)

const (
	specVersion = "1.0"

	defaultQueueSize   = 256
	defaultSendTimeout = 10 * time.Second
)

// RemoteProcessorMetadata describes the emitting product and host.
type RemoteProcessorMetadata struct {
	ProductName       string `json:"productName"`
	ProductIdentifier string `json:"productIdentifier"`
	ProductVersion    string `json:"productVersion"`
	Environment       string `json:"environment"`
	OSName            string `json:"osName"`
	Arch              string `json:"arch"`
	GoVersion         string `json:"goVersion"`
	Hostname          string `json:"hostname,omitempty"`
}

func RemoteProcessorMetadataFrom(environment, identifier, version string) RemoteProcessorMetadata {
	hostname, _ := os.Hostname()
	return RemoteProcessorMetadata{
		ProductIdentifier: identifier,
		ProductVersion:    version,
		Environment:       environment,
		OSName:            runtime.GOOS,
		Arch:              runtime.GOARCH,
		GoVersion:         runtime.Version(),
		Hostname:          hostname,
	}
}

type Envelope struct {
	SpecVersion string       `json:"specversion"`
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	Source      string       `json:"source"`
	Time        time.Time    `json:"time"`
	Data        EnvelopeData `json:"data"`
}

type EnvelopeData struct {
	Level      models.MonitoringLevel  `json:"level"`
	Properties map[string]any          `json:"properties"`
	Metadata   RemoteProcessorMetadata `json:"metadata"`
}

// Processor delivers envelopes to a remote backend.
type Processor interface {
	Name() string
	Process(ctx context.Context, envelope Envelope) error
}

type delivery struct {
	ctx       context.Context
	processor Processor
	envelope  Envelope
	flushed   chan struct{}
}

type Logger struct {
	productName string
	newID       func() string
	queueSize   int
	sendTimeout time.Duration

	mu         sync.RWMutex
	local      *zap.Logger
	localLevel zapcore.Level
	remote     Processor
	metadata   RemoteProcessorMetadata
	queue      chan delivery
	done       chan struct{}
	closed     bool
}

func New(productName string) *Logger {
	return &Logger{
		productName: productName,
		newID:       uuid.NewString,
		queueSize:   defaultQueueSize,
		sendTimeout: defaultSendTimeout,
	}
}

// EnableLocalProcessor mirrors events at or above level to logger.
func (l *Logger) EnableLocalProcessor(level models.MonitoringLevel, logger *zap.Logger) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.local = logger
	l.localLevel = zapLevel(level)
}

func (l *Logger) EnableRemoteProcessor(metadata RemoteProcessorMetadata, processor Processor) {
	metadata.ProductName = l.productName
	l.mu.Lock()
	defer l.mu.Unlock()
	l.metadata = metadata
	l.remote = processor
	if l.queue == nil && !l.closed {
		l.queue = make(chan delivery, l.queueSize)
		l.done = make(chan struct{})
		go l.run(l.queue, l.done)
	}
}

// LogEvent writes event to the local processor and queues it for the remote
// one. It never blocks on the remote backend. Remote failures and drops are
// counted and logged at debug, never returned.
func (l *Logger) LogEvent(ctx context.Context, event models.Event) {
	l.mu.RLock()
	local, localLevel := l.local, l.localLevel
	remote, metadata := l.remote, l.metadata
	l.mu.RUnlock()

	if event.Time.IsZero() {
		event.Time = time.Now()
	}

	if local != nil {
		if lvl := zapLevel(event.MonitoringLevel); lvl >= localLevel {
			if ce := local.Check(lvl, event.TypeIdentifier); ce != nil {
				ce.Write(
					zap.String("product", l.productName),
					zap.Time("time", event.Time),
					zap.Any("properties", event.Properties),
				)
			}
		}
	}

	if remote == nil {
		return
	}

	envelope := Envelope{
		SpecVersion: specVersion,
		ID:          l.newID(),
		Type:        event.TypeIdentifier,
		Source:      metadata.ProductIdentifier,
		Time:        event.Time.UTC(),
		Data: EnvelopeData{
			Level:      event.MonitoringLevel,
			Properties: event.Properties,
			Metadata:   metadata,
		},
	}
	if !l.enqueue(delivery{ctx: ctx, processor: remote, envelope: envelope}) {
		telemetry.EventSinkFailuresTotal.WithLabelValues(remote.Name()).Inc()
		telemetry.Logger.Debug("Event logger queue full or closed, event dropped",
			zap.String("processor", remote.Name()),
			zap.String("event_id", envelope.ID),
		)
	}
}

func (l *Logger) enqueue(d delivery) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed || l.queue == nil {
		return false
	}
	select {
	case l.queue <- d:
		return true
	default:
		return false
	}
}

// Flush waits until every event queued before the call has been handed to
// the remote processor.
func (l *Logger) Flush(ctx context.Context) error {
	flushed := make(chan struct{})

	l.mu.RLock()
	if l.closed || l.queue == nil {
		l.mu.RUnlock()
		return nil
	}
	select {
	case l.queue <- delivery{flushed: flushed}:
	case <-ctx.Done():
		l.mu.RUnlock()
		return ctx.Err()
	}
	l.mu.RUnlock()

	select {
	case <-flushed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting remote events and waits for the queued ones to be
// delivered or for ctx to end. Later events are dropped.
func (l *Logger) Close(ctx context.Context) error {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		if l.queue != nil {
			close(l.queue)
		}
	}
	done := l.done
	l.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Logger) run(queue <-chan delivery, done chan<- struct{}) {
	defer close(done)
	for d := range queue {
		if d.flushed != nil {
			close(d.flushed)
			continue
		}
		l.deliver(d)
	}
}

// deliver sends on a context detached from the caller's cancellation, so an
// event describing a timed-out request still goes out.
func (l *Logger) deliver(d delivery) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(d.ctx), l.sendTimeout)
	defer cancel()

	if err := d.processor.Process(ctx, d.envelope); err != nil {
		telemetry.EventSinkFailuresTotal.WithLabelValues(d.processor.Name()).Inc()
		telemetry.Logger.Debug("Event logger remote processor failed",
			zap.String("processor", d.processor.Name()),
			zap.String("event_id", d.envelope.ID),
			zap.Error(err),
		)
	}
}

func zapLevel(level models.MonitoringLevel) zapcore.Level {
	switch level {
	case models.LevelDebug:
		return zapcore.DebugLevel
	case models.LevelWarn:
		return zapcore.WarnLevel
	case models.LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
