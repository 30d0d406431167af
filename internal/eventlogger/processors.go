package eventlogger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/segmentio/kafka-go"

	"github.com/akylbek/payment-system/risk-sdk/internal/models"
)

const (
	DefaultTopic   = "risk.sdk.events"
	DefaultSubject = "risk.sdk.events"
)

var loggingEndpoints = map[models.LogEnvironment]string{
	models.LogEnvironmentSandbox:    "https://cloudevents.integration-sandbox.checkout.com/logging",
	models.LogEnvironmentProduction: "https://cloudevents.integration.checkout.com/logging",
}

// HTTPProcessor posts each envelope to the logging endpoint of its environment.
type HTTPProcessor struct {
	url        string
	httpClient *http.Client
}

func NewHTTPProcessor(env models.LogEnvironment, httpClient *http.Client) *HTTPProcessor {
	endpoint, ok := loggingEndpoints[env]
	if !ok {
		endpoint = loggingEndpoints[models.LogEnvironmentSandbox]
	}
	return NewHTTPProcessorWithURL(endpoint, httpClient)
}

func NewHTTPProcessorWithURL(url string, httpClient *http.Client) *HTTPProcessor {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPProcessor{url: url, httpClient: httpClient}
}

func (p *HTTPProcessor) Name() string { return "http" }

func (p *HTTPProcessor) Process(ctx context.Context, envelope Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/cloudevents+json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("logging endpoint returned %d", resp.StatusCode)
	}
	return nil
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaProcessor writes envelopes to a Kafka topic keyed by source.
type KafkaProcessor struct {
	writer messageWriter
}

func NewKafkaProcessor(writer messageWriter) *KafkaProcessor {
	return &KafkaProcessor{writer: writer}
}

// NewKafkaWriter builds the writer the way the host service configures it.
func NewKafkaWriter(brokers string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(brokers),
		Topic:    DefaultTopic,
		Balancer: &kafka.LeastBytes{},
	}
}

func (p *KafkaProcessor) Name() string { return "kafka" }

func (p *KafkaProcessor) Process(ctx context.Context, envelope Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(envelope.Source),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "ce_type", Value: []byte(envelope.Type)},
			{Key: "ce_id", Value: []byte(envelope.ID)},
		},
	})
}

type subjectPublisher interface {
	Publish(subject string, data []byte) error
}

// NATSProcessor publishes envelopes on a NATS subject.
type NATSProcessor struct {
	conn    subjectPublisher
	subject string
}

func NewNATSProcessor(conn subjectPublisher, subject string) *NATSProcessor {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSProcessor{conn: conn, subject: subject}
}

func (p *NATSProcessor) Name() string { return "nats" }

func (p *NATSProcessor) Process(_ context.Context, envelope Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	return p.conn.Publish(p.subject+"."+string(envelope.Data.Level), payload)
}
