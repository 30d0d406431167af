package models

import "time"

type RiskEvent string

const (
	EventPublishDisabled RiskEvent = "riskDataPublishDisabled"
	EventPublished       RiskEvent = "riskDataPublished"
	EventPublishFailure  RiskEvent = "riskDataPublishFailure"
	EventCollected       RiskEvent = "riskDataCollected"
	EventLoadFailure     RiskEvent = "riskLoadFailure"
)

type MonitoringLevel string

const (
	LevelDebug MonitoringLevel = "debug"
	LevelInfo  MonitoringLevel = "info"
	LevelWarn  MonitoringLevel = "warn"
	LevelError MonitoringLevel = "error"
)

// Level is the fixed severity of each risk event.
func (e RiskEvent) Level() MonitoringLevel {
	switch e {
	case EventPublished, EventCollected:
		return LevelInfo
	case EventPublishFailure, EventLoadFailure:
		return LevelError
	case EventPublishDisabled:
		return LevelWarn
	}
	return LevelDebug
}

// IsFailure reports whether the event carries error properties instead of ids.
func (e RiskEvent) IsFailure() bool {
	switch e {
	case EventPublishFailure, EventLoadFailure, EventPublishDisabled:
		return true
	}
	return false
}

// LogError describes what went wrong in a failure event.
type LogError struct {
	Reason             string // service method
	Message            string
	Status             *int
	Type               string
	InnerExceptionType string
}

// Timings are step latencies in milliseconds. Nil means the step did not run.
type Timings struct {
	Block             *float64
	DeviceDataPersist *float64
	FpLoad            *float64
	FpPublish         *float64
}

// Total sums the steps that ran.
func (t Timings) Total() float64 {
	var total float64
	for _, v := range []*float64{t.Block, t.DeviceDataPersist, t.FpLoad, t.FpPublish} {
		if v != nil {
			total += *v
		}
	}
	return total
}

// Millis converts a duration to the millisecond form used in Timings.
func Millis(d time.Duration) *float64 {
	ms := float64(d) / float64(time.Millisecond)
	return &ms
}

type LogEntry struct {
	Event           RiskEvent
	Timings         Timings
	DeviceSessionID string
	RequestID       string
	Error           *LogError
}

// Event is the unit handed to the event logger.
type Event struct {
	MonitoringLevel MonitoringLevel
	Properties      map[string]any
	Time            time.Time
	TypeIdentifier  string
}
