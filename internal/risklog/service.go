// Package risklog turns risk events into event-logger events: a fixed
// severity per kind, a latency breakdown, a masked key and deployment tags.
package risklog

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/akylbek/payment-system/risk-sdk/internal/interfaces"
	"github.com/akylbek/payment-system/risk-sdk/internal/models"
	"github.com/akylbek/payment-system/risk-sdk/internal/telemetry"
)

const (
	ProductName       = "risk-sdk-go"
	ProductIdentifier = "com.checkout.risk"
	TypeIdentifier    = "com.checkout.risk-sdk-go"
)

type Service struct {
	cfg  models.InternalConfig
	sink interfaces.EventSink
	now  func() time.Time
}

func NewService(cfg models.InternalConfig, sink interfaces.EventSink) *Service {
	return &Service{cfg: cfg, sink: sink, now: time.Now}
}

func (s *Service) Log(ctx context.Context, entry models.LogEntry) {
	telemetry.RiskEventsTotal.WithLabelValues(string(entry.Event)).Inc()
	observeTimings(entry.Timings)

	s.sink.LogEvent(ctx, models.Event{
		MonitoringLevel: entry.Event.Level(),
		Properties:      s.properties(entry),
		Time:            s.now(),
		TypeIdentifier:  TypeIdentifier,
	})
}

func (s *Service) properties(entry models.LogEntry) map[string]any {
	props := map[string]any{
		"Total":           entry.Timings.Total(),
		"EventType":       string(entry.Event),
		"FramesMode":      s.cfg.FramesMode,
		"MaskedPublicKey": MaskPublicKey(s.cfg.MerchantPublicKey),
		"ddTags":          DDTags(s.cfg.Environment),
		"RiskSDKVersion":  telemetry.SDKVersion,
		"Timezone":        zoneName(s.now()),
	}
	putFloat(props, "Block", entry.Timings.Block)
	putFloat(props, "DeviceDataPersist", entry.Timings.DeviceDataPersist)
	putFloat(props, "FpLoad", entry.Timings.FpLoad)
	putFloat(props, "FpPublish", entry.Timings.FpPublish)
	putString(props, "CorrelationId", s.cfg.CorrelationID)

	if !entry.Event.IsFailure() {
		putString(props, "FpRequestId", entry.RequestID)
		putString(props, "DeviceSessionId", entry.DeviceSessionID)
		return props
	}

	if e := entry.Error; e != nil {
		putString(props, "ErrorMessage", e.Message)
		putString(props, "ErrorType", e.Type)
		putString(props, "ErrorReason", e.Reason)
		putString(props, "InnerExceptionType", e.InnerExceptionType)
		if e.Status != nil {
			props["ErrorStatus"] = *e.Status
		}
	}
	return props
}

// MaskPublicKey keeps the first 8 and last 6 characters.
func MaskPublicKey(key string) string {
	runes := []rune(key)
	head, tail := runes, runes
	if len(head) > 8 {
		head = head[:8]
	}
	if len(tail) > 6 {
		tail = tail[len(tail)-6:]
	}
	return string(head) + strings.Repeat("*", 8) + string(tail)
}

// zoneName reports the IANA zone id, e.g. Europe/London, falling back to
// the abbreviation when the local zone has no known id.
func zoneName(t time.Time) string {
	if name := t.Location().String(); name != "Local" {
		return name
	}
	if id := localZoneID(); id != "" {
		return id
	}
	abbr, _ := t.Zone()
	return abbr
}

var localZoneID = sync.OnceValue(func() string {
	tz, set := os.LookupEnv("TZ")
	return zoneIDFrom(tz, set, os.Readlink)
})

// zoneIDFrom follows the lookup order of the time package: TZ first, then
// the /etc/localtime symlink into the zoneinfo tree.
func zoneIDFrom(tz string, tzSet bool, readlink func(string) (string, error)) string {
	if tzSet {
		tz = strings.TrimPrefix(tz, ":")
		switch {
		case tz == "" || tz == "UTC":
			return "UTC"
		case strings.Contains(tz, "zoneinfo/"):
			return tz[strings.Index(tz, "zoneinfo/")+len("zoneinfo/"):]
		case strings.HasPrefix(tz, "/"):
			return ""
		}
		return tz
	}

	target, err := readlink("/etc/localtime")
	if err != nil {
		return ""
	}
	if i := strings.Index(target, "zoneinfo/"); i >= 0 {
		return target[i+len("zoneinfo/"):]
	}
	return ""
}

func DDTags(env models.Environment) string {
	return fmt.Sprintf("team:prism,service:prism.risk.go,version:%s,env:%s", telemetry.SDKVersion, env.Name())
}

func putString(props map[string]any, key, value string) {
	if value != "" {
		props[key] = value
	}
}

func putFloat(props map[string]any, key string, value *float64) {
	if value != nil {
		props[key] = *value
	}
}

func observeTimings(t models.Timings) {
	for step, v := range map[string]*float64{
		"block":               t.Block,
		"device_data_persist": t.DeviceDataPersist,
		"fp_load":             t.FpLoad,
		"fp_publish":          t.FpPublish,
	} {
		if v != nil {
			telemetry.StepDuration.WithLabelValues(step).Observe(*v)
		}
	}
}
