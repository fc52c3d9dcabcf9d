package observability

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsHandlerExposesCollectors(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.IncSMSSent("AfricasTalking")
	m.IncSMSFallback("AfricasTalking")
	m.IncSMSFailed("all_providers_failed")
	m.ObserveProviderSendDuration("Twilio", 120*time.Millisecond)
	m.IncNotificationSent("email")
	m.IncNotificationFailed("sms", "invalid_phone_number")
	m.IncRateLimitRejected("email")

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	body, err := io.ReadAll(rec.Result().Body)
	if err != nil {
		t.Fatalf("failed to read metrics body: %v", err)
	}
	output := string(body)

	wantSeries := []string{
		`notify_engine_sms_sent_total{provider="africastalking"} 1`,
		`notify_engine_sms_fallback_total{provider="africastalking"} 1`,
		`notify_engine_sms_failed_total{reason="all_providers_failed"} 1`,
		`notify_engine_notifications_sent_total{channel="email"} 1`,
		`notify_engine_notifications_failed_total{channel="sms",reason="invalid_phone_number"} 1`,
		`notify_engine_rate_limit_rejected_total{channel="email"} 1`,
	}
	for _, series := range wantSeries {
		if !strings.Contains(output, series) {
			t.Errorf("metrics output missing series %q", series)
		}
	}

	if !strings.Contains(output, "notify_engine_provider_send_duration_seconds") {
		t.Error("metrics output missing provider send duration histogram")
	}
}

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.IncSMSSent("x")
	m.IncSMSFailed("x")
	m.IncSMSFallback("x")
	m.ObserveProviderSendDuration("x", time.Second)
	m.IncNotificationSent("x")
	m.IncNotificationFailed("x", "y")
	m.IncRateLimitRejected("x")
}
