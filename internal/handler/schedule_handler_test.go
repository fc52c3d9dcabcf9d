package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/agribuddy/notify-engine/internal/domain"
	"github.com/agribuddy/notify-engine/internal/template"
	"github.com/agribuddy/notify-engine/internal/transport"
)

type fakeScheduleRepo struct {
	mu      sync.Mutex
	created []domain.ScheduledMessage
	byID    map[string]domain.ScheduledMessage
}

func (f *fakeScheduleRepo) Create(_ context.Context, msg *domain.ScheduledMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, *msg)
	return nil
}

func (f *fakeScheduleRepo) GetByID(_ context.Context, id string) (*domain.ScheduledMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &msg, nil
}

func (f *fakeScheduleRepo) GetDue(_ context.Context, _ int) ([]domain.ScheduledMessage, error) {
	return nil, nil
}

func (f *fakeScheduleRepo) MarkQueued(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func (f *fakeScheduleRepo) MarkPending(_ context.Context, _ string) error {
	return nil
}

func newScheduleTestApp(t *testing.T) (*fiber.App, *fakeScheduleRepo) {
	t.Helper()

	engine, err := template.NewEngine(template.Defaults())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	repo := &fakeScheduleRepo{byID: map[string]domain.ScheduledMessage{}}
	scheduleHandler, err := NewScheduleHandler(repo, engine.Names())
	if err != nil {
		t.Fatalf("NewScheduleHandler() error = %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(zap.NewNop()),
	})
	scheduleHandler.Register(app)

	return app, repo
}

func TestScheduleNotificationStoresPendingMessage(t *testing.T) {
	t.Parallel()

	app, repo := newScheduleTestApp(t)
	sendAt := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)

	body := fmt.Sprintf(`{
		"recipient": {"name": "Okello James", "phone": "0700123456"},
		"template": "planting_reminder",
		"data": {"cropName": "maize"},
		"channels": ["sms"],
		"country": "UG",
		"sendAt": %q
	}`, sendAt.Format(time.RFC3339))

	resp, respBody := performRequest(t, app, http.MethodPost, "/v1/notifications/schedule", body)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want %d: %s", resp.StatusCode, http.StatusAccepted, respBody)
	}

	var payload scheduledMessagePayload
	if err := json.Unmarshal(respBody, &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.ID == "" {
		t.Error("response id is empty")
	}
	if payload.Status != string(domain.SchedulePending) {
		t.Errorf("status = %q, want %q", payload.Status, domain.SchedulePending)
	}

	if len(repo.created) != 1 {
		t.Fatalf("stored %d messages, want 1", len(repo.created))
	}
	stored := repo.created[0]
	if !stored.SendAt.Equal(sendAt) {
		t.Errorf("SendAt = %v, want %v", stored.SendAt, sendAt)
	}
	if stored.Template != "planting_reminder" {
		t.Errorf("Template = %q, want %q", stored.Template, "planting_reminder")
	}
}

func TestScheduleNotificationValidation(t *testing.T) {
	t.Parallel()

	futureSendAt := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)

	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing sendAt",
			body: `{"recipient": {"phone": "0700123456"}, "template": "weather_alert", "channels": ["sms"]}`,
		},
		{
			name: "malformed sendAt",
			body: `{"recipient": {"phone": "0700123456"}, "template": "weather_alert", "channels": ["sms"], "sendAt": "tomorrow at noon"}`,
		},
		{
			name: "unknown template",
			body: fmt.Sprintf(`{"recipient": {"phone": "0700123456"}, "template": "no_such_template", "channels": ["sms"], "sendAt": %q}`, futureSendAt),
		},
		{
			name: "no recipient address",
			body: fmt.Sprintf(`{"recipient": {"name": "Okello James"}, "template": "weather_alert", "channels": ["sms"], "sendAt": %q}`, futureSendAt),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, repo := newScheduleTestApp(t)

			resp, _ := performRequest(t, app, http.MethodPost, "/v1/notifications/schedule", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
			}
			if len(repo.created) != 0 {
				t.Errorf("stored %d messages, want 0", len(repo.created))
			}
		})
	}
}

func TestGetScheduledNotification(t *testing.T) {
	t.Parallel()

	app, repo := newScheduleTestApp(t)
	repo.byID["sched-1"] = domain.ScheduledMessage{
		ID:       "sched-1",
		Template: "weather_alert",
		Channels: []domain.Channel{domain.ChannelSMS},
		SendAt:   time.Now().Add(time.Hour).UTC(),
		Status:   domain.SchedulePending,
	}

	resp, respBody := performRequest(t, app, http.MethodGet, "/v1/notifications/schedule/sched-1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var payload scheduledMessagePayload
	if err := json.Unmarshal(respBody, &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.ID != "sched-1" {
		t.Errorf("id = %q, want %q", payload.ID, "sched-1")
	}

	resp, _ = performRequest(t, app, http.MethodGet, "/v1/notifications/schedule/missing", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}
