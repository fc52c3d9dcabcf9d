package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/agribuddy/notify-engine/internal/domain"
	"github.com/agribuddy/notify-engine/internal/queue"
)

type fakeScheduleStore struct {
	mu       sync.Mutex
	due      []domain.ScheduledMessage
	dueErr   error
	queued   []string
	released []string
	mark     map[string]bool
}

func (f *fakeScheduleStore) GetDue(_ context.Context, _ int) ([]domain.ScheduledMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dueErr != nil {
		return nil, f.dueErr
	}
	due := f.due
	f.due = nil
	return due, nil
}

func (f *fakeScheduleStore) MarkQueued(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queued = append(f.queued, id)
	if f.mark == nil {
		return true, nil
	}
	return f.mark[id], nil
}

func (f *fakeScheduleStore) MarkPending(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, id)
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []queue.NotificationMessage
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, msg queue.NotificationMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func scheduledWeatherMessage(id string) domain.ScheduledMessage {
	return domain.ScheduledMessage{
		ID:             id,
		RecipientName:  "Okello James",
		RecipientPhone: "0700123456",
		Template:       "weather_alert",
		Data:           map[string]any{"condition": "Heavy Rain", "location": "Gulu"},
		Channels:       []domain.Channel{domain.ChannelSMS},
		Country:        "UG",
		Priority:       domain.PriorityHigh,
		SendAt:         time.Now().Add(-time.Minute),
		Status:         domain.SchedulePending,
	}
}

func TestSchedulerScanPublishesDueMessages(t *testing.T) {
	t.Parallel()

	store := &fakeScheduleStore{
		due: []domain.ScheduledMessage{
			scheduledWeatherMessage("sched-1"),
			scheduledWeatherMessage("sched-2"),
		},
	}
	publisher := &fakePublisher{}

	scheduler, err := NewScheduler(store, publisher, time.Minute, 100, zap.NewNop())
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	if err := scheduler.scanDue(context.Background()); err != nil {
		t.Fatalf("scanDue() error = %v", err)
	}

	if len(publisher.messages) != 2 {
		t.Fatalf("published %d messages, want 2", len(publisher.messages))
	}
	if publisher.messages[0].MessageID != "sched-1" {
		t.Errorf("MessageID = %q, want %q", publisher.messages[0].MessageID, "sched-1")
	}
	if publisher.messages[0].Template != "weather_alert" {
		t.Errorf("Template = %q, want %q", publisher.messages[0].Template, "weather_alert")
	}
	if len(store.queued) != 2 {
		t.Fatalf("marked %d messages queued, want 2", len(store.queued))
	}
}

func TestSchedulerScanReleasesClaimOnPublishFailure(t *testing.T) {
	t.Parallel()

	store := &fakeScheduleStore{
		due: []domain.ScheduledMessage{scheduledWeatherMessage("sched-1")},
	}
	publisher := &fakePublisher{err: errors.New("broker gone")}

	scheduler, err := NewScheduler(store, publisher, time.Minute, 100, zap.NewNop())
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	if err := scheduler.scanDue(context.Background()); err != nil {
		t.Fatalf("scanDue() error = %v", err)
	}

	if len(publisher.messages) != 0 {
		t.Fatalf("published %d messages, want 0", len(publisher.messages))
	}
	if len(store.released) != 1 || store.released[0] != "sched-1" {
		t.Fatalf("released = %v, want the claim put back to pending", store.released)
	}
}

func TestSchedulerScanSkipsMessagesClaimedElsewhere(t *testing.T) {
	t.Parallel()

	store := &fakeScheduleStore{
		due:  []domain.ScheduledMessage{scheduledWeatherMessage("sched-1")},
		mark: map[string]bool{"sched-1": false},
	}
	publisher := &fakePublisher{}

	scheduler, err := NewScheduler(store, publisher, time.Minute, 100, zap.NewNop())
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	if err := scheduler.scanDue(context.Background()); err != nil {
		t.Fatalf("scanDue() error = %v", err)
	}

	if len(publisher.messages) != 0 {
		t.Fatalf("published %d messages, want 0 for a message claimed by another scan", len(publisher.messages))
	}
}

func TestSchedulerScanPropagatesStoreError(t *testing.T) {
	t.Parallel()

	store := &fakeScheduleStore{dueErr: errors.New("db down")}

	scheduler, err := NewScheduler(store, &fakePublisher{}, time.Minute, 100, zap.NewNop())
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	if err := scheduler.scanDue(context.Background()); err == nil {
		t.Fatal("scanDue() error = nil, want store error")
	}
}

func TestSchedulerStartStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	store := &fakeScheduleStore{}
	scheduler, err := NewScheduler(store, &fakePublisher{}, 10*time.Millisecond, 100, zap.NewNop())
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- scheduler.Start(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Start() did not return after context cancellation")
	}
}

func TestNewSchedulerValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewScheduler(nil, &fakePublisher{}, time.Minute, 10, zap.NewNop()); err == nil {
		t.Error("NewScheduler(nil store) error = nil, want error")
	}
	if _, err := NewScheduler(&fakeScheduleStore{}, nil, time.Minute, 10, zap.NewNop()); err == nil {
		t.Error("NewScheduler(nil publisher) error = nil, want error")
	}
}
