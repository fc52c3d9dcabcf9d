package email

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var _ Sender = (*MockSender)(nil)

// MockSender records messages instead of delivering them. Used in tests
// and when email is disabled in local development.
type MockSender struct {
	mu       sync.Mutex
	messages []Message
	fail     error
}

func NewMockSender() *MockSender {
	return &MockSender{}
}

// FailWith makes every subsequent SendEmail return err.
func (m *MockSender) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

func (m *MockSender) SendEmail(_ context.Context, msg Message) (string, error) {
	if m == nil {
		return "", fmt.Errorf("mock sender is not initialized")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail != nil {
		return "", m.fail
	}

	m.messages = append(m.messages, msg)
	return "mock-" + uuid.NewString(), nil
}

// Messages returns a copy of everything recorded so far.
func (m *MockSender) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}
