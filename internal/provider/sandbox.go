package provider

import (
	"context"
	"sync"
	"time"

	"github.com/agribuddy/notify-engine/internal/domain"
	"github.com/google/uuid"
)

const sandboxName = "Sandbox"

// SandboxMessage is one message recorded by the sandbox provider.
type SandboxMessage struct {
	To       string
	Message  string
	SenderID string
	SentAt   time.Time
}

// SandboxProvider records messages in memory and always succeeds. It is
// substituted only when test mode is explicitly enabled and no real
// carrier credentials exist, never as an implicit production fallback.
type SandboxProvider struct {
	mu       sync.Mutex
	messages []SandboxMessage
	now      func() time.Time
}

func NewSandboxProvider() *SandboxProvider {
	return &SandboxProvider{now: time.Now}
}

func (p *SandboxProvider) Name() string { return sandboxName }

func (p *SandboxProvider) Send(ctx context.Context, to string, message string, opts SendOptions) (*domain.DeliveryReceipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.messages = append(p.messages, SandboxMessage{
		To:       to,
		Message:  message,
		SenderID: opts.SenderID,
		SentAt:   p.now().UTC(),
	})
	p.mu.Unlock()

	return &domain.DeliveryReceipt{
		Provider:  sandboxName,
		MessageID: "sandbox-" + uuid.NewString(),
		Cost:      "FREE",
		Status:    "delivered",
	}, nil
}

// Messages returns a copy of everything recorded so far.
func (p *SandboxProvider) Messages() []SandboxMessage {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]SandboxMessage, len(p.messages))
	copy(out, p.messages)
	return out
}
