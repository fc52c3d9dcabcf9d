// Package notify is the top-level entry point for multi-channel
// notifications. It gates each channel through the rate limiter, renders
// the named template, and hands off to the channel transport.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agribuddy/notify-engine/internal/domain"
	"github.com/agribuddy/notify-engine/internal/email"
	"github.com/agribuddy/notify-engine/internal/observability"
	"github.com/agribuddy/notify-engine/internal/ratelimit"
	"github.com/agribuddy/notify-engine/internal/sms"
	"github.com/agribuddy/notify-engine/internal/template"
)

// Recipient carries the per-channel addresses for one notification target.
type Recipient struct {
	Name  string
	Phone string
	Email string
}

// Request is one notification to deliver across the requested channels.
type Request struct {
	Recipient Recipient
	Template  string
	Data      map[string]any
	Channels  []domain.Channel
	Country   string
	Priority  domain.Priority
}

// ChannelResult is the terminal outcome of one channel attempt.
type ChannelResult struct {
	Channel   domain.Channel
	Outcome   domain.Outcome
	Provider  string
	MessageID string
	Cost      string
	Error     string
}

// Summary aggregates the per-channel results of one Notify call.
type Summary struct {
	CorrelationID string
	Successful    int
	Failed        int
	Results       []ChannelResult
}

// DeliveryStore persists delivery records. Persistence failures are logged
// and swallowed; the log is an audit trail, not part of the send path.
type DeliveryStore interface {
	Record(ctx context.Context, record *domain.DeliveryRecord) error
}

// ChannelLimits selects which channels are gated by the rate limiter.
// Email is limited by default; SMS is not, because bulk SMS campaigns to
// the same farmer group are a normal operation.
type ChannelLimits struct {
	SMS   bool
	Email bool
}

// DefaultChannelLimits mirrors the historical behavior: email throttled
// per recipient, SMS left to the provider-side back-pressure in the bulk
// dispatcher.
func DefaultChannelLimits() ChannelLimits {
	return ChannelLimits{SMS: false, Email: true}
}

type Orchestrator struct {
	templates  *template.Engine
	dispatcher *sms.Dispatcher
	emails     email.Sender
	limiter    ratelimit.Limiter
	limits     ChannelLimits
	deliveries DeliveryStore
	logger     *zap.Logger
	metrics    *observability.Metrics
	now        func() time.Time
}

func NewOrchestrator(
	templates *template.Engine,
	dispatcher *sms.Dispatcher,
	emails email.Sender,
	limiter ratelimit.Limiter,
	limits ChannelLimits,
	logger *zap.Logger,
) (*Orchestrator, error) {
	if templates == nil {
		return nil, fmt.Errorf("template engine is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("sms dispatcher is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Orchestrator{
		templates:  templates,
		dispatcher: dispatcher,
		emails:     emails,
		limiter:    limiter,
		limits:     limits,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// SetDeliveryStore wires the optional delivery log.
func (o *Orchestrator) SetDeliveryStore(store DeliveryStore) {
	if o == nil {
		return
	}
	o.deliveries = store
}

// SetMetrics wires the optional metrics collectors.
func (o *Orchestrator) SetMetrics(m *observability.Metrics) {
	if o == nil {
		return
	}
	o.metrics = m
}

// Notify delivers one notification across every requested channel. One
// channel failing or being rate limited never blocks the others; the only
// errors returned to the caller are request-level ones such as an unknown
// template name or no valid channel.
func (o *Orchestrator) Notify(ctx context.Context, req Request) (*Summary, error) {
	if o == nil {
		return nil, fmt.Errorf("orchestrator is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	channels, err := normalizeChannels(req.Channels)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Template) == "" {
		return nil, fmt.Errorf("%w: template name is required", domain.ErrValidation)
	}

	// Resolve the template once up front: an unknown name is a caller
	// bug and fails the whole request before any channel is attempted.
	for _, channel := range channels {
		if _, err := o.templates.Render(req.Template, channel, nil); err != nil {
			if errors.Is(err, domain.ErrUnknownTemplate) {
				return nil, err
			}
		}
	}

	correlationID, ok := observability.CorrelationIDFromContext(ctx)
	if !ok || correlationID == "" {
		correlationID = uuid.NewString()
		ctx = observability.WithCorrelationID(ctx, correlationID)
	}

	summary := &Summary{
		CorrelationID: correlationID,
		Results:       make([]ChannelResult, 0, len(channels)),
	}

	for _, channel := range channels {
		result := o.notifyChannel(ctx, channel, req)

		if result.Outcome == domain.OutcomeSent {
			summary.Successful++
			if o.metrics != nil {
				o.metrics.IncNotificationSent(string(channel))
			}
		} else {
			summary.Failed++
			if o.metrics != nil {
				o.metrics.IncNotificationFailed(string(channel), failureReason(result))
			}
		}

		o.recordDelivery(ctx, correlationID, req, result)
		summary.Results = append(summary.Results, result)
	}

	return summary, nil
}

func (o *Orchestrator) notifyChannel(ctx context.Context, channel domain.Channel, req Request) ChannelResult {
	result := ChannelResult{Channel: channel}

	address, err := o.channelAddress(channel, req.Recipient)
	if err != nil {
		result.Outcome = domain.OutcomeFailed
		result.Error = err.Error()
		return result
	}

	if o.rateLimited(ctx, channel, address) {
		o.logger.Warn("notification rate limited",
			zap.String("channel", string(channel)),
			zap.String("recipient", address),
		)
		if o.metrics != nil {
			o.metrics.IncRateLimitRejected(string(channel))
		}
		result.Outcome = domain.OutcomeRateLimited
		result.Error = "rate limit exceeded"
		return result
	}

	rendered, err := o.templates.Render(req.Template, channel, req.Data)
	if err != nil {
		result.Outcome = domain.OutcomeFailed
		result.Error = err.Error()
		return result
	}

	switch channel {
	case domain.ChannelSMS:
		dispatch, err := o.dispatcher.Send(ctx, address, rendered.Text, sms.Options{
			Country:  req.Country,
			Priority: req.Priority,
		})
		if err != nil {
			result.Outcome = domain.OutcomeFailed
			result.Error = err.Error()
			return result
		}
		result.Outcome = domain.OutcomeSent
		result.Provider = dispatch.Provider
		result.MessageID = dispatch.MessageID
		result.Cost = dispatch.Cost

	case domain.ChannelEmail:
		messageID, err := o.emails.SendEmail(ctx, email.Message{
			To:      address,
			Subject: rendered.Subject,
			Body:    rendered.Text,
		})
		if err != nil {
			result.Outcome = domain.OutcomeFailed
			result.Error = err.Error()
			return result
		}
		result.Outcome = domain.OutcomeSent
		result.Provider = "smtp"
		result.MessageID = messageID
		result.Cost = domain.CostUnknown
	}

	o.logger.Info("notification sent",
		zap.String("channel", string(channel)),
		zap.String("recipient", address),
		zap.String("provider", result.Provider),
		zap.String("messageId", result.MessageID),
	)

	return result
}

func (o *Orchestrator) channelAddress(channel domain.Channel, recipient Recipient) (string, error) {
	switch channel {
	case domain.ChannelSMS:
		phone := strings.TrimSpace(recipient.Phone)
		if phone == "" {
			return "", fmt.Errorf("%w: recipient phone is required for sms", domain.ErrValidation)
		}
		return phone, nil
	case domain.ChannelEmail:
		if o.emails == nil {
			return "", fmt.Errorf("email transport is not configured")
		}
		addr := strings.TrimSpace(recipient.Email)
		if addr == "" {
			return "", fmt.Errorf("%w: recipient email is required for email", domain.ErrValidation)
		}
		return addr, nil
	default:
		return "", fmt.Errorf("%w: invalid channel %q", domain.ErrValidation, channel)
	}
}

func (o *Orchestrator) rateLimited(ctx context.Context, channel domain.Channel, address string) bool {
	if o.limiter == nil {
		return false
	}
	switch channel {
	case domain.ChannelSMS:
		if !o.limits.SMS {
			return false
		}
	case domain.ChannelEmail:
		if !o.limits.Email {
			return false
		}
	}

	allowed, err := o.limiter.TryConsume(ctx, address)
	if err != nil {
		// A broken limiter backend fails open: dropping farmer alerts
		// because redis is down is worse than occasionally over-sending.
		o.logger.Error("rate limiter check failed",
			zap.String("channel", string(channel)),
			zap.Error(err),
		)
		return false
	}
	return !allowed
}

func (o *Orchestrator) recordDelivery(ctx context.Context, correlationID string, req Request, result ChannelResult) {
	if o.deliveries == nil {
		return
	}

	recipient := req.Recipient.Phone
	if result.Channel == domain.ChannelEmail {
		recipient = req.Recipient.Email
	}

	record := &domain.DeliveryRecord{
		ID:            uuid.NewString(),
		CorrelationID: correlationID,
		Recipient:     strings.TrimSpace(recipient),
		Channel:       result.Channel,
		Template:      req.Template,
		Provider:      result.Provider,
		MessageID:     result.MessageID,
		Cost:          result.Cost,
		Outcome:       result.Outcome,
		ErrorMessage:  result.Error,
		CreatedAt:     o.now().UTC(),
	}

	if err := o.deliveries.Record(ctx, record); err != nil {
		o.logger.Error("failed to record delivery",
			zap.String("recipient", record.Recipient),
			zap.String("channel", string(record.Channel)),
			zap.Error(err),
		)
	}
}

func normalizeChannels(channels []domain.Channel) ([]domain.Channel, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("%w: at least one channel is required", domain.ErrValidation)
	}

	seen := make(map[domain.Channel]struct{}, len(channels))
	out := make([]domain.Channel, 0, len(channels))
	for _, channel := range channels {
		if !channel.IsValid() {
			return nil, fmt.Errorf("%w: invalid channel %q", domain.ErrValidation, channel)
		}
		if _, ok := seen[channel]; ok {
			continue
		}
		seen[channel] = struct{}{}
		out = append(out, channel)
	}

	return out, nil
}

func failureReason(result ChannelResult) string {
	if result.Outcome == domain.OutcomeRateLimited {
		return "rate_limited"
	}
	return "send_failed"
}
