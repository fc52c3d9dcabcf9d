// Package sms implements ordered-fallback SMS dispatch across the
// registered carrier chain, plus batched bulk sending.
package sms

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agribuddy/notify-engine/internal/domain"
	"github.com/agribuddy/notify-engine/internal/observability"
	"github.com/agribuddy/notify-engine/internal/phone"
	"github.com/agribuddy/notify-engine/internal/provider"
	"go.uber.org/zap"
)

// DefaultCountry is assumed when neither the request nor the configured
// defaults name one.
const DefaultCountry = "UG"

// Options carries per-send parameters.
type Options struct {
	Country  string
	SenderID string
	Priority domain.Priority
}

// Dispatcher routes one message through the provider fallback chain.
type Dispatcher struct {
	registry        *provider.Registry
	logger          *zap.Logger
	metrics         *observability.Metrics
	defaultSenderID string
	defaultCountry  string
	now             func() time.Time
}

func NewDispatcher(registry *provider.Registry, logger *zap.Logger) (*Dispatcher, error) {
	if registry == nil {
		return nil, fmt.Errorf("provider registry is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{
		registry:       registry,
		logger:         logger,
		defaultCountry: DefaultCountry,
		now:            time.Now,
	}, nil
}

func (d *Dispatcher) SetMetrics(metrics *observability.Metrics) {
	if d == nil {
		return
	}
	d.metrics = metrics
}

// SetDefaults sets the sender id and country applied to sends that do
// not carry their own.
func (d *Dispatcher) SetDefaults(senderID string, country string) {
	if d == nil {
		return
	}
	d.defaultSenderID = strings.TrimSpace(senderID)
	if c := strings.ToUpper(strings.TrimSpace(country)); c != "" {
		d.defaultCountry = c
	}
}

// Send normalizes the destination, then tries each eligible provider in
// ascending priority order until one succeeds. Providers are tried
// strictly sequentially: a concurrent race would duplicate delivery and
// multiply cost. The first success short-circuits the chain; the error
// wraps domain.ErrAllProvidersFailed only after every eligible provider
// has been tried once.
func (d *Dispatcher) Send(ctx context.Context, destination string, message string, opts Options) (*domain.DispatchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrValidation)
	}

	country := strings.ToUpper(strings.TrimSpace(opts.Country))
	if country == "" {
		country = d.defaultCountry
	}
	senderID := strings.TrimSpace(opts.SenderID)
	if senderID == "" {
		senderID = d.defaultSenderID
	}

	normalized, err := phone.Normalize(destination, country)
	if err != nil {
		d.metrics.IncSMSFailed("invalid_phone_number")
		return nil, err
	}

	eligible := d.registry.ProvidersFor(country)
	if len(eligible) == 0 {
		d.metrics.IncSMSFailed("no_provider_available")
		if d.registry.Len() == 0 {
			return nil, fmt.Errorf("%w: no sms providers configured", domain.ErrNoProviderAvailable)
		}
		return nil, fmt.Errorf("%w: country %s", domain.ErrNoProviderAvailable, country)
	}

	log := observability.WithContextLogger(d.logger, ctx)

	var lastErr error
	for _, candidate := range eligible {
		sendStart := d.now()
		receipt, sendErr := candidate.Transport.Send(ctx, normalized, message, provider.SendOptions{
			SenderID: senderID,
		})
		d.metrics.ObserveProviderSendDuration(candidate.Name, d.now().Sub(sendStart))

		if sendErr == nil && receipt != nil {
			d.metrics.IncSMSSent(candidate.Name)
			log.Info("sms sent",
				zap.String("provider", candidate.Name),
				zap.String("messageId", receipt.MessageID),
				zap.String("cost", receipt.Cost),
			)
			result := domain.SuccessResult(normalized, *receipt)
			return &result, nil
		}

		if sendErr == nil {
			sendErr = fmt.Errorf("provider %s returned empty receipt", candidate.Name)
		}

		// Soft failure: fall through to the next carrier in the chain.
		lastErr = sendErr
		d.metrics.IncSMSFallback(candidate.Name)
		log.Warn("sms provider failed, trying next",
			zap.String("provider", candidate.Name),
			zap.Bool("transient", provider.IsTransient(sendErr)),
			zap.Error(sendErr),
		)

		if ctx.Err() != nil {
			break
		}
	}

	d.metrics.IncSMSFailed("all_providers_failed")
	log.Error("all sms providers failed",
		zap.Int("providersTried", len(eligible)),
		zap.Error(lastErr),
	)
	return nil, fmt.Errorf("%w: %v", domain.ErrAllProvidersFailed, lastErr)
}

// Providers reports the registered chain, for the status endpoint.
func (d *Dispatcher) Providers() []provider.Descriptor {
	if d == nil {
		return nil
	}
	return d.registry.All()
}
