package provider

import (
	"context"

	"github.com/agribuddy/notify-engine/internal/domain"
)

// CountryWildcard marks a provider that can deliver to any country.
const CountryWildcard = "*"

// SendOptions carries per-send parameters common to all carriers.
type SendOptions struct {
	SenderID string
}

// Provider is the outbound SMS delivery port. One implementation per
// external carrier. Send must be bounded by the adapter's own timeout;
// a retried send may duplicate delivery, which is accepted.
type Provider interface {
	Name() string
	Send(ctx context.Context, to string, message string, opts SendOptions) (*domain.DeliveryReceipt, error)
}

// Descriptor pairs a transport with its routing metadata. Descriptors are
// immutable after registry construction.
type Descriptor struct {
	Name      string
	Priority  int
	Countries []string
	Transport Provider
}

// SupportsCountry reports whether the provider covers the given ISO
// country code, either explicitly or via the wildcard.
func (d Descriptor) SupportsCountry(country string) bool {
	for _, c := range d.Countries {
		if c == CountryWildcard || c == country {
			return true
		}
	}
	return false
}
