package provider

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Settings is the credential surface probed when building the registry,
// read once at startup and passed down explicitly.
type Settings struct {
	AfricasTalkingUsername string
	AfricasTalkingAPIKey   string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	MTNAPIKey    string
	MTNAPISecret string
	MTNAPIURL    string

	AirtelAPIKey    string
	AirtelAPISecret string
	AirtelAPIURL    string

	// TestMode substitutes the sandbox provider when no real carrier is
	// configured, keeping a uniform path for tests and demos.
	TestMode bool
}

// Registry holds the ordered carrier fallback chain. Built once at process
// start; read-only afterwards.
type Registry struct {
	providers []Descriptor
}

// NewRegistry probes the settings for each known carrier and includes a
// provider only when its credentials are present and syntactically
// plausible. The result is sorted ascending by priority.
func NewRegistry(settings Settings, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}

	var providers []Descriptor

	if hasAfricasTalkingCredentials(settings) {
		p, err := NewAfricasTalkingProvider(settings.AfricasTalkingUsername, settings.AfricasTalkingAPIKey)
		if err != nil {
			logger.Warn("africastalking initialization failed", zap.Error(err))
		} else {
			providers = append(providers, Descriptor{
				Name:      africasTalkingName,
				Priority:  1,
				Countries: africasTalkingCountries,
				Transport: p,
			})
			logger.Info("sms provider initialized", zap.String("provider", africasTalkingName))
		}
	}

	if hasTwilioCredentials(settings) {
		p, err := NewTwilioProvider(settings.TwilioAccountSID, settings.TwilioAuthToken, settings.TwilioFromNumber)
		if err != nil {
			logger.Warn("twilio initialization failed", zap.Error(err))
		} else {
			providers = append(providers, Descriptor{
				Name:      twilioName,
				Priority:  2,
				Countries: []string{CountryWildcard},
				Transport: p,
			})
			logger.Info("sms provider initialized", zap.String("provider", twilioName))
		}
	}

	if settings.MTNAPIKey != "" && settings.MTNAPISecret != "" {
		p, err := NewMTNProvider(settings.MTNAPIKey, settings.MTNAPIURL)
		if err != nil {
			logger.Warn("mtn initialization failed", zap.Error(err))
		} else {
			providers = append(providers, Descriptor{
				Name:      mtnName,
				Priority:  3,
				Countries: mtnCountries,
				Transport: p,
			})
			logger.Info("sms provider initialized", zap.String("provider", mtnName))
		}
	}

	if settings.AirtelAPIKey != "" && settings.AirtelAPISecret != "" {
		p, err := NewAirtelProvider(settings.AirtelAPIKey, settings.AirtelAPIURL)
		if err != nil {
			logger.Warn("airtel initialization failed", zap.Error(err))
		} else {
			providers = append(providers, Descriptor{
				Name:      airtelName,
				Priority:  4,
				Countries: airtelCountries,
				Transport: p,
			})
			logger.Info("sms provider initialized", zap.String("provider", airtelName))
		}
	}

	if len(providers) == 0 && settings.TestMode {
		providers = append(providers, Descriptor{
			Name:      sandboxName,
			Priority:  999,
			Countries: []string{CountryWildcard},
			Transport: NewSandboxProvider(),
		})
		logger.Info("sandbox sms provider initialized (test mode)")
	}

	sort.SliceStable(providers, func(i, j int) bool {
		return providers[i].Priority < providers[j].Priority
	})

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name)
	}
	logger.Info("sms provider registry built",
		zap.Int("providers", len(providers)),
		zap.String("chain", strings.Join(names, ",")),
	)

	return &Registry{providers: providers}
}

// NewRegistryFromDescriptors builds a registry from pre-built descriptors,
// sorted ascending by priority. Intended for custom wiring and tests.
func NewRegistryFromDescriptors(descriptors ...Descriptor) *Registry {
	sorted := make([]Descriptor, len(descriptors))
	copy(sorted, descriptors)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return &Registry{providers: sorted}
}

// ProvidersFor returns the fallback chain for one destination country:
// providers supporting the country or the wildcard, ascending priority.
func (r *Registry) ProvidersFor(country string) []Descriptor {
	if r == nil {
		return nil
	}

	country = strings.ToUpper(strings.TrimSpace(country))

	var eligible []Descriptor
	for _, p := range r.providers {
		if p.SupportsCountry(country) {
			eligible = append(eligible, p)
		}
	}
	return eligible
}

// All returns every registered provider in priority order.
func (r *Registry) All() []Descriptor {
	if r == nil {
		return nil
	}
	out := make([]Descriptor, len(r.providers))
	copy(out, r.providers)
	return out
}

// Len reports the number of registered providers.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.providers)
}

func hasAfricasTalkingCredentials(s Settings) bool {
	return s.AfricasTalkingUsername != "" && s.AfricasTalkingAPIKey != "" &&
		s.AfricasTalkingUsername != "your-username" && s.AfricasTalkingAPIKey != "your-api-key"
}

func hasTwilioCredentials(s Settings) bool {
	return strings.HasPrefix(s.TwilioAccountSID, "AC") && len(s.TwilioAuthToken) > 20
}
