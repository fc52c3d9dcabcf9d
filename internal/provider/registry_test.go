package provider

import (
	"testing"

	"go.uber.org/zap"
)

func validSettings() Settings {
	return Settings{
		AfricasTalkingUsername: "agribuddy",
		AfricasTalkingAPIKey:   "atsk_live_key",
		TwilioAccountSID:       "AC00000000000000000000000000000000",
		TwilioAuthToken:        "a-token-longer-than-twenty-chars",
		TwilioFromNumber:       "+15550001111",
		MTNAPIKey:              "mtn-key",
		MTNAPISecret:           "mtn-secret",
		AirtelAPIKey:           "airtel-key",
		AirtelAPISecret:        "airtel-secret",
	}
}

func TestNewRegistryBuildsChainInPriorityOrder(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(validSettings(), zap.NewNop())

	if registry.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", registry.Len())
	}

	var names []string
	for _, p := range registry.All() {
		names = append(names, p.Name)
	}

	want := []string{"AfricasTalking", "Twilio", "MTN", "Airtel"}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("chain[%d] = %s, want %s (chain=%v)", i, names[i], name, names)
		}
	}
}

func TestNewRegistrySkipsImplausibleCredentials(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		mutate   func(*Settings)
		excluded string
	}{
		{
			name:     "placeholder africastalking username",
			mutate:   func(s *Settings) { s.AfricasTalkingUsername = "your-username" },
			excluded: "AfricasTalking",
		},
		{
			name:     "twilio sid without AC prefix",
			mutate:   func(s *Settings) { s.TwilioAccountSID = "SK123" },
			excluded: "Twilio",
		},
		{
			name:     "short twilio token",
			mutate:   func(s *Settings) { s.TwilioAuthToken = "short" },
			excluded: "Twilio",
		},
		{
			name:     "missing mtn secret",
			mutate:   func(s *Settings) { s.MTNAPISecret = "" },
			excluded: "MTN",
		},
		{
			name:     "missing airtel key",
			mutate:   func(s *Settings) { s.AirtelAPIKey = "" },
			excluded: "Airtel",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			settings := validSettings()
			tc.mutate(&settings)

			registry := NewRegistry(settings, zap.NewNop())
			if registry.Len() != 3 {
				t.Fatalf("Len() = %d, want 3", registry.Len())
			}
			for _, p := range registry.All() {
				if p.Name == tc.excluded {
					t.Fatalf("provider %s should have been excluded", tc.excluded)
				}
			}
		})
	}
}

func TestProvidersForFiltersByCountry(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(validSettings(), zap.NewNop())

	// Uganda is covered by all four carriers.
	if got := len(registry.ProvidersFor("UG")); got != 4 {
		t.Fatalf("ProvidersFor(UG) = %d providers, want 4", got)
	}

	// Kenya is not in MTN's coverage set; Twilio's wildcard still applies.
	var keNames []string
	for _, p := range registry.ProvidersFor("KE") {
		keNames = append(keNames, p.Name)
	}
	for _, name := range keNames {
		if name == "MTN" {
			t.Fatalf("MTN should not be eligible for KE (got %v)", keNames)
		}
	}

	// An uncovered country falls through to the wildcard provider only.
	us := registry.ProvidersFor("US")
	if len(us) != 1 || us[0].Name != "Twilio" {
		t.Fatalf("ProvidersFor(US) = %v, want only Twilio", us)
	}
}

func TestNewRegistrySandboxSubstitution(t *testing.T) {
	t.Parallel()

	// No credentials, no test mode: empty registry, dispatch must fail fast.
	registry := NewRegistry(Settings{}, zap.NewNop())
	if registry.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", registry.Len())
	}

	// Explicit test mode substitutes the sandbox.
	registry = NewRegistry(Settings{TestMode: true}, zap.NewNop())
	if registry.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", registry.Len())
	}
	if got := registry.All()[0].Name; got != "Sandbox" {
		t.Fatalf("provider = %s, want Sandbox", got)
	}

	// Real credentials win over test mode: sandbox is never added alongside.
	settings := validSettings()
	settings.TestMode = true
	registry = NewRegistry(settings, zap.NewNop())
	for _, p := range registry.All() {
		if p.Name == "Sandbox" {
			t.Fatal("sandbox must not be registered when real carriers exist")
		}
	}
}
