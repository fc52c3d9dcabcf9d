package phone

import (
	"errors"
	"testing"

	"github.com/agribuddy/notify-engine/internal/domain"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		raw     string
		country string
		want    string
		wantErr bool
	}{
		{name: "uganda with trunk zero", raw: "0700123456", country: "UG", want: "+256700123456"},
		{name: "uganda bare local number", raw: "700123456", country: "UG", want: "+256700123456"},
		{name: "uganda already international", raw: "+256700123456", country: "UG", want: "+256700123456"},
		{name: "uganda with spaces and dashes", raw: "0700-123 456", country: "UG", want: "+256700123456"},
		{name: "kenya with trunk zero", raw: "0712345678", country: "KE", want: "+254712345678"},
		{name: "tanzania valid prefix", raw: "0712345678", country: "TZ", want: "+255712345678"},
		{name: "tanzania invalid prefix 72", raw: "0721234567", country: "TZ", wantErr: true},
		{name: "too short", raw: "123", country: "UG", wantErr: true},
		{name: "too long", raw: "07001234567890", country: "UG", wantErr: true},
		{name: "no digits", raw: "not-a-number", country: "UG", wantErr: true},
		{name: "empty input", raw: "", country: "UG", wantErr: true},
		{name: "unknown country is permissive", raw: "447911123456", country: "GB", want: "+447911123456"},
		{name: "country code lowercased", raw: "0700123456", country: "ug", want: "+256700123456"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Normalize(tc.raw, tc.country)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Normalize(%q, %q) = %q, want error", tc.raw, tc.country, got)
				}
				if !errors.Is(err, domain.ErrInvalidPhoneNumber) {
					t.Fatalf("error = %v, want ErrInvalidPhoneNumber", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Normalize(%q, %q) error = %v", tc.raw, tc.country, err)
			}
			if got != tc.want {
				t.Fatalf("Normalize(%q, %q) = %q, want %q", tc.raw, tc.country, got, tc.want)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	t.Parallel()

	first, err := Normalize("0700123456", "UG")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	second, err := Normalize(first, "UG")
	if err != nil {
		t.Fatalf("Normalize() on normalized input error = %v", err)
	}
	if second != first {
		t.Fatalf("second pass = %q, want %q", second, first)
	}
}
