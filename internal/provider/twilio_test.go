package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agribuddy/notify-engine/internal/domain"
	"github.com/go-resty/resty/v2"
)

func TestTwilioProviderSendSuccess(t *testing.T) {
	t.Parallel()

	var gotPath, gotUser, gotTo, gotFrom, gotBody string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, _, _ = r.BasicAuth()
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		gotTo = r.PostFormValue("To")
		gotFrom = r.PostFormValue("From")
		gotBody = r.PostFormValue("Body")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid": "SM123", "status": "queued", "price": null}`))
	}))
	defer server.Close()

	sid := "AC00000000000000000000000000000000"
	p, err := NewTwilioProviderWithClient(sid, "auth-token-that-is-long-enough", "+15550001111", server.URL, resty.New())
	if err != nil {
		t.Fatalf("NewTwilioProviderWithClient() error = %v", err)
	}

	receipt, err := p.Send(context.Background(), "+256700123456", "market update", SendOptions{SenderID: "AgriBuddy"})
	if err != nil {
		t.Fatalf("Send() unexpected error: %v", err)
	}

	if !strings.Contains(gotPath, sid) {
		t.Fatalf("request path %q should contain account sid", gotPath)
	}
	if gotUser != sid {
		t.Fatalf("basic auth user = %q, want %q", gotUser, sid)
	}
	if gotTo != "+256700123456" || gotFrom != "+15550001111" || gotBody != "market update" {
		t.Fatalf("form = To=%q From=%q Body=%q", gotTo, gotFrom, gotBody)
	}
	if receipt.MessageID != "SM123" {
		t.Fatalf("MessageID = %q, want SM123", receipt.MessageID)
	}
	if receipt.Status != "queued" {
		t.Fatalf("Status = %q, want queued", receipt.Status)
	}
	if receipt.Cost != domain.CostUnknown {
		t.Fatalf("Cost = %q, want %q for null price", receipt.Cost, domain.CostUnknown)
	}
}

func TestTwilioProviderSendReportedPrice(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid": "SM456", "status": "sent", "price": "-0.0075"}`))
	}))
	defer server.Close()

	p, err := NewTwilioProviderWithClient("AC1", "auth-token-that-is-long-enough", "+15550001111", server.URL, resty.New())
	if err != nil {
		t.Fatalf("NewTwilioProviderWithClient() error = %v", err)
	}

	receipt, err := p.Send(context.Background(), "+256700123456", "hello", SendOptions{})
	if err != nil {
		t.Fatalf("Send() unexpected error: %v", err)
	}
	if receipt.Cost != "-0.0075" {
		t.Fatalf("Cost = %q, want -0.0075", receipt.Cost)
	}
}
