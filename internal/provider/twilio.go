package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/agribuddy/notify-engine/internal/domain"
	"github.com/go-resty/resty/v2"
)

const (
	twilioName    = "Twilio"
	twilioBaseURL = "https://api.twilio.com/2010-04-01"
)

type twilioResponse struct {
	SID    string  `json:"sid"`
	Status string  `json:"status"`
	Price  *string `json:"price"`
}

// TwilioProvider delivers SMS through the Twilio Messages API. Global
// coverage, used as the international fallback behind the regional
// carriers.
type TwilioProvider struct {
	client     *resty.Client
	accountSID string
	authToken  string
	fromNumber string
	baseURL    string
}

func NewTwilioProvider(accountSID, authToken, fromNumber string) (*TwilioProvider, error) {
	client := resty.New()
	client.SetTimeout(defaultCarrierTimeout)
	client.SetRetryCount(0)

	return NewTwilioProviderWithClient(accountSID, authToken, fromNumber, twilioBaseURL, client)
}

func NewTwilioProviderWithClient(accountSID, authToken, fromNumber, baseURL string, client *resty.Client) (*TwilioProvider, error) {
	accountSID = strings.TrimSpace(accountSID)
	authToken = strings.TrimSpace(authToken)
	fromNumber = strings.TrimSpace(fromNumber)
	baseURL = strings.TrimSpace(baseURL)

	if accountSID == "" || authToken == "" {
		return nil, fmt.Errorf("twilio account sid and auth token are required")
	}
	if fromNumber == "" {
		return nil, fmt.Errorf("twilio from number is required")
	}
	if baseURL == "" {
		baseURL = twilioBaseURL
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}
	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultCarrierTimeout)
	}

	return &TwilioProvider{
		client:     client,
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		baseURL:    baseURL,
	}, nil
}

func (p *TwilioProvider) Name() string { return twilioName }

func (p *TwilioProvider) Send(ctx context.Context, to string, message string, opts SendOptions) (*domain.DeliveryReceipt, error) {
	if p == nil || p.client == nil {
		return nil, fmt.Errorf("provider is not initialized")
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", p.baseURL, p.accountSID)

	var out twilioResponse
	response, err := p.client.R().
		SetContext(ctx).
		SetBasicAuth(p.accountSID, p.authToken).
		SetFormData(map[string]string{
			"To":   to,
			"From": p.fromNumber,
			"Body": message,
		}).
		SetResult(&out).
		Post(endpoint)
	if err != nil {
		return nil, requestError(twilioName, err)
	}

	statusCode := response.StatusCode()
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return nil, &Error{
			Provider:   twilioName,
			StatusCode: statusCode,
			Message:    httpErrorMessage(statusCode, strings.TrimSpace(response.String())),
			Transient:  isTransientHTTPStatus(statusCode),
		}
	}

	cost := domain.CostUnknown
	if out.Price != nil && strings.TrimSpace(*out.Price) != "" {
		cost = *out.Price
	}

	return &domain.DeliveryReceipt{
		Provider:  twilioName,
		MessageID: out.SID,
		Cost:      cost,
		Status:    out.Status,
	}, nil
}
