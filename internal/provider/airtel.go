package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/agribuddy/notify-engine/internal/domain"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const (
	airtelName           = "Airtel"
	airtelDefaultBaseURL = "https://api.airtel.com/sms/send"
)

var airtelCountries = []string{"UG", "KE", "TZ", "RW", "ZM", "MW", "MG", "TD", "NE", "GA"}

type airtelRequest struct {
	MSISDN   string `json:"msisdn"`
	Message  string `json:"message"`
	SenderID string `json:"sender_id"`
}

type airtelResponse struct {
	TransactionID string `json:"transaction_id"`
	Cost          string `json:"cost"`
	Status        string `json:"status"`
}

// AirtelProvider delivers SMS through Airtel's direct gateway API.
type AirtelProvider struct {
	client   *resty.Client
	apiKey   string
	endpoint string
}

func NewAirtelProvider(apiKey, endpoint string) (*AirtelProvider, error) {
	client := resty.New()
	client.SetTimeout(defaultCarrierTimeout)
	client.SetRetryCount(0)

	return NewAirtelProviderWithClient(apiKey, endpoint, client)
}

func NewAirtelProviderWithClient(apiKey, endpoint string, client *resty.Client) (*AirtelProvider, error) {
	apiKey = strings.TrimSpace(apiKey)
	endpoint = strings.TrimSpace(endpoint)

	if apiKey == "" {
		return nil, fmt.Errorf("airtel api key is required")
	}
	if endpoint == "" {
		endpoint = airtelDefaultBaseURL
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}
	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultCarrierTimeout)
	}

	return &AirtelProvider{
		client:   client,
		apiKey:   apiKey,
		endpoint: endpoint,
	}, nil
}

func (p *AirtelProvider) Name() string { return airtelName }

func (p *AirtelProvider) Send(ctx context.Context, to string, message string, opts SendOptions) (*domain.DeliveryReceipt, error) {
	if p == nil || p.client == nil {
		return nil, fmt.Errorf("provider is not initialized")
	}

	var out airtelResponse
	response, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(airtelRequest{
			MSISDN:   to,
			Message:  message,
			SenderID: opts.SenderID,
		}).
		SetResult(&out).
		Post(p.endpoint)
	if err != nil {
		return nil, requestError(airtelName, err)
	}

	statusCode := response.StatusCode()
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return nil, &Error{
			Provider:   airtelName,
			StatusCode: statusCode,
			Message:    httpErrorMessage(statusCode, strings.TrimSpace(response.String())),
			Transient:  isTransientHTTPStatus(statusCode),
		}
	}

	messageID := strings.TrimSpace(out.TransactionID)
	if messageID == "" {
		messageID = "airtel-" + uuid.NewString()
	}
	cost := strings.TrimSpace(out.Cost)
	if cost == "" {
		cost = domain.CostUnknown
	}
	status := strings.TrimSpace(out.Status)
	if status == "" {
		status = "sent"
	}

	return &domain.DeliveryReceipt{
		Provider:  airtelName,
		MessageID: messageID,
		Cost:      cost,
		Status:    status,
	}, nil
}
