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
	mtnName           = "MTN"
	mtnDefaultBaseURL = "https://api.mtn.com/sms/send"
)

var mtnCountries = []string{"UG", "GH", "CM", "CI", "BJ", "RW", "ZM", "SS"}

type mtnRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
	From    string `json:"from"`
}

type mtnResponse struct {
	MessageID string `json:"messageId"`
	Cost      string `json:"cost"`
	Status    string `json:"status"`
}

// MTNProvider delivers SMS through MTN's direct gateway API.
type MTNProvider struct {
	client   *resty.Client
	apiKey   string
	endpoint string
}

func NewMTNProvider(apiKey, endpoint string) (*MTNProvider, error) {
	client := resty.New()
	client.SetTimeout(defaultCarrierTimeout)
	client.SetRetryCount(0)

	return NewMTNProviderWithClient(apiKey, endpoint, client)
}

func NewMTNProviderWithClient(apiKey, endpoint string, client *resty.Client) (*MTNProvider, error) {
	apiKey = strings.TrimSpace(apiKey)
	endpoint = strings.TrimSpace(endpoint)

	if apiKey == "" {
		return nil, fmt.Errorf("mtn api key is required")
	}
	if endpoint == "" {
		endpoint = mtnDefaultBaseURL
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}
	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultCarrierTimeout)
	}

	return &MTNProvider{
		client:   client,
		apiKey:   apiKey,
		endpoint: endpoint,
	}, nil
}

func (p *MTNProvider) Name() string { return mtnName }

func (p *MTNProvider) Send(ctx context.Context, to string, message string, opts SendOptions) (*domain.DeliveryReceipt, error) {
	if p == nil || p.client == nil {
		return nil, fmt.Errorf("provider is not initialized")
	}

	var out mtnResponse
	response, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(mtnRequest{
			To:      to,
			Message: message,
			From:    opts.SenderID,
		}).
		SetResult(&out).
		Post(p.endpoint)
	if err != nil {
		return nil, requestError(mtnName, err)
	}

	statusCode := response.StatusCode()
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return nil, &Error{
			Provider:   mtnName,
			StatusCode: statusCode,
			Message:    httpErrorMessage(statusCode, strings.TrimSpace(response.String())),
			Transient:  isTransientHTTPStatus(statusCode),
		}
	}

	messageID := strings.TrimSpace(out.MessageID)
	if messageID == "" {
		messageID = "mtn-" + uuid.NewString()
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
		Provider:  mtnName,
		MessageID: messageID,
		Cost:      cost,
		Status:    status,
	}, nil
}
