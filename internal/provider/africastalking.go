package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/agribuddy/notify-engine/internal/domain"
	"github.com/go-resty/resty/v2"
)

const (
	africasTalkingName     = "AfricasTalking"
	africasTalkingEndpoint = "https://api.africastalking.com/version1/messaging"

	defaultCarrierTimeout = 10 * time.Second
)

var africasTalkingCountries = []string{"UG", "KE", "TZ", "RW", "MW", "ZM", "GH", "NG"}

type africasTalkingResponse struct {
	SMSMessageData struct {
		Message    string `json:"Message"`
		Recipients []struct {
			Number     string `json:"number"`
			Status     string `json:"status"`
			StatusCode int    `json:"statusCode"`
			MessageID  string `json:"messageId"`
			Cost       string `json:"cost"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

// AfricasTalkingProvider delivers SMS through the Africa's Talking
// messaging API. Primary carrier for East Africa.
type AfricasTalkingProvider struct {
	client   *resty.Client
	username string
	apiKey   string
	endpoint string
}

func NewAfricasTalkingProvider(username, apiKey string) (*AfricasTalkingProvider, error) {
	client := resty.New()
	client.SetTimeout(defaultCarrierTimeout)
	client.SetRetryCount(0)

	return NewAfricasTalkingProviderWithClient(username, apiKey, africasTalkingEndpoint, client)
}

func NewAfricasTalkingProviderWithClient(username, apiKey, endpoint string, client *resty.Client) (*AfricasTalkingProvider, error) {
	username = strings.TrimSpace(username)
	apiKey = strings.TrimSpace(apiKey)
	endpoint = strings.TrimSpace(endpoint)

	if username == "" || apiKey == "" {
		return nil, fmt.Errorf("africastalking username and api key are required")
	}
	if endpoint == "" {
		endpoint = africasTalkingEndpoint
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}
	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultCarrierTimeout)
	}

	return &AfricasTalkingProvider{
		client:   client,
		username: username,
		apiKey:   apiKey,
		endpoint: endpoint,
	}, nil
}

func (p *AfricasTalkingProvider) Name() string { return africasTalkingName }

func (p *AfricasTalkingProvider) Send(ctx context.Context, to string, message string, opts SendOptions) (*domain.DeliveryReceipt, error) {
	if p == nil || p.client == nil {
		return nil, fmt.Errorf("provider is not initialized")
	}

	var out africasTalkingResponse
	response, err := p.client.R().
		SetContext(ctx).
		SetHeader("apiKey", p.apiKey).
		SetHeader("Accept", "application/json").
		SetFormData(map[string]string{
			"username": p.username,
			"to":       to,
			"message":  message,
			"from":     opts.SenderID,
		}).
		SetResult(&out).
		Post(p.endpoint)
	if err != nil {
		return nil, requestError(africasTalkingName, err)
	}

	statusCode := response.StatusCode()
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return nil, &Error{
			Provider:   africasTalkingName,
			StatusCode: statusCode,
			Message:    httpErrorMessage(statusCode, strings.TrimSpace(response.String())),
			Transient:  isTransientHTTPStatus(statusCode),
		}
	}

	recipients := out.SMSMessageData.Recipients
	if len(recipients) == 0 {
		return nil, &Error{
			Provider:  africasTalkingName,
			Message:   fmt.Sprintf("no recipients in response: %s", out.SMSMessageData.Message),
			Transient: false,
		}
	}

	recipient := recipients[0]
	if recipient.Status != "Success" {
		return nil, &Error{
			Provider:   africasTalkingName,
			StatusCode: recipient.StatusCode,
			Message:    fmt.Sprintf("recipient status %q", recipient.Status),
			Transient:  false,
		}
	}

	return &domain.DeliveryReceipt{
		Provider:  africasTalkingName,
		MessageID: recipient.MessageID,
		Cost:      recipient.Cost,
		Status:    recipient.Status,
	}, nil
}
