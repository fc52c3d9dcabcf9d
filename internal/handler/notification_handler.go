package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/agribuddy/notify-engine/internal/domain"
	"github.com/agribuddy/notify-engine/internal/notify"
	"github.com/agribuddy/notify-engine/internal/queue"
)

type NotificationHandler struct {
	orchestrator *notify.Orchestrator
	publisher    queue.Publisher
	templates    []string
}

// NewNotificationHandler builds the notification endpoints. publisher is
// optional; without it the async endpoint responds 503.
func NewNotificationHandler(orchestrator *notify.Orchestrator, publisher queue.Publisher, templateNames []string) (*NotificationHandler, error) {
	if orchestrator == nil {
		return nil, fmt.Errorf("orchestrator is required")
	}
	return &NotificationHandler{
		orchestrator: orchestrator,
		publisher:    publisher,
		templates:    templateNames,
	}, nil
}

func (h *NotificationHandler) Register(router fiber.Router) {
	v1 := router.Group("/v1")
	v1.Post("/notifications", h.SendNotification)
	v1.Post("/notifications/async", h.EnqueueNotification)
	v1.Get("/templates", h.ListTemplates)
}

type recipientPayload struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type notifyRequest struct {
	Recipient recipientPayload `json:"recipient"`
	Template  string           `json:"template"`
	Data      map[string]any   `json:"data,omitempty"`
	Channels  []string         `json:"channels"`
	Country   string           `json:"country,omitempty"`
	Priority  string           `json:"priority,omitempty"`
}

type channelResultPayload struct {
	Channel   string `json:"channel"`
	Outcome   string `json:"outcome"`
	Provider  string `json:"provider,omitempty"`
	MessageID string `json:"messageId,omitempty"`
	Cost      string `json:"cost,omitempty"`
	Error     string `json:"error,omitempty"`
}

type notifyResponse struct {
	CorrelationID string                 `json:"correlationId"`
	Successful    int                    `json:"successful"`
	Failed        int                    `json:"failed"`
	Results       []channelResultPayload `json:"results"`
}

func (h *NotificationHandler) SendNotification(c *fiber.Ctx) error {
	req, err := parseNotifyRequest(c)
	if err != nil {
		return toHTTPError(err)
	}

	summary, err := h.orchestrator.Notify(c.Context(), req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toNotifyResponse(summary))
}

func (h *NotificationHandler) EnqueueNotification(c *fiber.Ctx) error {
	if h.publisher == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "async notifications are not configured")
	}

	req, err := parseNotifyRequest(c)
	if err != nil {
		return toHTTPError(err)
	}

	msg := queue.NotificationMessage{
		MessageID:      uuid.NewString(),
		CorrelationID:  requestCorrelationID(c),
		RecipientName:  req.Recipient.Name,
		RecipientPhone: req.Recipient.Phone,
		RecipientEmail: req.Recipient.Email,
		Template:       req.Template,
		Data:           req.Data,
		Channels:       req.Channels,
		Country:        req.Country,
		Priority:       req.Priority,
	}

	if err := h.publisher.Publish(c.Context(), msg); err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"messageId": msg.MessageID,
		"status":    "queued",
	})
}

func (h *NotificationHandler) ListTemplates(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"templates": h.templates,
	})
}

func parseNotifyRequest(c *fiber.Ctx) (notify.Request, error) {
	var req notifyRequest
	if err := c.BodyParser(&req); err != nil {
		return notify.Request{}, fmt.Errorf("%w: invalid request body", domain.ErrValidation)
	}

	if len(req.Channels) == 0 {
		return notify.Request{}, fmt.Errorf("%w: channels is required", domain.ErrValidation)
	}

	channels := make([]domain.Channel, 0, len(req.Channels))
	for _, raw := range req.Channels {
		channel, err := domain.ParseChannelFromString(raw)
		if err != nil {
			return notify.Request{}, err
		}
		channels = append(channels, channel)
	}

	priority := domain.PriorityNormal
	if strings.TrimSpace(req.Priority) != "" {
		parsed, err := domain.ParsePriorityFromString(req.Priority)
		if err != nil {
			return notify.Request{}, err
		}
		priority = parsed
	}

	return notify.Request{
		Recipient: notify.Recipient{
			Name:  strings.TrimSpace(req.Recipient.Name),
			Phone: strings.TrimSpace(req.Recipient.Phone),
			Email: strings.TrimSpace(req.Recipient.Email),
		},
		Template: strings.TrimSpace(req.Template),
		Data:     req.Data,
		Channels: channels,
		Country:  strings.TrimSpace(req.Country),
		Priority: priority,
	}, nil
}

func toNotifyResponse(summary *notify.Summary) notifyResponse {
	results := make([]channelResultPayload, 0, len(summary.Results))
	for _, result := range summary.Results {
		results = append(results, channelResultPayload{
			Channel:   result.Channel.String(),
			Outcome:   result.Outcome.String(),
			Provider:  result.Provider,
			MessageID: result.MessageID,
			Cost:      result.Cost,
			Error:     result.Error,
		})
	}

	return notifyResponse{
		CorrelationID: summary.CorrelationID,
		Successful:    summary.Successful,
		Failed:        summary.Failed,
		Results:       results,
	}
}

func requestCorrelationID(c *fiber.Ctx) string {
	if value := strings.TrimSpace(c.Get(fiber.HeaderXRequestID)); value != "" {
		return value
	}
	if value, ok := c.Locals("requestid").(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidPhoneNumber),
		errors.Is(err, domain.ErrUnknownTemplate):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNoProviderAvailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, domain.ErrAllProvidersFailed):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return err
	}
}
