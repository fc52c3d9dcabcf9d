package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agribuddy/notify-engine/internal/domain"
	"github.com/agribuddy/notify-engine/internal/notify"
	"github.com/agribuddy/notify-engine/internal/sms"
	"github.com/agribuddy/notify-engine/internal/template"
)

type SMSHandler struct {
	dispatcher       *sms.Dispatcher
	templates        *template.Engine
	deliveries       notify.DeliveryStore
	logger           *zap.Logger
	defaultBatchSize int
	defaultDelay     time.Duration
}

func NewSMSHandler(dispatcher *sms.Dispatcher, templates *template.Engine) (*SMSHandler, error) {
	if dispatcher == nil {
		return nil, fmt.Errorf("sms dispatcher is required")
	}
	if templates == nil {
		return nil, fmt.Errorf("template engine is required")
	}
	return &SMSHandler{dispatcher: dispatcher, templates: templates}, nil
}

// SetBulkDefaults overrides the batch size and inter-batch delay applied to
// bulk requests that do not specify their own.
func (h *SMSHandler) SetBulkDefaults(batchSize int, delay time.Duration) {
	h.defaultBatchSize = batchSize
	h.defaultDelay = delay
}

// SetDeliveryStore wires the optional delivery log for direct dispatches.
func (h *SMSHandler) SetDeliveryStore(store notify.DeliveryStore, logger *zap.Logger) {
	h.deliveries = store
	h.logger = logger
}

func (h *SMSHandler) Register(router fiber.Router) {
	v1 := router.Group("/v1")
	v1.Post("/sms", h.SendSMS)
	v1.Post("/sms/bulk", h.SendBulkSMS)
	v1.Get("/providers", h.ListProviders)
}

type sendSMSRequest struct {
	Phone    string         `json:"phone"`
	Message  string         `json:"message,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Country  string         `json:"country,omitempty"`
	SenderID string         `json:"senderId,omitempty"`
	Priority string         `json:"priority,omitempty"`
}

type bulkSMSRequest struct {
	Destinations []string       `json:"destinations"`
	Message      string         `json:"message,omitempty"`
	Template     string         `json:"template,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
	Country      string         `json:"country,omitempty"`
	SenderID     string         `json:"senderId,omitempty"`
	Priority     string         `json:"priority,omitempty"`
	BatchSize    int            `json:"batchSize,omitempty"`
	DelayMs      int            `json:"delayMs,omitempty"`
}

type dispatchResultPayload struct {
	Recipient string `json:"recipient"`
	Success   bool   `json:"success"`
	Provider  string `json:"provider,omitempty"`
	MessageID string `json:"messageId,omitempty"`
	Cost      string `json:"cost,omitempty"`
	Status    string `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
}

type bulkSMSResponse struct {
	Total      int                     `json:"total"`
	Successful int                     `json:"successful"`
	Failed     int                     `json:"failed"`
	Results    []dispatchResultPayload `json:"results"`
}

type providerPayload struct {
	Name      string   `json:"name"`
	Priority  int      `json:"priority"`
	Countries []string `json:"countries"`
}

func (h *SMSHandler) SendSMS(c *fiber.Ctx) error {
	var req sendSMSRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	message, opts, err := h.resolveMessage(req.Message, req.Template, req.Data, req.Country, req.SenderID, req.Priority)
	if err != nil {
		return toHTTPError(err)
	}

	result, err := h.dispatcher.Send(c.Context(), req.Phone, message, opts)
	if err != nil {
		return toHTTPError(err)
	}

	h.recordDispatches(c, req.Template, *result)

	return c.Status(fiber.StatusOK).JSON(toDispatchResultPayload(*result))
}

func (h *SMSHandler) SendBulkSMS(c *fiber.Ctx) error {
	var req bulkSMSRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	message, opts, err := h.resolveMessage(req.Message, req.Template, req.Data, req.Country, req.SenderID, req.Priority)
	if err != nil {
		return toHTTPError(err)
	}

	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = h.defaultBatchSize
	}
	delay := time.Duration(req.DelayMs) * time.Millisecond
	if req.DelayMs <= 0 {
		delay = h.defaultDelay
	}

	batch, err := h.dispatcher.SendBulk(c.Context(), req.Destinations, message, sms.BulkOptions{
		Options:   opts,
		BatchSize: batchSize,
		Delay:     delay,
	})
	if err != nil {
		return toHTTPError(err)
	}

	h.recordDispatches(c, req.Template, batch.Results...)

	results := make([]dispatchResultPayload, 0, len(batch.Results))
	for _, result := range batch.Results {
		results = append(results, toDispatchResultPayload(result))
	}

	return c.Status(fiber.StatusOK).JSON(bulkSMSResponse{
		Total:      batch.Total,
		Successful: batch.Successful,
		Failed:     batch.Failed,
		Results:    results,
	})
}

func (h *SMSHandler) ListProviders(c *fiber.Ctx) error {
	descriptors := h.dispatcher.Providers()

	providers := make([]providerPayload, 0, len(descriptors))
	for _, d := range descriptors {
		providers = append(providers, providerPayload{
			Name:      d.Name,
			Priority:  d.Priority,
			Countries: d.Countries,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"providers": providers,
	})
}

// resolveMessage accepts either a literal message or a template name with
// data, mirroring the sms endpoint contract.
func (h *SMSHandler) resolveMessage(
	message, templateName string,
	data map[string]any,
	country, senderID, priority string,
) (string, sms.Options, error) {
	opts := sms.Options{
		Country:  strings.TrimSpace(country),
		SenderID: strings.TrimSpace(senderID),
		Priority: domain.PriorityNormal,
	}

	if strings.TrimSpace(priority) != "" {
		parsed, err := domain.ParsePriorityFromString(priority)
		if err != nil {
			return "", sms.Options{}, err
		}
		opts.Priority = parsed
	}

	message = strings.TrimSpace(message)
	templateName = strings.TrimSpace(templateName)

	switch {
	case message != "" && templateName != "":
		return "", sms.Options{}, fmt.Errorf("%w: message and template are mutually exclusive", domain.ErrValidation)
	case message != "":
		return message, opts, nil
	case templateName != "":
		rendered, err := h.templates.Render(templateName, domain.ChannelSMS, data)
		if err != nil {
			return "", sms.Options{}, err
		}
		return rendered.Text, opts, nil
	default:
		return "", sms.Options{}, fmt.Errorf("%w: message or template is required", domain.ErrValidation)
	}
}

// recordDispatches writes direct dispatch outcomes to the delivery log.
// Best effort: a failed write is logged, never surfaced to the caller.
func (h *SMSHandler) recordDispatches(c *fiber.Ctx, templateName string, results ...domain.DispatchResult) {
	if h.deliveries == nil {
		return
	}

	correlationID := requestCorrelationID(c)
	for _, result := range results {
		outcome := domain.OutcomeFailed
		if result.Success {
			outcome = domain.OutcomeSent
		}

		record := &domain.DeliveryRecord{
			ID:            uuid.NewString(),
			CorrelationID: correlationID,
			Recipient:     result.Recipient,
			Channel:       domain.ChannelSMS,
			Template:      templateName,
			Provider:      result.Provider,
			MessageID:     result.MessageID,
			Cost:          result.Cost,
			Outcome:       outcome,
			ErrorMessage:  result.Error,
			CreatedAt:     time.Now().UTC(),
		}
		if err := h.deliveries.Record(c.Context(), record); err != nil && h.logger != nil {
			h.logger.Warn("failed to record dispatch",
				zap.String("recipient", result.Recipient),
				zap.Error(err),
			)
		}
	}
}

func toDispatchResultPayload(result domain.DispatchResult) dispatchResultPayload {
	return dispatchResultPayload{
		Recipient: result.Recipient,
		Success:   result.Success,
		Provider:  result.Provider,
		MessageID: result.MessageID,
		Cost:      result.Cost,
		Status:    result.Status,
		Error:     result.Error,
	}
}
