package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/agribuddy/notify-engine/internal/domain"
	"github.com/agribuddy/notify-engine/internal/repository"
)

const (
	defaultPage     = 1
	defaultPageSize = 50
	maxPageSize     = 200
)

type DeliveryHandler struct {
	deliveries repository.DeliveryRepository
}

func NewDeliveryHandler(deliveries repository.DeliveryRepository) (*DeliveryHandler, error) {
	if deliveries == nil {
		return nil, fmt.Errorf("delivery repository is required")
	}
	return &DeliveryHandler{deliveries: deliveries}, nil
}

func (h *DeliveryHandler) Register(router fiber.Router) {
	v1 := router.Group("/v1")
	v1.Get("/deliveries", h.ListDeliveries)
	v1.Get("/deliveries/:id", h.GetDelivery)
}

type deliveryPayload struct {
	ID            string    `json:"id"`
	CorrelationID string    `json:"correlationId"`
	Recipient     string    `json:"recipient"`
	Channel       string    `json:"channel"`
	Template      string    `json:"template"`
	Provider      string    `json:"provider,omitempty"`
	MessageID     string    `json:"messageId,omitempty"`
	Cost          string    `json:"cost,omitempty"`
	Outcome       string    `json:"outcome"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type listDeliveriesResponse struct {
	Data []deliveryPayload `json:"data"`
	Meta listMeta          `json:"meta"`
}

type listMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

func (h *DeliveryHandler) ListDeliveries(c *fiber.Ctx) error {
	params, err := parseDeliveryListParams(c)
	if err != nil {
		return toHTTPError(err)
	}

	records, total, err := h.deliveries.List(c.Context(), params)
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]deliveryPayload, 0, len(records))
	for i := range records {
		data = append(data, toDeliveryPayload(&records[i]))
	}

	return c.Status(fiber.StatusOK).JSON(listDeliveriesResponse{
		Data: data,
		Meta: listMeta{
			Page:     params.Page,
			PageSize: params.PageSize,
			Total:    total,
		},
	})
}

func (h *DeliveryHandler) GetDelivery(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))

	record, err := h.deliveries.GetByID(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toDeliveryPayload(record))
}

func parseDeliveryListParams(c *fiber.Ctx) (repository.ListParams, error) {
	params := repository.ListParams{
		Page:     c.QueryInt("page", defaultPage),
		PageSize: c.QueryInt("pageSize", defaultPageSize),
	}

	if params.Page < 1 {
		return repository.ListParams{}, fmt.Errorf("%w: page must be >= 1", domain.ErrValidation)
	}
	if params.PageSize < 1 || params.PageSize > maxPageSize {
		return repository.ListParams{}, fmt.Errorf("%w: pageSize must be between 1 and %d", domain.ErrValidation, maxPageSize)
	}

	if raw := strings.TrimSpace(c.Query("recipient")); raw != "" {
		params.Recipient = &raw
	}
	if raw := strings.TrimSpace(c.Query("template")); raw != "" {
		params.Template = &raw
	}
	if raw := strings.TrimSpace(c.Query("channel")); raw != "" {
		channel, err := domain.ParseChannelFromString(raw)
		if err != nil {
			return repository.ListParams{}, err
		}
		params.Channel = &channel
	}
	if raw := strings.TrimSpace(c.Query("outcome")); raw != "" {
		outcome, err := domain.ParseOutcomeFromString(raw)
		if err != nil {
			return repository.ListParams{}, err
		}
		params.Outcome = &outcome
	}

	from, err := parseRFC3339Query(c.Query("from"), "from")
	if err != nil {
		return repository.ListParams{}, err
	}
	to, err := parseRFC3339Query(c.Query("to"), "to")
	if err != nil {
		return repository.ListParams{}, err
	}
	params.From = from
	params.To = to

	return params, nil
}

func parseRFC3339Query(value string, field string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be RFC3339", domain.ErrValidation, field)
	}
	return &t, nil
}

func toDeliveryPayload(record *domain.DeliveryRecord) deliveryPayload {
	if record == nil {
		return deliveryPayload{}
	}

	return deliveryPayload{
		ID:            record.ID,
		CorrelationID: record.CorrelationID,
		Recipient:     record.Recipient,
		Channel:       record.Channel.String(),
		Template:      record.Template,
		Provider:      record.Provider,
		MessageID:     record.MessageID,
		Cost:          record.Cost,
		Outcome:       record.Outcome.String(),
		Error:         record.ErrorMessage,
		CreatedAt:     record.CreatedAt,
	}
}
