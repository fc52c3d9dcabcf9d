package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/agribuddy/notify-engine/internal/domain"
	"github.com/agribuddy/notify-engine/internal/repository"
)

// ScheduleHandler stores notifications for future delivery. The
// scheduler in the worker publishes them to the work queue when due.
type ScheduleHandler struct {
	schedules repository.ScheduleRepository
	templates []string
}

func NewScheduleHandler(schedules repository.ScheduleRepository, templateNames []string) (*ScheduleHandler, error) {
	if schedules == nil {
		return nil, fmt.Errorf("schedule repository is required")
	}
	return &ScheduleHandler{schedules: schedules, templates: templateNames}, nil
}

func (h *ScheduleHandler) Register(router fiber.Router) {
	v1 := router.Group("/v1")
	v1.Post("/notifications/schedule", h.ScheduleNotification)
	v1.Get("/notifications/schedule/:id", h.GetScheduledNotification)
}

type scheduleTimePayload struct {
	SendAt string `json:"sendAt"`
}

type scheduledMessagePayload struct {
	ID        string   `json:"id"`
	Template  string   `json:"template"`
	Channels  []string `json:"channels"`
	SendAt    string   `json:"sendAt"`
	Status    string   `json:"status"`
	CreatedAt string   `json:"createdAt,omitempty"`
}

func (h *ScheduleHandler) ScheduleNotification(c *fiber.Ctx) error {
	req, err := parseNotifyRequest(c)
	if err != nil {
		return toHTTPError(err)
	}

	var timing scheduleTimePayload
	if err := c.BodyParser(&timing); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(timing.SendAt) == "" {
		return toHTTPError(fmt.Errorf("%w: sendAt is required", domain.ErrValidation))
	}
	sendAt, err := time.Parse(time.RFC3339, timing.SendAt)
	if err != nil {
		return toHTTPError(fmt.Errorf("%w: sendAt must be RFC3339", domain.ErrValidation))
	}

	if !h.knownTemplate(req.Template) {
		return toHTTPError(fmt.Errorf("%w: %s", domain.ErrUnknownTemplate, req.Template))
	}
	if req.Recipient.Phone == "" && req.Recipient.Email == "" {
		return toHTTPError(fmt.Errorf("%w: recipient phone or email is required", domain.ErrValidation))
	}

	msg := &domain.ScheduledMessage{
		ID:             uuid.NewString(),
		CorrelationID:  requestCorrelationID(c),
		RecipientName:  req.Recipient.Name,
		RecipientPhone: req.Recipient.Phone,
		RecipientEmail: req.Recipient.Email,
		Template:       req.Template,
		Data:           req.Data,
		Channels:       req.Channels,
		Country:        req.Country,
		Priority:       req.Priority,
		SendAt:         sendAt.UTC(),
		Status:         domain.SchedulePending,
	}

	if err := h.schedules.Create(c.Context(), msg); err != nil {
		return fmt.Errorf("failed to store scheduled notification: %w", err)
	}

	return c.Status(fiber.StatusAccepted).JSON(toScheduledPayload(msg))
}

func (h *ScheduleHandler) GetScheduledNotification(c *fiber.Ctx) error {
	msg, err := h.schedules.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(toScheduledPayload(msg))
}

func (h *ScheduleHandler) knownTemplate(name string) bool {
	for _, known := range h.templates {
		if known == name {
			return true
		}
	}
	return len(h.templates) == 0
}

func toScheduledPayload(msg *domain.ScheduledMessage) scheduledMessagePayload {
	channels := make([]string, 0, len(msg.Channels))
	for _, channel := range msg.Channels {
		channels = append(channels, channel.String())
	}

	payload := scheduledMessagePayload{
		ID:       msg.ID,
		Template: msg.Template,
		Channels: channels,
		SendAt:   msg.SendAt.Format(time.RFC3339),
		Status:   string(msg.Status),
	}
	if !msg.CreatedAt.IsZero() {
		payload.CreatedAt = msg.CreatedAt.UTC().Format(time.RFC3339)
	}
	return payload
}
