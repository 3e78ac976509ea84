// Package web provides the REST API for managing automations and the endpoints that accept
// domain events and inbound webhooks.
package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dukex/talentflow/pkg/eventbus"
	"github.com/dukex/talentflow/pkg/events"
	"github.com/dukex/talentflow/pkg/models"
	"github.com/dukex/talentflow/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const defaultExecutionsLimit = 50

type APIHandlers struct {
	automationService *services.Automation
	validator         *validator.Validate
	eventBus          eventbus.EventBus
}

func NewAPIHandlers(
	automationService *services.Automation,
	validator *validator.Validate,
	eventBus eventbus.EventBus,
) *APIHandlers {
	return &APIHandlers{
		automationService: automationService,
		validator:         validator,
		eventBus:          eventBus,
	}
}

// Register mounts every endpoint on router.
func (h *APIHandlers) Register(router fiber.Router) {
	a := router.Group("/automations")
	a.Get("/", h.GetAutomations)
	a.Post("/", h.CreateAutomation)
	a.Post("/validate", h.ValidateDocument)
	a.Get("/:id", h.GetAutomation)
	a.Put("/:id", h.UpdateAutomation)
	a.Delete("/:id", h.DeleteAutomation)
	a.Post("/:id/validate", h.ValidateAutomation)
	a.Post("/:id/activate", h.ActivateAutomation)
	a.Post("/:id/disable", h.DisableAutomation)
	a.Get("/:id/executions", h.GetExecutions)

	router.Get("/models", h.GetModels)
	router.Get("/activities/:owner/:entityId", h.GetActivities)
	router.Post("/events", h.IngestEvent)
	router.Post("/hooks/:owner/*", h.ReceiveWebhook)
	router.Get("/health", h.HealthCheck)
}

func (h *APIHandlers) GetAutomations(c fiber.Ctx) error {
	graphs, err := h.automationService.List(c.Context(), c.Query("owner"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"automations": graphs,
		"total_count": len(graphs),
	})
}

func (h *APIHandlers) GetAutomation(c fiber.Ctx) error {
	graph, err := h.automationService.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(graph)
}

func (h *APIHandlers) CreateAutomation(c fiber.Ctx) error {
	var req CreateAutomationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.automationService.Create(c.Context(), &models.Graph{
		Owner: req.Owner,
		Name:  req.Name,
		Nodes: orEmpty(req.Nodes),
		Edges: orEmpty(req.Edges),
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateAutomation(c fiber.Ctx) error {
	var req UpdateAutomationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.automationService.Update(c.Context(), c.Params("id"), &models.Graph{
		Name:  req.Name,
		Nodes: orEmpty(req.Nodes),
		Edges: orEmpty(req.Edges),
	}, req.Version)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteAutomation(c fiber.Ctx) error {
	err := h.automationService.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ValidateAutomation reports the issues of a stored automation. Issues are a 200 response.
func (h *APIHandlers) ValidateAutomation(c fiber.Ctx) error {
	issues, err := h.automationService.Validate(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(newValidationResponse(issues))
}

// ValidateDocument reports the issues of a graph sent in the body without storing it.
func (h *APIHandlers) ValidateDocument(c fiber.Ctx) error {
	var doc models.Graph
	if err := c.Bind().JSON(&doc); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	issues, err := h.automationService.ValidateDocument(&doc)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(newValidationResponse(issues))
}

func (h *APIHandlers) ActivateAutomation(c fiber.Ctx) error {
	req, err := h.statusChange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	graph, err := h.automationService.Activate(c.Context(), c.Params("id"), req.Version)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(graph)
}

func (h *APIHandlers) DisableAutomation(c fiber.Ctx) error {
	req, err := h.statusChange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	graph, err := h.automationService.Disable(c.Context(), c.Params("id"), req.Version)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(graph)
}

func (h *APIHandlers) statusChange(c fiber.Ctx) (*StatusChangeRequest, error) {
	var req StatusChangeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return nil, err
	}

	if err := h.validator.Struct(req); err != nil {
		return nil, err
	}

	return &req, nil
}

func (h *APIHandlers) GetExecutions(c fiber.Ctx) error {
	limit := defaultExecutionsLimit

	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			return badRequest(c, "limit must be a non-negative integer")
		}

		limit = parsed
	}

	records, err := h.automationService.Executions(c.Context(), c.Params("id"), limit)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"executions": records,
		"limit":      limit,
	})
}

func (h *APIHandlers) GetModels(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"models": h.automationService.Models(),
	})
}

func (h *APIHandlers) GetActivities(c fiber.Ctx) error {
	activities, err := h.automationService.Activities(c.Context(), c.Params("owner"), c.Params("entityId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"activities": activities,
	})
}

// IngestEvent accepts a domain event from the host application and hands it to the workers.
func (h *APIHandlers) IngestEvent(c fiber.Ctx) error {
	var event models.DomainEvent
	if err := c.Bind().JSON(&event); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(event); err != nil {
		return badRequest(c, err.Error())
	}

	return h.publish(c, event)
}

// ReceiveWebhook turns an inbound request into a webhook_receive event. The path after the owner
// segment is the webhook path a trigger matches on; the body must be a JSON object or empty.
func (h *APIHandlers) ReceiveWebhook(c fiber.Ctx) error {
	owner := strings.TrimSpace(c.Params("owner"))
	if owner == "" {
		return badRequest(c, "owner is required")
	}

	payload := map[string]any{}

	if body := c.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			return badRequest(c, "webhook body must be a JSON object")
		}
	}

	return h.publish(c, models.DomainEvent{
		Owner:       owner,
		Kind:        models.EventKindWebhookReceive,
		WebhookPath: "/" + strings.Trim(c.Params("*"), "/"),
		Payload:     payload,
	})
}

func (h *APIHandlers) publish(c fiber.Ctx, event models.DomainEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	err := h.eventBus.Publish(c.Context(), event.Owner, events.DomainEventReceived{
		BaseEvent: events.BaseEvent{
			ID:        h.eventBus.GenerateID(),
			Type:      events.DomainEventReceivedEvent,
			Timestamp: time.Now().UTC(),
			Owner:     event.Owner,
		},
		Event: event,
	})
	if err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(EventAcceptedResponse{EventID: event.ID})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.automationService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Talentflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Talentflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}

	return items
}
