// Package web provides the HTTP handlers of the purchase-request wizard API.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/models"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/services"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/session"
)

type APIHandlers struct {
	wizardService *services.Wizard
	validator     *validator.Validate
}

func NewAPIHandlers(wizardService *services.Wizard, validator *validator.Validate) *APIHandlers {
	return &APIHandlers{
		wizardService: wizardService,
		validator:     validator,
	}
}

// RegisterRoutes mounts every wizard endpoint under the given router.
func (h *APIHandlers) RegisterRoutes(router fiber.Router) {
	router.Post("/resume", h.ResumeDraft)

	sessions := router.Group("/sessions")
	sessions.Post("/", h.CreateSession)
	sessions.Get("/:id", h.GetSession)
	sessions.Delete("/:id", h.CancelSession)
	sessions.Post("/:id/advance", h.Advance)
	sessions.Post("/:id/retreat", h.Retreat)
	sessions.Put("/:id/request-type", h.SetRequestType)
	sessions.Put("/:id/steps/:step/fields", h.SetStepFields)
	sessions.Put("/:id/assignees", h.SetAssignees)
	sessions.Put("/:id/documents", h.SetDocuments)
	sessions.Post("/:id/items", h.AddItem)
	sessions.Patch("/:id/items/:localId", h.EditItem)
	sessions.Delete("/:id/items/:localId", h.RemoveItem)
	sessions.Post("/:id/apply-period", h.ApplyPeriod)
	sessions.Post("/:id/sections/:section", h.SaveSection)
	sessions.Post("/:id/submit", h.Submit)
	sessions.Get("/:id/dropdowns", h.GetDropdowns)
	sessions.Post("/:id/dropdowns/:index", h.ChangeDropdown)
}

func (h *APIHandlers) CreateSession(c fiber.Ctx) error {
	var req CreateSessionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	state, err := h.wizardService.CreateSession(c.Context(), req.TypeID, req.SubTypeID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(h.sessionView(state))
}

func (h *APIHandlers) GetSession(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	state, err := h.wizardService.GetSession(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(h.sessionView(state))
}

func (h *APIHandlers) Advance(c fiber.Ctx) error {
	state, result, err := h.wizardService.Advance(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(AdvanceResponse{
		SessionResponse: h.sessionView(state),
		Result:          result,
	})
}

func (h *APIHandlers) Retreat(c fiber.Ctx) error {
	state, err := h.wizardService.Retreat(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(h.sessionView(state))
}

func (h *APIHandlers) SetRequestType(c fiber.Ctx) error {
	var req SetRequestTypeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	state, err := h.wizardService.SetRequestType(c.Context(), c.Params("id"), req.TypeID, req.SubTypeID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(h.sessionView(state))
}

func (h *APIHandlers) SetStepFields(c fiber.Ctx) error {
	var req SetFieldsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	step := models.StepID(c.Params("step"))

	state, err := h.wizardService.SetFields(c.Context(), c.Params("id"), step, req.Fields)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(h.sessionView(state))
}

func (h *APIHandlers) SetAssignees(c fiber.Ctx) error {
	var req SetAssigneesRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	state, err := h.wizardService.SetAssignees(c.Context(), c.Params("id"), req.Assignees)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(h.sessionView(state))
}

func (h *APIHandlers) SetDocuments(c fiber.Ctx) error {
	var req SetDocumentsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	state, err := h.wizardService.SetDocuments(c.Context(), c.Params("id"), req.Documents)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(h.sessionView(state))
}

func (h *APIHandlers) AddItem(c fiber.Ctx) error {
	var req ItemRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	state, item, err := h.wizardService.AddItem(c.Context(), c.Params("id"), req.ToInput())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"item":    item,
		"session": h.sessionView(state),
	})
}

func (h *APIHandlers) EditItem(c fiber.Ctx) error {
	var req ItemRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	state, item, err := h.wizardService.EditItem(c.Context(), c.Params("id"), c.Params("localId"), req.ToInput())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"item":    item,
		"session": h.sessionView(state),
	})
}

func (h *APIHandlers) RemoveItem(c fiber.Ctx) error {
	state, err := h.wizardService.RemoveItem(c.Context(), c.Params("id"), c.Params("localId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(h.sessionView(state))
}

func (h *APIHandlers) ApplyPeriod(c fiber.Ctx) error {
	var req ApplyPeriodRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	state, err := h.wizardService.ApplyPeriod(c.Context(), c.Params("id"), req.Length)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(h.sessionView(state))
}

func (h *APIHandlers) SaveSection(c fiber.Ctx) error {
	section := models.SectionName(c.Params("section"))

	state, err := h.wizardService.SaveSection(c.Context(), c.Params("id"), section)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(h.sessionView(state))
}

func (h *APIHandlers) Submit(c fiber.Ctx) error {
	state, err := h.wizardService.Submit(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(h.sessionView(state))
}

func (h *APIHandlers) CancelSession(c fiber.Ctx) error {
	if err := h.wizardService.Cancel(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ResumeDraft(c fiber.Ctx) error {
	var req ResumeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	state, err := h.wizardService.Resume(c.Context(), req.RequestNumber)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(h.sessionView(state))
}

func (h *APIHandlers) GetDropdowns(c fiber.Ctx) error {
	states, err := h.wizardService.CascadeStates(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"fields": states})
}

func (h *APIHandlers) ChangeDropdown(c fiber.Ctx) error {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return badRequest(c, "Dropdown index must be an integer")
	}

	var req CascadeChangeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	states, err := h.wizardService.CascadeChange(c.Context(), c.Params("id"), index, req.Value)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"fields": states})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	storeCheck, ok := h.wizardService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Wizard API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if ok {
		status = "healthy"
		message = "Wizard API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"session_store": storeCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) sessionView(state *session.State) SessionResponse {
	total, currency := h.wizardService.Total(state)

	return TransformSessionResponse(state, total, currency)
}
