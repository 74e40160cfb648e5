package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/backend"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/cascade"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/draft"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/grid"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/services"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/session"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, err error) error {
	var (
		itemNotFound *grid.ErrItemNotFound
		fieldErr     *grid.FieldError
	)

	switch {
	case session.IsSessionNotFound(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("session_not_found").
			WithDetail("wizard session not found")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case errors.As(err, &itemNotFound):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("item_not_found").
			WithDetail(err.Error())

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case errors.As(err, &fieldErr),
		services.IsValidationError(err),
		draft.IsSectionValidation(err),
		errors.Is(err, draft.ErrNoRequestNumber),
		errors.Is(err, cascade.ErrUnknownField),
		errors.Is(err, cascade.ErrFieldDisabled):
		// Blocked step validations land here too; the detail names the
		// first invalid field so the client can focus it.
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("validation_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case draft.IsNotEditable(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("not_editable").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case backend.IsFetchError(err):
		// Transient by contract: the client may retry without losing
		// any in-memory wizard state.
		problem := problems.NewStatusProblem(502).
			WithInstance(c.Path()).
			WithType("backend_unavailable").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadGateway).JSON(problem)

	default:
		// Log unexpected errors but don't expose details
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithError(err)

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	}
}
