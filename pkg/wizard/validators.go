package wizard

import (
	"strings"

	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/models"
)

// RequiredFields returns a validator that checks the listed fields are
// non-blank, reporting the first missing one in declaration order.
func RequiredFields(fields ...string) Validator {
	return func(state StepState) Result {
		for _, field := range fields {
			if strings.TrimSpace(state.Fields[field]) == "" {
				return invalid(state.Step, field)
			}
		}

		return Result{Valid: true}
	}
}

// ItemsPresent requires at least one line item before leaving the items step.
func ItemsPresent() Validator {
	return func(state StepState) Result {
		if len(state.Items) == 0 {
			return invalid(state.Step, "items")
		}

		return Result{Valid: true}
	}
}

// AssigneesPresent requires at least one approval assignee.
func AssigneesPresent() Validator {
	return func(state StepState) Result {
		if len(state.Assignees) == 0 {
			return invalid(state.Step, "assignees")
		}

		return Result{Valid: true}
	}
}

// DocumentsPresent requires at least one supporting document.
func DocumentsPresent() Validator {
	return func(state StepState) Result {
		if len(state.Documents) == 0 {
			return invalid(state.Step, "documents")
		}

		return Result{Valid: true}
	}
}

// All combines validators left to right, returning the first failure.
func All(validators ...Validator) Validator {
	return func(state StepState) Result {
		for _, v := range validators {
			if result := v(state); !result.Valid {
				return result
			}
		}

		return Result{Valid: true}
	}
}

// AdditionalFieldFor names the input the conditional step requires for a
// given section flavour.
func AdditionalFieldFor(kind models.SectionKind) string {
	switch kind {
	case models.SectionKindBilling:
		return "billing_period"
	case models.SectionKindSubscribe:
		return "period_length"
	case models.SectionKindSite:
		return "site_id"
	default:
		return ""
	}
}

// DefaultValidators is the stock per-step rule set. The additional step's
// required field depends on the section flavour for the session's type,
// so the map is rebuilt whenever the request type changes.
func DefaultValidators(typeID, subTypeID int) map[models.StepID]Validator {
	validators := map[models.StepID]Validator{
		models.StepBasicInformation: RequiredFields(
			"subject",
			"department_id",
			"vendor_id",
			"term_of_payment_id",
		),
		models.StepItems:     ItemsPresent(),
		models.StepAssignees: AssigneesPresent(),
		models.StepDocuments: DocumentsPresent(),
	}

	if kind, ok := models.ConditionalSectionFor(typeID, subTypeID); ok {
		validators[models.StepAdditionalInformation] = RequiredFields(AdditionalFieldFor(kind))
	}

	return validators
}

func invalid(step models.StepID, field string) Result {
	return Result{
		Valid:             false,
		FirstInvalidField: &FieldRef{Step: step, Field: field},
	}
}
