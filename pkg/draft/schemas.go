package draft

import "github.com/Yoas-Hutapea/IDISys-sub004/pkg/models"

// sectionSchemas gate section payloads before they reach the wire. The
// backend re-validates everything; these schemas only reject payloads the
// wizard itself should never have produced.
var sectionSchemas = map[models.SectionName]map[string]any{
	models.SectionBasic: {
		"type": "object",
		"properties": map[string]any{
			"subject":            map[string]any{"type": "string", "minLength": 1},
			"department_id":      map[string]any{"type": "string", "minLength": 1},
			"vendor_id":          map[string]any{"type": "string", "minLength": 1},
			"term_of_payment_id": map[string]any{"type": "string", "minLength": 1},
		},
		"required": []any{"subject", "department_id", "vendor_id", "term_of_payment_id"},
	},
	models.SectionAdditional: {
		"type":          "object",
		"minProperties": 1,
	},
	models.SectionItems: {
		"type": "object",
		"properties": map[string]any{
			"items": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":     "object",
					"required": []any{"local_id", "item_id", "description"},
				},
			},
		},
		"required": []any{"items"},
	},
	models.SectionAssignees: {
		"type": "object",
		"properties": map[string]any{
			"assignees": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":     "object",
					"required": []any{"employee_id", "name"},
				},
			},
		},
		"required": []any{"assignees"},
	},
	models.SectionDocuments: {
		"type": "object",
		"properties": map[string]any{
			"documents": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":     "object",
					"required": []any{"file_id", "file_name"},
				},
			},
		},
		"required": []any{"documents"},
	},
}
