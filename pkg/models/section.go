package models

// SectionName identifies one independently saved slice of a draft.
type SectionName string

const (
	SectionBasic      SectionName = "basic"
	SectionAdditional SectionName = "additional"
	SectionItems      SectionName = "items"
	SectionAssignees  SectionName = "assignees"
	SectionDocuments  SectionName = "documents"
)

// SectionNames lists every draft section in wizard order.
func SectionNames() []SectionName {
	return []SectionName{
		SectionBasic,
		SectionAdditional,
		SectionItems,
		SectionAssignees,
		SectionDocuments,
	}
}

// SectionForStep maps an editable wizard step to the draft section it
// persists into. The summary step saves nothing.
func SectionForStep(step StepID) (SectionName, bool) {
	switch step {
	case StepBasicInformation:
		return SectionBasic, true
	case StepAdditionalInformation:
		return SectionAdditional, true
	case StepItems:
		return SectionItems, true
	case StepAssignees:
		return SectionAssignees, true
	case StepDocuments:
		return SectionDocuments, true
	default:
		return "", false
	}
}
