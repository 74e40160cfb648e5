package models

// SectionKind is the flavour of the conditional additional-information
// step: which extra inputs the step carries.
type SectionKind string

const (
	SectionKindBilling   SectionKind = "billing"   // Billing period input
	SectionKindSubscribe SectionKind = "subscribe" // Subscription period, drives bulk quantity
	SectionKindSite      SectionKind = "site"      // Site assignment
)

// TypePair is a (request type, sub-type) combination.
type TypePair struct {
	TypeID    int
	SubTypeID int
}

// conditionalSections is the single authoritative rule table deciding
// whether a request type/sub-type combination carries the conditional
// additional-information step, and which flavour it gets. Combinations
// absent from the table have no additional step.
var conditionalSections = map[TypePair]SectionKind{
	{TypeID: 6, SubTypeID: 1}: SectionKindSubscribe,
	{TypeID: 6, SubTypeID: 2}: SectionKindBilling,
	{TypeID: 6, SubTypeID: 3}: SectionKindBilling,
	{TypeID: 4, SubTypeID: 1}: SectionKindSite,
	{TypeID: 4, SubTypeID: 2}: SectionKindSite,
}

// ConditionalSectionFor returns the additional-information flavour for the
// given type/sub-type pair, if any.
func ConditionalSectionFor(typeID, subTypeID int) (SectionKind, bool) {
	kind, ok := conditionalSections[TypePair{TypeID: typeID, SubTypeID: subTypeID}]

	return kind, ok
}

// RequiresSubscriptionPeriod reports whether the pair is a
// subscription-type request, where the billing period length overrides
// every line item's quantity.
func RequiresSubscriptionPeriod(typeID, subTypeID int) bool {
	kind, ok := ConditionalSectionFor(typeID, subTypeID)

	return ok && kind == SectionKindSubscribe
}
