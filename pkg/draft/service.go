package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/backend"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/eventbus"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/events"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// Record is the backend's view of a draft: every saved section keyed by
// name, plus the lifecycle status deciding whether it may be resumed.
type Record struct {
	RequestNumber string                                 `json:"requestNumber"`
	Status        models.RequestStatus                   `json:"statusCode"`
	TypeID        int                                    `json:"typeId"`
	SubTypeID     int                                    `json:"subTypeId"`
	Sections      map[models.SectionName]json.RawMessage `json:"sections"`
}

// Service upserts draft sections against the backend. Sections save
// independently so a user can leave after any step and resume later.
type Service struct {
	client *backend.Client
	bus    eventbus.EventPublisher
	logger *slog.Logger
}

// NewService creates a draft service. The event publisher may be nil when
// lifecycle notifications are not wanted (tests, CLI tooling).
func NewService(client *backend.Client, bus eventbus.EventPublisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		client: client,
		bus:    bus,
		logger: logger.With("module", "draft_service"),
	}
}

// SaveSection validates the payload against the section's schema and
// upserts it under the session's request number, allocating the number on
// the first save. Saving the same payload twice results in one stored
// record per section; the backend keys on requestNumber plus section.
func (s *Service) SaveSection(ctx context.Context, session *models.WizardSession, section models.SectionName, payload map[string]any) error {
	if err := validateSection(section, payload); err != nil {
		return err
	}

	if err := s.ensureRequestNumber(ctx, session); err != nil {
		return err
	}

	path := fmt.Sprintf("/purchase-requests/%s/sections/%s", session.RequestNumber, section)

	if _, err := s.client.Post(ctx, path, payload); err != nil {
		// The caller keeps its in-memory state; this is retryable.
		return fmt.Errorf("save section %s: %w", section, err)
	}

	s.logger.InfoContext(ctx, "Saved draft section",
		"request_number", session.RequestNumber, "section", section)

	s.publish(ctx, session.RequestNumber,
		events.NewSectionSaved(session.ID, session.RequestNumber, section))

	return nil
}

// LoadExisting fetches every saved section of a request. Only drafts and
// rejected requests are editable; anything else refuses with
// ErrNotEditable and no retry makes sense.
func (s *Service) LoadExisting(ctx context.Context, requestNumber string) (*Record, error) {
	if strings.TrimSpace(requestNumber) == "" {
		return nil, ErrNoRequestNumber
	}

	data, err := s.client.Get(ctx, "/purchase-requests/"+requestNumber, nil)
	if err != nil {
		return nil, fmt.Errorf("load draft %s: %w", requestNumber, err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", requestNumber, err)
	}

	if !record.Status.Editable() {
		return nil, &NotEditableError{RequestNumber: requestNumber, Status: record.Status}
	}

	return &record, nil
}

// Submit is the one-shot terminal action handing the draft to the
// approval flow. The session leaves the wizard loop afterwards.
func (s *Service) Submit(ctx context.Context, session *models.WizardSession, total, currency string) error {
	if session.RequestNumber == "" {
		return ErrNoRequestNumber
	}

	path := "/purchase-requests/" + session.RequestNumber + "/submit"
	if _, err := s.client.Post(ctx, path, map[string]any{"total": total, "currency": currency}); err != nil {
		return fmt.Errorf("submit %s: %w", session.RequestNumber, err)
	}

	session.Status = models.RequestStatusSubmitted

	s.logger.InfoContext(ctx, "Submitted request", "request_number", session.RequestNumber)

	s.publish(ctx, session.RequestNumber,
		events.NewRequestSubmitted(session.ID, session.RequestNumber, total, currency))

	return nil
}

// Cancel discards the draft on the backend.
func (s *Service) Cancel(ctx context.Context, session *models.WizardSession) error {
	if session.RequestNumber == "" {
		// Nothing was ever persisted; cancelling is local.
		return nil
	}

	path := "/purchase-requests/" + session.RequestNumber + "/cancel"
	if _, err := s.client.Post(ctx, path, nil); err != nil {
		return fmt.Errorf("cancel %s: %w", session.RequestNumber, err)
	}

	s.publish(ctx, session.RequestNumber,
		events.NewRequestCancelled(session.ID, session.RequestNumber))

	return nil
}

func (s *Service) ensureRequestNumber(ctx context.Context, session *models.WizardSession) error {
	if session.RequestNumber != "" {
		return nil
	}

	data, err := s.client.Post(ctx, "/purchase-requests", map[string]any{
		"typeId":    session.TypeID,
		"subTypeId": session.SubTypeID,
	})
	if err != nil {
		return fmt.Errorf("allocate request number: %w", err)
	}

	var allocated struct {
		RequestNumber string `json:"requestNumber"`
	}

	if err := json.Unmarshal(data, &allocated); err != nil {
		return fmt.Errorf("decode request number: %w", err)
	}

	session.RequestNumber = allocated.RequestNumber

	s.logger.InfoContext(ctx, "Allocated request number",
		"session_id", session.ID, "request_number", session.RequestNumber)

	return nil
}

func (s *Service) publish(ctx context.Context, key string, event eventbus.Event) {
	if s.bus == nil {
		return
	}

	if err := s.bus.Publish(ctx, key, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish wizard event",
			"event_type", event.GetType(), "error", err)
	}
}

func validateSection(section models.SectionName, payload map[string]any) error {
	schema, ok := sectionSchemas[section]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSection, section)
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("validate section %s: %w", section, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return &SectionValidationError{Section: section, Detail: strings.Join(details, "; ")}
	}

	return nil
}
