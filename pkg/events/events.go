// Package events defines event types for wizard lifecycle notifications.
package events

import (
	"time"

	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic carries every wizard lifecycle event.
const Topic = "procurement.wizard.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	SessionStartedEvent   EventType = "wizard.session.started"
	SectionSavedEvent     EventType = "wizard.section.saved"
	RequestSubmittedEvent EventType = "wizard.request.submitted"
	RequestCancelledEvent EventType = "wizard.request.cancelled"
)

type BaseEvent struct {
	ID            string         `json:"id"`
	Type          EventType      `json:"type"`
	Timestamp     time.Time      `json:"timestamp"`
	SessionID     string         `json:"session_id"`
	RequestNumber string         `json:"request_number,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

type SessionStarted struct {
	BaseEvent

	TypeID    int `json:"type_id,omitempty"`
	SubTypeID int `json:"sub_type_id,omitempty"`
}

func (e SessionStarted) GetType() EventType {
	return SessionStartedEvent
}

func NewSessionStarted(sessionID string, typeID, subTypeID int) SessionStarted {
	return SessionStarted{
		BaseEvent: newBaseEvent(SessionStartedEvent, sessionID, ""),
		TypeID:    typeID,
		SubTypeID: subTypeID,
	}
}

type SectionSaved struct {
	BaseEvent

	Section models.SectionName `json:"section"`
}

func (e SectionSaved) GetType() EventType {
	return SectionSavedEvent
}

func NewSectionSaved(sessionID, requestNumber string, section models.SectionName) SectionSaved {
	return SectionSaved{
		BaseEvent: newBaseEvent(SectionSavedEvent, sessionID, requestNumber),
		Section:   section,
	}
}

type RequestSubmitted struct {
	BaseEvent

	Total    string `json:"total,omitempty"`
	Currency string `json:"currency,omitempty"`
}

func (e RequestSubmitted) GetType() EventType {
	return RequestSubmittedEvent
}

func NewRequestSubmitted(sessionID, requestNumber, total, currency string) RequestSubmitted {
	return RequestSubmitted{
		BaseEvent: newBaseEvent(RequestSubmittedEvent, sessionID, requestNumber),
		Total:     total,
		Currency:  currency,
	}
}

type RequestCancelled struct {
	BaseEvent
}

func (e RequestCancelled) GetType() EventType {
	return RequestCancelledEvent
}

func NewRequestCancelled(sessionID, requestNumber string) RequestCancelled {
	return RequestCancelled{
		BaseEvent: newBaseEvent(RequestCancelledEvent, sessionID, requestNumber),
	}
}

func newBaseEvent(eventType EventType, sessionID, requestNumber string) BaseEvent {
	return BaseEvent{
		ID:            uuid.New().String(),
		Type:          eventType,
		Timestamp:     time.Now().UTC(),
		SessionID:     sessionID,
		RequestNumber: requestNumber,
	}
}
