package models

import "time"

// EventType classifies an analytics interaction.
type EventType string

// Supported interaction event types.
const (
	EventView     EventType = "view"
	EventClick    EventType = "click"
	EventDownload EventType = "download"
	EventContact  EventType = "contact"
	EventShare    EventType = "share"
)

// ValidEventType reports whether t is one of the supported event types.
func ValidEventType(t EventType) bool {
	switch t {
	case EventView, EventClick, EventDownload, EventContact, EventShare:
		return true
	}
	return false
}

// AnalyticsEvent is a single immutable interaction record.
// Events are appended to the tracker's in-memory log and never mutated.
type AnalyticsEvent struct {
	Metadata       map[string]any `json:"metadata,omitempty"`
	ID             string         `json:"id"`
	Type           EventType      `json:"type"`
	Resource       string         `json:"resource"`
	ResourceID     string         `json:"resource_id,omitempty"`
	AnonymizedAddr string         `json:"anonymized_addr,omitempty"`
	Referrer       string         `json:"referrer,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}
