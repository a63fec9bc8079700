package domain

import "time"

type DeliveryStatus string

const (
	StatusSuccess DeliveryStatus = "success"
	StatusFailed  DeliveryStatus = "failed"
)

// DeliveryOutcome records the fate of a single item: what it was, where it
// went and whether it arrived. Content holds the text for text items and the
// file name for binary ones.
type DeliveryOutcome struct {
	Type        ItemType       `json:"type"`
	Content     string         `json:"content"`
	Destination string         `json:"webhook"`
	Status      DeliveryStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

type SessionStats struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// SessionRecord covers one complete dispatch over all destinations. It is
// immutable once the session finishes; Uid is assigned by the history backend
// at persist time.
type SessionRecord struct {
	Uid       string            `json:"uid,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Items     []DeliveryOutcome `json:"items"`
	Stats     SessionStats      `json:"stats"`
}

// MaxHistoryEntries bounds every history tier: the in-memory session log, the
// local fallback cache and what the backend hands back on a list.
const MaxHistoryEntries = 100
