package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/drafthook/drafthook/shared/domain"
)

type HistoryService interface {
	Save(record domain.SessionRecord) (string, error)
	List() ([]domain.SessionRecord, error)
	Clear() error
}

type HistoryStorage interface {
	SaveSession(record domain.SessionRecord) error
	ListSessions() ([]domain.SessionRecord, error)
	ClearSessions() error
}

type History struct {
	storage   HistoryStorage
	sanitizer *bluemonday.Policy
}

func NewHistory(storage HistoryStorage) HistoryService {
	// history records end up rendered in a browser, so text content is
	// stripped of any markup before it hits the database
	return &History{storage, bluemonday.StrictPolicy()}
}

// Save assigns the record its uid, sanitizes text content and persists it.
func (h *History) Save(record domain.SessionRecord) (string, error) {
	if record.Uid == "" {
		record.Uid = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	items := make([]domain.DeliveryOutcome, len(record.Items))
	for i, item := range record.Items {
		if item.Type == domain.TypeText {
			item.Content = h.sanitizer.Sanitize(item.Content)
		}
		items[i] = item
	}
	record.Items = items

	if err := h.storage.SaveSession(record); err != nil {
		return "", err
	}
	return record.Uid, nil
}

func (h *History) List() ([]domain.SessionRecord, error) {
	return h.storage.ListSessions()
}

func (h *History) Clear() error {
	return h.storage.ClearSessions()
}
