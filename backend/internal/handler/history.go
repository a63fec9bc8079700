package handler

import (
	"net/http"
	"time"

	"github.com/drafthook/drafthook/shared/domain"
	"github.com/drafthook/drafthook/shared/utils"
)

type outcomeDTO struct {
	Type        string    `json:"type" validate:"required,oneof=text image audio"`
	Content     string    `json:"content"`
	Destination string    `json:"webhook" validate:"required"`
	Status      string    `json:"status" validate:"required,oneof=success failed"`
	Error       string    `json:"error"`
	Timestamp   time.Time `json:"timestamp"`
}

type statsDTO struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

type saveHistoryRequest struct {
	Timestamp time.Time    `json:"timestamp"`
	Items     []outcomeDTO `json:"items" validate:"required,min=1,dive"`
	Stats     statsDTO     `json:"stats"`
}

// SaveHistory handles POST /api/history.
func (h *Handler) SaveHistory(w http.ResponseWriter, r *http.Request) {
	var req saveHistoryRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	uid, err := h.history.Save(toDomain(req))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"uid": uid})
}

// GetHistory handles GET /api/history.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.history.List()
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if records == nil {
		records = []domain.SessionRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// ClearHistory handles DELETE /api/history.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.history.Clear(); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func toDomain(req saveHistoryRequest) domain.SessionRecord {
	record := domain.SessionRecord{
		Timestamp: req.Timestamp,
		Stats: domain.SessionStats{
			Total:   req.Stats.Total,
			Success: req.Stats.Success,
			Failed:  req.Stats.Failed,
		},
	}
	for _, item := range req.Items {
		record.Items = append(record.Items, domain.DeliveryOutcome{
			Type:        domain.ItemType(item.Type),
			Content:     item.Content,
			Destination: item.Destination,
			Status:      domain.DeliveryStatus(item.Status),
			Error:       item.Error,
			Timestamp:   item.Timestamp,
		})
	}
	return record
}
