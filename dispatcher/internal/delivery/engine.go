package delivery

import (
	"context"
	"log/slog"
	"time"

	"github.com/drafthook/drafthook/dispatcher/internal/draft"
	"github.com/drafthook/drafthook/shared/domain"
)

// ItemError pairs a failed item with its terminal error. Position is 1-based,
// matching how positions are reported to the user.
type ItemError struct {
	Position int
	Item     domain.ContentItem
	Err      error
}

// DestinationResult summarizes one destination's drain: how many items
// arrived, which failed and the outcome recorded for every item.
type DestinationResult struct {
	SuccessCount int
	Errors       []ItemError
	Outcomes     []domain.DeliveryOutcome
}

// Engine sends one destination's items strictly in list order. A failed item
// never aborts the rest of the queue.
type Engine struct {
	sender    *Sender
	itemDelay time.Duration
	footer    string
	logger    *slog.Logger

	// Progress, when set, is called after each successful item with
	// (items completed, total items) for the destination.
	Progress func(done, total int)

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewEngine(sender *Sender, itemDelay time.Duration, footer string, logger *slog.Logger) *Engine {
	return &Engine{
		sender:    sender,
		itemDelay: itemDelay,
		footer:    footer,
		logger:    logger,
		now:       time.Now,
		sleep:     sleepContext,
	}
}

// SendToDestination drains the draft into the destination URL. The returned
// error is non-nil only when the context dies; item failures are collected in
// the result instead.
func (e *Engine) SendToDestination(ctx context.Context, url string, d *draft.Draft) (DestinationResult, error) {
	var res DestinationResult
	total := len(d.Items)

	for i, item := range d.Items {
		// throttle before every send, not a retry delay
		if err := e.sleep(ctx, e.itemDelay); err != nil {
			return res, err
		}

		err := e.sendItem(ctx, url, item)
		if err != nil && ctx.Err() != nil {
			return res, ctx.Err()
		}

		outcome := domain.DeliveryOutcome{
			Type:        item.Type(),
			Content:     item.DisplayContent(),
			Destination: d.Name,
			Timestamp:   e.now(),
		}
		if err != nil {
			e.logger.Error("item delivery failed", "destination", d.Name, "position", i+1, "error", err)
			outcome.Status = domain.StatusFailed
			outcome.Error = err.Error()
			res.Errors = append(res.Errors, ItemError{Position: i + 1, Item: item, Err: err})
		} else {
			outcome.Status = domain.StatusSuccess
			res.SuccessCount++
			if e.Progress != nil {
				e.Progress(i+1, total)
			}
		}
		res.Outcomes = append(res.Outcomes, outcome)
	}

	return res, nil
}

func (e *Engine) sendItem(ctx context.Context, url string, item domain.ContentItem) error {
	var payload Request
	var err error
	if item.IsBinary() {
		payload, err = FilePayload(item)
	} else {
		payload, err = TextPayload(item.Content, e.footer, e.now())
	}
	if err != nil {
		return err
	}
	return e.sender.Send(ctx, url, payload)
}
