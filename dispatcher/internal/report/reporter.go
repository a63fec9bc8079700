// Package report runs one full dispatch session: it drains the draft store
// through the delivery engine, records outcomes, persists the session and
// emits best-effort audit logs.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/drafthook/drafthook/dispatcher/internal/delivery"
	"github.com/drafthook/drafthook/dispatcher/internal/draft"
	"github.com/drafthook/drafthook/shared/domain"
)

var (
	// ErrAlreadySending rejects a dispatch started while another is running.
	ErrAlreadySending = errors.New("a dispatch is already in progress, please wait")
	// ErrNoDrafts rejects a dispatch over an empty store.
	ErrNoDrafts = errors.New("no drafts to send")
)

// HistoryService persists finished session records.
type HistoryService interface {
	Save(record domain.SessionRecord) error
}

// DeliveryEngine drains one destination's draft.
type DeliveryEngine interface {
	SendToDestination(ctx context.Context, url string, d *draft.Draft) (delivery.DestinationResult, error)
}

// AuditSender posts audit log payloads.
type AuditSender interface {
	Send(ctx context.Context, url string, payload delivery.Request) error
}

// DestinationFailure names a destination and the 1-based positions of its
// failed items.
type DestinationFailure struct {
	Name      string
	Positions []int
}

// Summary is the outcome of one session.
type Summary struct {
	Record   domain.SessionRecord
	Failures []DestinationFailure
	Cleared  bool // whether the store was emptied (full success)
}

// FailureMessage renders the per-destination failure summary shown to the
// user, or "" when everything arrived.
func (s *Summary) FailureMessage() string {
	if len(s.Failures) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Some items failed to send:\n")
	for _, f := range s.Failures {
		positions := make([]string, len(f.Positions))
		for i, p := range f.Positions {
			positions[i] = fmt.Sprint(p)
		}
		fmt.Fprintf(&b, "\n%s: item %s", f.Name, strings.Join(positions, ", "))
	}
	return b.String()
}

type Config struct {
	LoggingWebhook   string        // audit log endpoint; empty disables auditing
	Footer           string        // embed footer prefix
	DestinationDelay time.Duration // pause between destinations
	AuditDelay       time.Duration // pause between audit posts
}

// Reporter owns the session lifecycle. A single in-flight flag guards against
// concurrent dispatches; the store itself is not locked.
type Reporter struct {
	engine  DeliveryEngine
	sender  AuditSender
	history HistoryService
	cfg     Config
	logger  *slog.Logger

	sending atomic.Bool

	mu     sync.Mutex
	recent []domain.SessionRecord

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func New(engine DeliveryEngine, sender AuditSender, history HistoryService, cfg Config, logger *slog.Logger) *Reporter {
	return &Reporter{
		engine:  engine,
		sender:  sender,
		history: history,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		sleep:   sleepContext,
	}
}

// destinationStat feeds one audit log message.
type destinationStat struct {
	Name    string
	Total   int
	Success int
	Failed  int
	Text    int
	Image   int
	Audio   int
}

// Dispatch drains the whole store, one destination at a time. The store is
// cleared only when every single item succeeded; otherwise it is left as-is
// and the summary names what failed.
func (r *Reporter) Dispatch(ctx context.Context, store *draft.Store) (*Summary, error) {
	if !r.sending.CompareAndSwap(false, true) {
		return nil, ErrAlreadySending
	}
	defer r.sending.Store(false)

	if store.Len() == 0 {
		return nil, ErrNoDrafts
	}

	record := domain.SessionRecord{Timestamp: r.now()}
	var failures []DestinationFailure
	var stats []destinationStat

	for _, url := range store.Destinations() {
		d, _ := store.Get(url)

		res, err := r.engine.SendToDestination(ctx, url, d)
		if err != nil {
			return nil, err
		}

		record.Items = append(record.Items, res.Outcomes...)
		record.Stats.Total += len(d.Items)
		record.Stats.Success += res.SuccessCount
		record.Stats.Failed += len(res.Errors)

		if len(res.Errors) > 0 {
			f := DestinationFailure{Name: d.Name}
			for _, ie := range res.Errors {
				f.Positions = append(f.Positions, ie.Position)
			}
			failures = append(failures, f)
		}
		stats = append(stats, summarize(d, res))

		if err := r.sleep(ctx, r.cfg.DestinationDelay); err != nil {
			return nil, err
		}
	}

	r.appendRecent(record)

	if r.history != nil {
		if err := r.history.Save(record); err != nil {
			r.logger.Error("failed to persist session history", "error", err)
		}
	}

	r.emitAuditLogs(ctx, stats)

	summary := &Summary{Record: record, Failures: failures}
	if record.Stats.Failed == 0 {
		store.Clear()
		summary.Cleared = true
		r.logger.Info("all items delivered", "destinations", len(stats), "items", record.Stats.Total)
	} else {
		r.logger.Warn("session finished with failures", "failed", record.Stats.Failed, "total", record.Stats.Total)
	}
	return summary, nil
}

// Recent returns the bounded in-memory log of finished sessions, oldest first.
func (r *Reporter) Recent() []domain.SessionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.SessionRecord, len(r.recent))
	copy(out, r.recent)
	return out
}

func (r *Reporter) appendRecent(record domain.SessionRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recent = append(r.recent, record)
	if len(r.recent) > domain.MaxHistoryEntries {
		r.recent = r.recent[len(r.recent)-domain.MaxHistoryEntries:]
	}
}

func summarize(d *draft.Draft, res delivery.DestinationResult) destinationStat {
	stat := destinationStat{
		Name:    d.Name,
		Total:   len(d.Items),
		Success: res.SuccessCount,
		Failed:  len(res.Errors),
	}
	for _, item := range d.Items {
		switch item.Type() {
		case domain.TypeImage:
			stat.Image++
		case domain.TypeAudio:
			stat.Audio++
		default:
			stat.Text++
		}
	}
	return stat
}

// emitAuditLogs posts one summary embed per destination to the logging
// webhook. Failures here are swallowed: auditing never blocks the session
// outcome.
func (r *Reporter) emitAuditLogs(ctx context.Context, stats []destinationStat) {
	if r.cfg.LoggingWebhook == "" || r.sender == nil {
		return
	}
	for _, stat := range stats {
		color := delivery.ColorSuccess
		if stat.Failed > 0 {
			color = delivery.ColorFailure
		}
		payload, err := delivery.JSONPayload(delivery.Embed{
			Color: color,
			Title: "Delivery Log",
			Description: fmt.Sprintf(
				"**Destination:** `%s`\n**Sent:** `%d / %d`\n**Failed:** `%d`\n\n**Text:** `%d`\n**Image:** `%d`\n**Audio:** `%d`",
				stat.Name, stat.Success, stat.Total, stat.Failed, stat.Text, stat.Image, stat.Audio),
			Footer:    &delivery.EmbedFooter{Text: r.cfg.Footer + " ・ log"},
			Timestamp: r.now().Format(time.RFC3339),
		})
		if err != nil {
			r.logger.Error("failed to build audit payload", "error", err)
			continue
		}
		if err := r.sender.Send(ctx, r.cfg.LoggingWebhook, payload); err != nil {
			r.logger.Error("failed to send audit log", "destination", stat.Name, "error", err)
		}
		if err := r.sleep(ctx, r.cfg.AuditDelay); err != nil {
			return
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
