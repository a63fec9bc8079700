package delivery

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drafthook/drafthook/dispatcher/internal/draft"
	"github.com/drafthook/drafthook/shared/domain"
)

// failing items carry "boom" in their text so the test server can reject them.
func testEngine(t *testing.T) (*Engine, *httptest.Server, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), "boom") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	var sleeps []time.Duration
	sleep := func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return ctx.Err()
	}

	sender := NewSender(10*time.Second, 3, 2*time.Second, slog.Default())
	sender.sleep = sleep
	e := NewEngine(sender, time.Second, "drafthook", slog.Default())
	e.sleep = sleep
	e.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return e, srv, &sleeps
}

func textItem(s string) domain.ContentItem {
	return domain.ContentItem{Content: s}
}

func TestSendToDestinationAllSucceed(t *testing.T) {
	e, srv, sleeps := testEngine(t)
	var progress [][2]int
	e.Progress = func(done, total int) { progress = append(progress, [2]int{done, total}) }

	d := &draft.Draft{Name: "alerts", Items: []domain.ContentItem{textItem("one"), textItem("two")}}
	res, err := e.SendToDestination(context.Background(), srv.URL, d)
	require.NoError(t, err)

	assert.Equal(t, 2, res.SuccessCount)
	assert.Empty(t, res.Errors)
	require.Len(t, res.Outcomes, 2)
	assert.Equal(t, domain.StatusSuccess, res.Outcomes[0].Status)
	assert.Equal(t, "alerts", res.Outcomes[0].Destination)
	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, progress)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, *sleeps, "one throttle per item, no retries")
}

func TestSendToDestinationFailureDoesNotAbortQueue(t *testing.T) {
	e, srv, _ := testEngine(t)

	d := &draft.Draft{Name: "alerts", Items: []domain.ContentItem{
		textItem("one"),
		textItem("boom"),
		textItem("three"),
	}}
	res, err := e.SendToDestination(context.Background(), srv.URL, d)
	require.NoError(t, err)

	assert.Equal(t, 2, res.SuccessCount)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 2, res.Errors[0].Position)
	require.Len(t, res.Outcomes, 3)
	assert.Equal(t, domain.StatusSuccess, res.Outcomes[0].Status)
	assert.Equal(t, domain.StatusFailed, res.Outcomes[1].Status)
	assert.NotEmpty(t, res.Outcomes[1].Error)
	assert.Equal(t, domain.StatusSuccess, res.Outcomes[2].Status)
}

func TestSendToDestinationRecordsBinaryOutcomes(t *testing.T) {
	e, srv, _ := testEngine(t)

	d := &draft.Draft{Name: "media", Items: []domain.ContentItem{
		{Content: "data:image/png;base64,aGVsbG8=", IsImage: true, FileName: "shot.png"},
	}}
	res, err := e.SendToDestination(context.Background(), srv.URL, d)
	require.NoError(t, err)

	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, domain.TypeImage, res.Outcomes[0].Type)
	assert.Equal(t, "shot.png", res.Outcomes[0].Content, "binary outcomes log the file name, not the payload")
}

func TestSendToDestinationStopsOnContextCancel(t *testing.T) {
	e, srv, _ := testEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := &draft.Draft{Name: "alerts", Items: []domain.ContentItem{textItem("one")}}
	res, err := e.SendToDestination(ctx, srv.URL, d)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Outcomes)
}
