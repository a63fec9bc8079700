package delivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/drafthook/drafthook/shared/domain"
)

// Embed is the decorated message envelope webhook endpoints accept.
type Embed struct {
	Color       int          `json:"color"`
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

const (
	ColorSuccess = 0x00ff00
	ColorFailure = 0xff0000
)

// Request is a fully buffered HTTP payload, so the sender can replay it on
// every retry.
type Request struct {
	ContentType string
	Body        []byte
}

// JSONPayload wraps embeds into the {"embeds": [...]} JSON body.
func JSONPayload(embeds ...Embed) (Request, error) {
	body, err := json.Marshal(struct {
		Embeds []Embed `json:"embeds"`
	}{embeds})
	if err != nil {
		return Request{}, fmt.Errorf("failed to marshal embed payload: %w", err)
	}
	return Request{ContentType: "application/json", Body: body}, nil
}

// TextPayload builds the embed envelope for a text item: green accent and a
// footer stamping who sent it and when.
func TextPayload(text, footer string, now time.Time) (Request, error) {
	return JSONPayload(Embed{
		Color:       ColorSuccess,
		Description: text,
		Footer:      &EmbedFooter{Text: fmt.Sprintf("%s ・ %s", footer, now.Format("2006-01-02 15:04:05"))},
	})
}

// FilePayload builds the multipart form body for a binary item, decoding its
// data URI and uploading the blob under the item's file name.
func FilePayload(item domain.ContentItem) (Request, error) {
	_, data, err := domain.DecodeDataURI(item.Content)
	if err != nil {
		return Request{}, fmt.Errorf("failed to decode file content: %w", err)
	}

	name := item.FileName
	if name == "" && item.IsImage {
		name = "image.png"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", name)
	if err != nil {
		return Request{}, fmt.Errorf("failed to build form file: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return Request{}, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return Request{}, fmt.Errorf("failed to finalize form body: %w", err)
	}

	return Request{ContentType: w.FormDataContentType(), Body: buf.Bytes()}, nil
}
