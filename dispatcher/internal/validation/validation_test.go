package validation

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drafthook/drafthook/dispatcher/internal/draft"
	"github.com/drafthook/drafthook/shared/domain"
)

// 1x1 transparent PNG
const tinyPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func pngItem(name string) domain.ContentItem {
	return domain.ContentItem{Content: "data:image/png;base64," + tinyPNG, IsImage: true, FileName: name}
}

func audioItem(data []byte) domain.ContentItem {
	return domain.ContentItem{
		Content: "data:audio/mpeg;base64," + base64.StdEncoding.EncodeToString(data),
		IsAudio: true, FileName: "clip.mp3",
	}
}

func storeWith(items ...domain.ContentItem) *draft.Store {
	s := draft.NewStore()
	for _, item := range items {
		s.Add("https://hook/a", "General", item)
	}
	return s
}

func TestValidateAcceptsGoodDrafts(t *testing.T) {
	s := storeWith(
		domain.ContentItem{Content: "hello"},
		pngItem("pic.png"),
		audioItem([]byte("mp3 bytes")),
	)
	res := Validate(s)
	assert.True(t, res.IsValid)
	assert.Empty(t, res.ErrorMessage)
}

func TestValidateTooManyItems(t *testing.T) {
	s := draft.NewStore()
	for i := 0; i <= MaxItemsPerDestination; i++ {
		s.Add("https://hook/a", "General", domain.ContentItem{Content: "msg"})
	}
	res := Validate(s)
	require.False(t, res.IsValid)
	assert.Contains(t, res.ErrorMessage, "General")
	assert.Contains(t, res.ErrorMessage, "too many items (101)")
}

func TestValidateTextRules(t *testing.T) {
	tests := []struct {
		name    string
		content string
		valid   bool
		substr  string
	}{
		{"plain text", "hello", true, ""},
		{"whitespace only", "   \n\t ", false, "is empty"},
		{"exactly at limit", strings.Repeat("a", MaxTextLength), true, ""},
		{"over limit", strings.Repeat("a", MaxTextLength+1), false, "too long (2001 characters)"},
		{"padded to under limit", " " + strings.Repeat("a", MaxTextLength) + " ", true, ""},
		{"multibyte at limit", strings.Repeat("é", MaxTextLength), true, ""},
		{"multibyte over limit", strings.Repeat("日", MaxTextLength+1), false, "too long (2001 characters)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(storeWith(domain.ContentItem{Content: tt.content}))
			assert.Equal(t, tt.valid, res.IsValid)
			if !tt.valid {
				assert.Contains(t, res.ErrorMessage, "Message 1")
				assert.Contains(t, res.ErrorMessage, tt.substr)
			}
		})
	}
}

func TestValidateBinaryTooLarge(t *testing.T) {
	res := Validate(storeWith(audioItem(make([]byte, MaxFileBytes+1))))
	require.False(t, res.IsValid)
	assert.Contains(t, res.ErrorMessage, "Audio 1")
	assert.Contains(t, res.ErrorMessage, "too large")
}

func TestValidateBinaryAtLimit(t *testing.T) {
	res := Validate(storeWith(audioItem(make([]byte, MaxFileBytes))))
	assert.True(t, res.IsValid)
}

func TestValidateMalformedDataURI(t *testing.T) {
	res := Validate(storeWith(domain.ContentItem{Content: "not-a-data-uri", IsImage: true, FileName: "x.png"}))
	require.False(t, res.IsValid)
	assert.Contains(t, res.ErrorMessage, "Image 1")
	assert.Contains(t, res.ErrorMessage, "unreadable payload")
}

func TestValidateNonImagePayload(t *testing.T) {
	bogus := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("definitely not a png"))
	res := Validate(storeWith(domain.ContentItem{Content: bogus, IsImage: true, FileName: "x.png"}))
	require.False(t, res.IsValid)
	assert.Contains(t, res.ErrorMessage, "not a recognized")
}

func TestValidateReportsPositionAndDestination(t *testing.T) {
	s := draft.NewStore()
	s.Add("https://hook/a", "Announcements", domain.ContentItem{Content: "fine"})
	s.Add("https://hook/a", "Announcements", domain.ContentItem{Content: "  "})
	res := Validate(s)
	require.False(t, res.IsValid)
	assert.Contains(t, res.ErrorMessage, `Message 2 in destination "Announcements"`)
}

func TestValidateCountRulesRunBeforeItemRules(t *testing.T) {
	s := draft.NewStore()
	// first destination has a bad item, second has too many items; the count
	// pass covers all destinations first, so the count error wins
	s.Add("https://hook/a", "A", domain.ContentItem{Content: "  "})
	for i := 0; i <= MaxItemsPerDestination; i++ {
		s.Add("https://hook/b", "B", domain.ContentItem{Content: "msg"})
	}
	res := Validate(s)
	require.False(t, res.IsValid)
	assert.Contains(t, res.ErrorMessage, "too many items")
}
