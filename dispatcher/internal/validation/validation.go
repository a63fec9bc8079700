// Package validation checks staged drafts against content limits before any
// network traffic happens.
package validation

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"unicode/utf8"

	_ "golang.org/x/image/webp"

	"github.com/drafthook/drafthook/dispatcher/internal/draft"
	"github.com/drafthook/drafthook/shared/domain"
)

const (
	MaxItemsPerDestination = 100
	MaxTextLength          = 2000
	MaxFileBytes           = 8 * 1024 * 1024
)

type Result struct {
	IsValid      bool
	ErrorMessage string
}

func valid() Result {
	return Result{IsValid: true}
}

func invalid(format string, args ...any) Result {
	return Result{ErrorMessage: fmt.Sprintf(format, args...)}
}

// Validate checks every draft in the store, first failure wins. Counts are
// checked for all destinations before any per-item rule runs, matching the
// order errors should surface in.
func Validate(store *draft.Store) Result {
	for _, url := range store.Destinations() {
		d, _ := store.Get(url)
		n := len(d.Items)
		if n == 0 {
			return invalid("Destination %q has no messages, images or audio to send", d.Name)
		}
		if n > MaxItemsPerDestination {
			return invalid("Destination %q has too many items (%d), maximum is %d per destination", d.Name, n, MaxItemsPerDestination)
		}
	}

	for _, url := range store.Destinations() {
		d, _ := store.Get(url)
		for i, item := range d.Items {
			if res := validateItem(d.Name, i+1, item); !res.IsValid {
				return res
			}
		}
	}

	return valid()
}

func validateItem(destination string, position int, item domain.ContentItem) Result {
	if !item.IsBinary() {
		text := strings.TrimSpace(item.Content)
		if text == "" {
			return invalid("Message %d in destination %q is empty", position, destination)
		}
		// the limit is characters, not bytes
		if n := utf8.RuneCountInString(text); n > MaxTextLength {
			return invalid("Message %d in destination %q is too long (%d characters), maximum is %d", position, destination, n, MaxTextLength)
		}
		return valid()
	}

	kind := "Audio"
	if item.IsImage {
		kind = "Image"
	}

	_, data, err := domain.DecodeDataURI(item.Content)
	if err != nil {
		return invalid("%s %d in destination %q has an unreadable payload: %v", kind, position, destination, err)
	}
	if len(data) > MaxFileBytes {
		return invalid("%s %d in destination %q is too large (%.2fMB), maximum is 8MB", kind, position, destination, float64(len(data))/(1024*1024))
	}
	if item.IsImage {
		// DecodeConfig only reads the header, so crafted dimensions never
		// trigger a full decode here.
		if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
			return invalid("Image %d in destination %q is not a recognized png/jpeg/gif/webp image", position, destination)
		}
	}
	return valid()
}
