package domain

type ItemType string

const (
	TypeText  ItemType = "text"
	TypeImage ItemType = "image"
	TypeAudio ItemType = "audio"
)

// ContentItem is a single text, image or audio unit staged for delivery.
// Binary items carry their payload as a base64 data URI in Content and a
// FileName to upload under; text items never carry a FileName.
type ContentItem struct {
	Content  string `json:"content"`
	IsImage  bool   `json:"isImage"`
	IsAudio  bool   `json:"isAudio"`
	FileName string `json:"fileName,omitempty"`
}

func (i ContentItem) Type() ItemType {
	switch {
	case i.IsImage:
		return TypeImage
	case i.IsAudio:
		return TypeAudio
	default:
		return TypeText
	}
}

// IsBinary reports whether the item payload is a data URI rather than plain text.
func (i ContentItem) IsBinary() bool {
	return i.IsImage || i.IsAudio
}

// DisplayContent is what ends up in delivery outcomes: the text itself for
// text items, the file name for binary ones.
func (i ContentItem) DisplayContent() string {
	if i.IsBinary() {
		return i.FileName
	}
	return i.Content
}
