package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeDataURI splits a "data:<mime>;base64,<payload>" URI into its MIME type
// and decoded bytes. Binary content items are required to be self-describing,
// so anything else is rejected.
func DecodeDataURI(uri string) (mimeType string, data []byte, err error) {
	if !strings.HasPrefix(uri, "data:") {
		return "", nil, fmt.Errorf("not a data URI")
	}
	meta, payload, found := strings.Cut(uri[len("data:"):], ",")
	if !found {
		return "", nil, fmt.Errorf("malformed data URI: missing payload separator")
	}
	mimeType = strings.TrimSuffix(meta, ";base64")
	if mimeType == meta {
		return "", nil, fmt.Errorf("unsupported data URI encoding: %q", meta)
	}
	if mimeType == "" {
		return "", nil, fmt.Errorf("data URI has no MIME type")
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode data URI payload: %w", err)
	}
	return mimeType, data, nil
}
