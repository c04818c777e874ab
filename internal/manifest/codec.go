package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/gophrelease/internal/common"
)

// Marshal renders m with two-space indentation and without HTML escaping, so
// URLs containing '&' are written literally. No trailing newline is emitted.
func Marshal(m Manifest) ([]byte, error) {
	if m.Updates == nil {
		m.Updates = map[string]UpdateRecord{}
	}
	if m.RequiredAndroidVersion == "" {
		m.RequiredAndroidVersion = RequiredAndroidVersion
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Parse decodes a manifest document. Records written by the older schema
// without forced/automatic decode with both flags false.
func Parse(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, common.NewValidationError("", fmt.Sprintf("invalid JSON file: %v", err))
	}
	if m.Updates == nil {
		m.Updates = map[string]UpdateRecord{}
	}
	return m, nil
}
