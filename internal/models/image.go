package models

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ImagePayload is an image together with its media type. Data may be absent when
// the bytes were never produced or were offloaded to storage; check Present first.
type ImagePayload struct {
	MimeType    string `json:"mime_type,omitempty"`
	Data        []byte `json:"data,omitempty"`
	StoragePath string `json:"storage_path,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Present reports whether pixel data is held in memory.
func (p ImagePayload) Present() bool {
	return len(p.Data) > 0
}

// Stored reports whether the bytes can be fetched from image storage.
func (p ImagePayload) Stored() bool {
	return p.StoragePath != ""
}

// DataURL renders the payload as a data: reference for direct display.
func (p ImagePayload) DataURL() string {
	if !p.Present() {
		return ""
	}
	return fmt.Sprintf("data:%s;base64,%s", p.MimeType, base64.StdEncoding.EncodeToString(p.Data))
}

// WithoutData drops the in-memory bytes, keeping the storage reference.
func (p ImagePayload) WithoutData() ImagePayload {
	p.Data = nil
	return p
}

// Clone returns a deep copy.
func (p ImagePayload) Clone() ImagePayload {
	if p.Data != nil {
		p.Data = append([]byte(nil), p.Data...)
	}
	return p
}

// Extension maps the media type to a file extension for storage paths.
func (p ImagePayload) Extension() string {
	switch strings.ToLower(p.MimeType) {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "jpg"
	}
}
