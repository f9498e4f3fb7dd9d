package models

import (
	"path/filepath"
	"strings"
	"time"
)

// FallbackDocumentContent is stored when the gateway reports no content
const FallbackDocumentContent = "Document content processed"

// PreviewLength is the number of content characters shown in listings
const PreviewLength = 150

// Document is the metadata of an uploaded file. It is never mutated after creation.
type Document struct {
	ID         string
	Name       string
	Size       int64
	MediaType  string
	Content    string
	UploadedAt time.Time
	Chunks     int
}

// Preview returns the first PreviewLength characters of the content followed by "..."
func (d Document) Preview() string {
	runes := []rune(d.Content)
	if len(runes) > PreviewLength {
		runes = runes[:PreviewLength]
	}
	return string(runes) + "..."
}

// UploadResult is the decoded /upload-document response. Both fields are optional on the wire.
type UploadResult struct {
	Message    string
	Content    string
	HasContent bool
	Chunks     int
	HasChunks  bool
}

// Resolve turns the optional server fields into a complete Document
func (r UploadResult) Resolve(id, name string, size int64, mediaType string, at time.Time) Document {
	content := FallbackDocumentContent
	if r.HasContent && r.Content != "" {
		content = r.Content
	}
	chunks := 0
	if r.HasChunks && r.Chunks > 0 {
		chunks = r.Chunks
	}
	return Document{
		ID:         id,
		Name:       name,
		Size:       size,
		MediaType:  mediaType,
		Content:    content,
		UploadedAt: at,
		Chunks:     chunks,
	}
}

// RemoteDocuments is the decoded GET /documents response
type RemoteDocuments struct {
	Total     int
	Documents []string
}

// Accepted document types
var supportedDocumentTypes = map[string]string{
	".txt": "text/plain",
	".pdf": "application/pdf",
	".md":  "text/markdown",
}

// MediaTypeForFile returns the media type for an accepted extension
func MediaTypeForFile(name string) (string, bool) {
	mt, ok := supportedDocumentTypes[strings.ToLower(filepath.Ext(name))]
	return mt, ok
}

// SupportedExtensions lists the accepted file extensions
func SupportedExtensions() []string {
	return []string{".txt", ".pdf", ".md"}
}
