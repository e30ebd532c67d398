package documents

import (
	"time"

	"sow-backend/internal/extract"
)

// Document represents an uploaded SOW document owned by a user.
type Document struct {
	ID               string
	UserID           string
	FileName         string
	OriginalFilename string
	MimeType         string
	ContentType      string
	SizeBytes        int64
	StorageProvider  string
	StorageKey       string
	ExtractedTextKey string
	ExtractedAt      *time.Time
	ExtractionMeta   *extract.Metadata
	CreatedAt        time.Time
}
