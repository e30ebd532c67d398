package documents

import (
	"time"

	"sow-backend/internal/extract"
)

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	DocumentID string            `json:"documentId"`
	FileName   string            `json:"fileName"`
	MimeType   string            `json:"mimeType"`
	SizeBytes  int64             `json:"sizeBytes"`
	UploadedAt time.Time         `json:"uploadedAt"`
	Extraction *extract.Metadata `json:"extraction,omitempty"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		DocumentID: doc.ID,
		FileName:   doc.FileName,
		MimeType:   doc.MimeType,
		SizeBytes:  doc.SizeBytes,
		UploadedAt: doc.CreatedAt,
		Extraction: doc.ExtractionMeta,
	}
}
