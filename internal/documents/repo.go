package documents

import (
	"context"
	"time"

	"sow-backend/internal/extract"
)

// DocumentsRepo defines persistence operations for documents.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, userId, documentID string) (Document, error)
	GetCurrentByUser(ctx context.Context, userId string) (Document, error)
	ListByUser(ctx context.Context, userId string, limit, offset int) ([]Document, error)
	UpdateExtraction(ctx context.Context, userId, documentID, extractedKey string, extractedAt time.Time, meta extract.Metadata) error
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}
