package audits

import (
	"context"
	"time"

	"sow-backend/internal/audits/compliance"
)

// Repo defines persistence operations for audits.
type Repo interface {
	Create(ctx context.Context, audit Audit) error
	GetByID(ctx context.Context, auditID string) (Audit, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Audit, error)
	UpdateStatusAndError(ctx context.Context, auditID, status string, errorCode *string, errorMessage *string, errorRetryable *bool, startedAt *time.Time, completedAt *time.Time) error
	UpdateAnalysisRaw(ctx context.Context, auditID string, raw any) error
	UpdateAuditResult(ctx context.Context, auditID string, update ResultUpdate) error
}

// ResultUpdate carries the finalized audit outcome in one write. The audit is
// marked completed as part of the same update.
type ResultUpdate struct {
	Result      compliance.Result
	Pricing     compliance.PricingReport
	Schedule    compliance.ScheduleReport
	CompletedAt *time.Time
}
