package audits

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"sow-backend/internal/audits/compliance"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const auditColumns = `id, document_id, user_id, status, timeline, result, pricing_report, schedule_report,
       analysis_raw, provider, model, error_code, error_message, error_retryable,
       started_at, completed_at, created_at, updated_at`

// Create inserts a new audit.
func (r *PGRepo) Create(ctx context.Context, audit Audit) error {
	const query = `
INSERT INTO audits (
	id, document_id, user_id, status, timeline, provider, model, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	timeline, err := json.Marshal(audit.Timeline)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		audit.ID,
		audit.DocumentID,
		audit.UserID,
		audit.Status,
		timeline,
		audit.Provider,
		audit.Model,
		audit.CreatedAt,
	)
	return err
}

// GetByID returns an audit by ID.
func (r *PGRepo) GetByID(ctx context.Context, auditID string) (Audit, error) {
	const query = `
SELECT ` + auditColumns + `
FROM audits
WHERE id = $1 AND deleted_at IS NULL
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, auditID)
	audit, err := scanAudit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Audit{}, ErrNotFound
		}
		return Audit{}, err
	}
	return audit, nil
}

// ListByUser lists audits for a user ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Audit, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	const query = `
SELECT ` + auditColumns + `
FROM audits
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Audit
	for rows.Next() {
		audit, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, audit)
	}
	return out, rows.Err()
}

// UpdateStatusAndError updates status/error fields and timestamps.
func (r *PGRepo) UpdateStatusAndError(ctx context.Context, auditID, status string, errorCode *string, errorMessage *string, errorRetryable *bool, startedAt *time.Time, completedAt *time.Time) error {
	const query = `
UPDATE audits
SET status = $1,
    error_code = COALESCE($2::text, error_code),
    error_message = COALESCE($3::text, error_message),
    error_retryable = CASE
        WHEN $4::boolean IS NOT NULL THEN $4::boolean
        ELSE error_retryable
    END,
    started_at = CASE
        WHEN $5::timestamptz IS NOT NULL THEN $5::timestamptz
        WHEN $1 = 'processing' AND started_at IS NULL THEN now()
        ELSE started_at
    END,
    completed_at = CASE
        WHEN $6::timestamptz IS NOT NULL THEN $6::timestamptz
        WHEN ($1 = 'completed' OR $1 = 'failed') AND completed_at IS NULL THEN now()
        ELSE completed_at
    END,
    updated_at = now()
WHERE id = $7::uuid`

	res, err := r.DB.ExecContext(ctx, query, status, errorCode, errorMessage, errorRetryable, startedAt, completedAt, auditID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateAnalysisRaw updates analysis_raw.
func (r *PGRepo) UpdateAnalysisRaw(ctx context.Context, auditID string, raw any) error {
	const query = `
UPDATE audits
SET analysis_raw = $1::jsonb,
    updated_at = now()
WHERE id = $2::uuid`

	payload, err := marshalJSONB(raw)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, payload, auditID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateAuditResult stores the finalized outcome and marks the audit completed.
func (r *PGRepo) UpdateAuditResult(ctx context.Context, auditID string, update ResultUpdate) error {
	const query = `
UPDATE audits
SET result = $1::jsonb,
    pricing_report = $2::jsonb,
    schedule_report = $3::jsonb,
    status = 'completed',
    completed_at = COALESCE($4::timestamptz, now()),
    updated_at = now()
WHERE id = $5::uuid`

	result, err := json.Marshal(update.Result)
	if err != nil {
		return err
	}
	pricing, err := json.Marshal(update.Pricing)
	if err != nil {
		return err
	}
	schedule, err := json.Marshal(update.Schedule)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, result, pricing, schedule, update.CompletedAt, auditID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ClaimGuest reassigns audits owned by a guest user to an authenticated user.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	const query = `
UPDATE audits
SET user_id = $1,
    updated_at = now()
WHERE user_id = $2 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	updated, _ := res.RowsAffected()
	return int(updated), nil
}

var _ Repo = (*PGRepo)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAudit(row rowScanner) (Audit, error) {
	var a Audit
	var timeline sql.NullString
	var result sql.NullString
	var pricing sql.NullString
	var schedule sql.NullString
	var analysisRaw sql.NullString
	var provider sql.NullString
	var model sql.NullString
	var errorCode sql.NullString
	var errorMessage sql.NullString
	var errorRetryable sql.NullBool
	var startedAt sql.NullTime
	var completedAt sql.NullTime
	err := row.Scan(
		&a.ID,
		&a.DocumentID,
		&a.UserID,
		&a.Status,
		&timeline,
		&result,
		&pricing,
		&schedule,
		&analysisRaw,
		&provider,
		&model,
		&errorCode,
		&errorMessage,
		&errorRetryable,
		&startedAt,
		&completedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return Audit{}, err
	}
	if timeline.Valid {
		_ = json.Unmarshal([]byte(timeline.String), &a.Timeline)
	}
	if result.Valid {
		var parsed compliance.Result
		if err := json.Unmarshal([]byte(result.String), &parsed); err == nil {
			a.Result = &parsed
		}
	}
	if pricing.Valid {
		var parsed compliance.PricingReport
		if err := json.Unmarshal([]byte(pricing.String), &parsed); err == nil {
			a.Pricing = &parsed
		}
	}
	if schedule.Valid {
		var parsed compliance.ScheduleReport
		if err := json.Unmarshal([]byte(schedule.String), &parsed); err == nil {
			a.Schedule = &parsed
		}
	}
	if analysisRaw.Valid {
		_ = json.Unmarshal([]byte(analysisRaw.String), &a.AnalysisRaw)
	}
	if provider.Valid {
		a.Provider = provider.String
	}
	if model.Valid {
		a.Model = model.String
	}
	if errorCode.Valid {
		a.ErrorCode = errorCode.String
	}
	if errorMessage.Valid {
		a.ErrorMessage = &errorMessage.String
	}
	if errorRetryable.Valid {
		a.ErrorRetryable = errorRetryable.Bool
	}
	if startedAt.Valid {
		a.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		a.CompletedAt = &completedAt.Time
	}
	return a, nil
}

func marshalJSONB(value any) ([]byte, error) {
	if value == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(value)
}
