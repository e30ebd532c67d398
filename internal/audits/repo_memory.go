package audits

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores audits in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]Audit
	byUser map[string][]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]Audit),
		byUser: make(map[string][]string),
	}
}

// Create stores the audit.
func (r *MemoryRepo) Create(ctx context.Context, audit Audit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[audit.ID] = audit
	r.byUser[audit.UserID] = append(r.byUser[audit.UserID], audit.ID)
	return nil
}

// GetByID returns an audit by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, auditID string) (Audit, error) {
	if err := ctx.Err(); err != nil {
		return Audit{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	audit, ok := r.byID[auditID]
	if !ok {
		return Audit{}, ErrNotFound
	}
	return audit, nil
}

// ListByUser returns audits for a user, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Audit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	ids := r.byUser[userID]
	audits := make([]Audit, 0, len(ids))
	for _, id := range ids {
		if audit, ok := r.byID[id]; ok {
			audits = append(audits, audit)
		}
	}
	r.mu.RUnlock()

	sort.Slice(audits, func(i, j int) bool {
		return audits[i].CreatedAt.After(audits[j].CreatedAt)
	})

	if offset >= len(audits) {
		return []Audit{}, nil
	}
	end := len(audits)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return audits[offset:end], nil
}

// UpdateStatusAndError updates status/error fields and timestamps.
func (r *MemoryRepo) UpdateStatusAndError(ctx context.Context, auditID, status string, errorCode *string, errorMessage *string, errorRetryable *bool, startedAt *time.Time, completedAt *time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	audit, ok := r.byID[auditID]
	if !ok {
		return ErrNotFound
	}
	audit.Status = status
	if errorCode != nil {
		audit.ErrorCode = *errorCode
	}
	if errorMessage != nil {
		audit.ErrorMessage = errorMessage
	}
	if errorRetryable != nil {
		audit.ErrorRetryable = *errorRetryable
	}
	if startedAt != nil {
		audit.StartedAt = startedAt
	} else if status == StatusProcessing && audit.StartedAt == nil {
		now := time.Now().UTC()
		audit.StartedAt = &now
	}
	if completedAt != nil {
		audit.CompletedAt = completedAt
	} else if (status == StatusCompleted || status == StatusFailed) && audit.CompletedAt == nil {
		now := time.Now().UTC()
		audit.CompletedAt = &now
	}
	audit.UpdatedAt = time.Now().UTC()
	r.byID[auditID] = audit
	return nil
}

// UpdateAnalysisRaw stores the raw LLM payload for debugging.
func (r *MemoryRepo) UpdateAnalysisRaw(ctx context.Context, auditID string, raw any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	audit, ok := r.byID[auditID]
	if !ok {
		return ErrNotFound
	}
	if payload, ok := raw.(map[string]any); ok {
		audit.AnalysisRaw = payload
	} else {
		audit.AnalysisRaw = map[string]any{"raw": raw}
	}
	audit.UpdatedAt = time.Now().UTC()
	r.byID[auditID] = audit
	return nil
}

// UpdateAuditResult stores the finalized outcome and marks the audit completed.
func (r *MemoryRepo) UpdateAuditResult(ctx context.Context, auditID string, update ResultUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	audit, ok := r.byID[auditID]
	if !ok {
		return ErrNotFound
	}
	result := update.Result
	pricing := update.Pricing
	schedule := update.Schedule
	audit.Result = &result
	audit.Pricing = &pricing
	audit.Schedule = &schedule
	audit.Status = StatusCompleted
	if update.CompletedAt != nil {
		audit.CompletedAt = update.CompletedAt
	} else {
		now := time.Now().UTC()
		audit.CompletedAt = &now
	}
	audit.UpdatedAt = time.Now().UTC()
	r.byID[auditID] = audit
	return nil
}

// ClaimGuest reassigns audits owned by a guest user to an authenticated user.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	moved := 0
	for _, id := range r.byUser[guestUserID] {
		audit, ok := r.byID[id]
		if !ok {
			continue
		}
		audit.UserID = authedUserID
		r.byID[id] = audit
		r.byUser[authedUserID] = append(r.byUser[authedUserID], id)
		moved++
	}
	delete(r.byUser, guestUserID)
	return moved, nil
}

var _ Repo = (*MemoryRepo)(nil)
