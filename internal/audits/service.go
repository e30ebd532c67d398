package audits

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"sow-backend/internal/audits/compliance"
	"sow-backend/internal/documents"
	"sow-backend/internal/extract"
	"sow-backend/internal/llm"
	"sow-backend/internal/queue"
	"sow-backend/internal/shared/metrics"
	"sow-backend/internal/shared/storage/object"
	"sow-backend/internal/shared/telemetry"
)

const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Service contains business logic for SOW compliance audits.
type Service struct {
	Repo     Repo
	DocRepo  documents.DocumentsRepo
	Store    object.ObjectStore
	LLM      llm.Client
	JobQueue queue.Client
	Provider string
	Model    string
}

// Create enqueues a new audit and kicks off asynchronous completion.
func (s *Service) Create(ctx context.Context, documentID, userID string, timeline compliance.ProjectTimeline) (Audit, error) {
	if documentID == "" || userID == "" {
		return Audit{}, errors.New("documentID and userID are required")
	}

	audit := Audit{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		UserID:     userID,
		Timeline:   timeline,
		Provider:   normalizeProvider(s.Provider),
		Model:      s.Model,
		Status:     StatusQueued,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, audit); err != nil {
		return Audit{}, err
	}

	if s.JobQueue != nil {
		msg := queue.Message{
			AuditID:    audit.ID,
			RequestID:  requestIDFromContext(ctx),
			EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
			Version:    1,
		}
		err := s.JobQueue.Send(ctx, msg)
		if err == nil {
			return audit, nil
		}
		telemetry.Error("audit.enqueue_failed", map[string]any{
			"audit_id":   audit.ID,
			"request_id": msg.RequestID,
			"error":      err.Error(),
		})
	}

	// No queue (or enqueue failed): process in-process so the audit
	// still reaches a terminal state.
	go s.completeAsync(backgroundWithRequestID(ctx), audit.ID)

	return audit, nil
}

// Get returns an audit by ID.
func (s *Service) Get(ctx context.Context, auditID string) (Audit, error) {
	if auditID == "" {
		return Audit{}, errors.New("auditID is required")
	}
	return s.Repo.GetByID(ctx, auditID)
}

// List returns audits for a user ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Audit, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

func normalizeProvider(provider string) string {
	if strings.TrimSpace(provider) == "" {
		return "deepseek"
	}
	return provider
}

// ProcessAudit runs the audit pipeline synchronously. Used by the queue
// worker; the HTTP path runs the pipeline through completeAsync. A non-nil
// return means the failure is retryable and the message should stay queued.
func (s *Service) ProcessAudit(ctx context.Context, auditID string) error {
	s.completeAsync(ctx, auditID)

	audit, err := s.Repo.GetByID(ctx, auditID)
	if err != nil {
		return fmt.Errorf("audit lookup after processing: %w", err)
	}
	if audit.Status == StatusFailed && audit.ErrorRetryable {
		detail := audit.ErrorCode
		if audit.ErrorMessage != nil && *audit.ErrorMessage != "" {
			detail = *audit.ErrorMessage
		}
		return fmt.Errorf("audit failed (%s): %s", audit.ErrorCode, detail)
	}
	return nil
}

func (s *Service) completeAsync(ctx context.Context, auditID string) {
	defer func() {
		if r := recover(); r != nil {
			s.failAudit(ctx, auditID, "", "", fmt.Errorf("panic: %v", r), nil)
		}
	}()
	startedAt := time.Now().UTC()
	if err := s.Repo.UpdateStatusAndError(ctx, auditID, StatusProcessing, nil, nil, nil, &startedAt, nil); err != nil {
		s.failAudit(ctx, auditID, "", "", fmt.Errorf("set processing failed: %w", err), &startedAt)
		return
	}

	audit, err := s.Repo.GetByID(ctx, auditID)
	if err != nil {
		s.failAudit(ctx, auditID, "", "", fmt.Errorf("audit lookup: %w", err), &startedAt)
		return
	}
	metrics.IncAuditStarted()
	telemetry.Info("audit.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           audit.UserID,
		"document_id":       audit.DocumentID,
		"audit_id":          audit.ID,
		"status":            StatusProcessing,
		"status_transition": "queued->processing",
	})
	if s.DocRepo == nil || s.Store == nil {
		s.failAudit(ctx, auditID, audit.UserID, audit.DocumentID, errors.New("missing document store dependencies"), &startedAt)
		return
	}
	if s.LLM == nil {
		s.failAudit(ctx, auditID, audit.UserID, audit.DocumentID, errors.New("missing llm client"), &startedAt)
		return
	}
	requestID := requestIDFromContext(ctx)
	llmClient := newRetryingLLM(s.LLM, auditID, requestID)

	doc, err := s.DocRepo.GetByID(ctx, audit.UserID, audit.DocumentID)
	if err != nil {
		s.failAudit(ctx, auditID, audit.UserID, audit.DocumentID, fmt.Errorf("document lookup id=%s: %w", audit.DocumentID, err), &startedAt)
		return
	}

	extractedKey := doc.ExtractedTextKey
	tableCount := 0
	if doc.ExtractionMeta != nil {
		tableCount = doc.ExtractionMeta.TablesFound
	}
	if extractedKey == "" {
		extracted, err := extract.Extract(ctx, s.Store, doc.StorageKey, doc.MimeType, doc.FileName)
		if err != nil {
			s.failAudit(ctx, auditID, audit.UserID, audit.DocumentID, fmt.Errorf("document %s mime %s: %w", doc.ID, doc.MimeType, err), &startedAt)
			return
		}
		extractedKey = doc.StorageKey + ".extracted.txt"
		tableCount = extracted.Metadata.TablesFound
		if err := s.DocRepo.UpdateExtraction(ctx, doc.UserID, doc.ID, extractedKey, time.Now().UTC(), extracted.Metadata); err != nil {
			s.failAudit(ctx, auditID, audit.UserID, audit.DocumentID, fmt.Errorf("document %s mime %s: update extraction: %w", doc.ID, doc.MimeType, err), &startedAt)
			return
		}
	}

	documentText, err := loadText(ctx, s.Store, extractedKey)
	if err != nil {
		s.failAudit(ctx, auditID, audit.UserID, audit.DocumentID, fmt.Errorf("document %s mime %s: load extracted text: %w", doc.ID, doc.MimeType, err), &startedAt)
		return
	}

	input := llm.AnalyzeInput{
		DocumentText: documentText,
		Timeline:     audit.Timeline,
		TableCount:   tableCount,
	}

	raw, err := llmClient.AnalyzeSOW(ctx, input)
	if err != nil {
		s.failAudit(ctx, auditID, audit.UserID, audit.DocumentID, fmt.Errorf("llm analyze: %w", err), &startedAt)
		return
	}
	if err := s.storeAnalysisRaw(ctx, auditID, raw); err != nil {
		s.failAudit(ctx, auditID, audit.UserID, audit.DocumentID, fmt.Errorf("set analysis raw failed: %w", err), &startedAt)
		return
	}

	result, err := s.normalizeAndValidate(raw)
	if err != nil {
		// One repair round trip before giving up on the output shape.
		rawRetry, retryErr := llmClient.AnalyzeSOW(llm.WithFixJSON(ctx, string(raw)), input)
		if retryErr != nil {
			s.failAudit(ctx, auditID, audit.UserID, audit.DocumentID, fmt.Errorf("llm analyze retry: %w", retryErr), &startedAt)
			return
		}
		if storeErr := s.storeAnalysisRaw(ctx, auditID, rawRetry); storeErr != nil {
			s.failAudit(ctx, auditID, audit.UserID, audit.DocumentID, fmt.Errorf("set analysis raw failed: %w", storeErr), &startedAt)
			return
		}
		result, err = s.normalizeAndValidate(rawRetry)
		if err != nil {
			s.failAudit(ctx, auditID, audit.UserID, audit.DocumentID, fmt.Errorf("llm output invalid: %w", err), &startedAt)
			return
		}
	}

	result.ComplianceScore = compliance.Score(result)
	result.CriticalFailures = compliance.DetectCriticalFailures(result)

	pricing := compliance.CheckPricingModel(result)
	schedule := compliance.CheckSchedule(result, audit.Timeline)

	completedAt := time.Now().UTC()
	update := ResultUpdate{
		Result:      result,
		Pricing:     pricing,
		Schedule:    schedule,
		CompletedAt: &completedAt,
	}
	if err := s.Repo.UpdateAuditResult(ctx, auditID, update); err != nil {
		s.failAudit(ctx, auditID, audit.UserID, audit.DocumentID, fmt.Errorf("set audit result failed: %w", err), &startedAt)
		return
	}
	metrics.IncAuditCompleted()
	metrics.ObserveAuditDurationMs(durationMs(&startedAt, &completedAt))
	telemetry.Info("audit.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           audit.UserID,
		"document_id":       audit.DocumentID,
		"audit_id":          audit.ID,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"compliance_score":  result.ComplianceScore,
		"go_no_go":          result.GoNoGo,
		"duration_ms":       durationMs(&startedAt, &completedAt),
	})
}

// normalizeAndValidate maps the raw model output onto the canonical result
// shape and enforces the mandatory pillar set.
func (s *Service) normalizeAndValidate(raw json.RawMessage) (compliance.Result, error) {
	result, err := normalizeAnalysisResult(raw)
	if err != nil {
		return compliance.Result{}, err
	}
	if err := compliance.Validate(result); err != nil {
		return compliance.Result{}, err
	}
	return result, nil
}

func (s *Service) failAudit(ctx context.Context, auditID, userID, documentID string, err error, startedAt *time.Time) {
	code, retryable := classifyFailure(err)
	msg := sanitizeError(err)
	completedAt := time.Now().UTC()
	if updateErr := s.Repo.UpdateStatusAndError(context.Background(), auditID, StatusFailed, &code, &msg, &retryable, nil, &completedAt); updateErr != nil {
		telemetry.Error("audit.fail_update", map[string]any{
			"audit_id": auditID,
			"error":    sanitizeError(updateErr),
			"cause":    msg,
		})
	}
	metrics.IncAuditFailed()
	if startedAt != nil {
		metrics.ObserveAuditDurationMs(durationMs(startedAt, &completedAt))
	}
	telemetry.Info("audit.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           userID,
		"document_id":       documentID,
		"audit_id":          auditID,
		"status":            StatusFailed,
		"status_transition": "processing->failed",
		"error_code":        code,
		"duration_ms":       durationMs(startedAt, &completedAt),
	})
}

func durationMs(startedAt, completedAt *time.Time) float64 {
	if startedAt == nil || completedAt == nil {
		return 0
	}
	return float64(completedAt.Sub(*startedAt).Microseconds()) / 1000.0
}

func classifyFailure(err error) (string, bool) {
	if err == nil {
		return ErrorCodeInternal, false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorCodeLLMTimeout, true
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "deepseek request timeout") {
		return ErrorCodeLLMTimeout, true
	}
	if strings.Contains(msg, "timeout") && strings.Contains(msg, "llm") {
		return ErrorCodeLLMTimeout, true
	}
	if strings.Contains(msg, "pillar") || strings.Contains(msg, "llm output invalid") || strings.Contains(msg, "invalid json") {
		return ErrorCodeLLMSchemaMismatch, false
	}
	if strings.Contains(msg, "llm output") || strings.Contains(msg, "invalid analysis structure") {
		return ErrorCodeLLMSchemaMismatch, false
	}
	if strings.Contains(msg, "validation") && !strings.Contains(msg, "llm") {
		return ErrorCodeValidation, false
	}
	if strings.Contains(msg, "document") || strings.Contains(msg, "storage") || strings.Contains(msg, "analysis raw") || strings.Contains(msg, "audit result") || strings.Contains(msg, "set processing") {
		return ErrorCodeStorage, true
	}
	return ErrorCodeInternal, false
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}

func loadText(ctx context.Context, store object.ObjectStore, key string) (string, error) {
	body, err := store.Open(ctx, key)
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func buildRawPayload(raw json.RawMessage) any {
	if len(raw) == 0 {
		return map[string]any{"rawText": ""}
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err == nil {
		return parsed
	}
	return map[string]any{"rawText": string(raw)}
}

func (s *Service) storeAnalysisRaw(ctx context.Context, auditID string, raw json.RawMessage) error {
	return s.Repo.UpdateAnalysisRaw(ctx, auditID, buildRawPayload(raw))
}
