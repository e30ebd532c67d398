package audits

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrJobQueueNotConfigured = errors.New("job queue not configured")
	ErrReportNotReady        = errors.New("audit result not ready")
)

const (
	ErrorCodeValidation        = "VALIDATION_ERROR"
	ErrorCodeLLMTimeout        = "LLM_TIMEOUT"
	ErrorCodeLLMSchemaMismatch = "LLM_SCHEMA_MISMATCH"
	ErrorCodeStorage           = "STORAGE_ERROR"
	ErrorCodeInternal          = "INTERNAL_ERROR"
)
