package audits

import (
	"time"

	"sow-backend/internal/audits/compliance"
)

// Audit represents one SOW compliance audit job over an uploaded document.
type Audit struct {
	ID             string                     `json:"id"`
	DocumentID     string                     `json:"documentId"`
	UserID         string                     `json:"userId"`
	Timeline       compliance.ProjectTimeline `json:"timeline"`
	Provider       string                     `json:"provider"`
	Model          string                     `json:"model"`
	Status         string                     `json:"status"`
	Result         *compliance.Result         `json:"result,omitempty"`
	Pricing        *compliance.PricingReport  `json:"pricing,omitempty"`
	Schedule       *compliance.ScheduleReport `json:"schedule,omitempty"`
	AnalysisRaw    map[string]any             `json:"-"`
	ErrorCode      string                     `json:"errorCode,omitempty"`
	ErrorMessage   *string                    `json:"errorMessage,omitempty"`
	ErrorRetryable bool                       `json:"errorRetryable,omitempty"`
	StartedAt      *time.Time                 `json:"startedAt,omitempty"`
	CompletedAt    *time.Time                 `json:"completedAt,omitempty"`
	CreatedAt      time.Time                  `json:"createdAt"`
	UpdatedAt      time.Time                  `json:"updatedAt"`
}
