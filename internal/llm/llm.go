package llm

import (
	"context"
	"encoding/json"
	"errors"

	"sow-backend/internal/audits/compliance"
)

// Client abstracts LLM providers for SOW analysis.
type Client interface {
	AnalyzeSOW(ctx context.Context, input AnalyzeInput) (json.RawMessage, error)
}

// AnalyzeInput captures the inputs needed for a SOW compliance analysis.
type AnalyzeInput struct {
	DocumentText string
	Timeline     compliance.ProjectTimeline
	TableCount   int
}

type fixJSONKey struct{}

// WithFixJSON returns a context signaling a fix-JSON retry with the given raw output.
func WithFixJSON(ctx context.Context, raw string) context.Context {
	return context.WithValue(ctx, fixJSONKey{}, raw)
}

// FixJSONFromContext returns the raw JSON to repair, if any.
func FixJSONFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(fixJSONKey{})
	raw, ok := val.(string)
	return raw, ok
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// AnalyzeSOW returns ErrNotImplemented.
func (PlaceholderClient) AnalyzeSOW(ctx context.Context, input AnalyzeInput) (json.RawMessage, error) {
	_ = ctx
	_ = input
	return nil, ErrNotImplemented
}
