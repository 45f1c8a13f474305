// Package chat sends a user message through the inference proxy and records the exchange.
package chat

import (
	"context"
	"time"
)

// Inference sources reported with every completion.
const (
	SourcePrimary  = "primary"
	SourceFallback = "fallback"
)

// PromptMessage is one turn of the prompt sent to the model.
type PromptMessage struct {
	Role    string
	Content string
}

// CompletionRequest is a backend-agnostic chat completion request.
type CompletionRequest struct {
	// Model may be empty, in which case each backend uses its configured default.
	Model       string
	Messages    []PromptMessage
	Temperature *float32
	MaxTokens   int
	User        string
}

// CompletionResult is the reply and which backend produced it.
type CompletionResult struct {
	Content          string
	Model            string
	Source           string
	FinishReason     string
	PromptTokens     int
	CompletionTokens int
}

// Completer runs a completion against the primary backend, falling back once
// to the secondary backend.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}

// BackendHealth is the outcome of one backend probe.
type BackendHealth struct {
	Configured bool
	Healthy    bool
	Latency    time.Duration
	Error      string
}

// HealthReport is a probe of both backends.
type HealthReport struct {
	Primary   BackendHealth
	Fallback  BackendHealth
	CheckedAt time.Time
}

// HealthChecker probes the inference backends.
type HealthChecker interface {
	Check(ctx context.Context) HealthReport
}
