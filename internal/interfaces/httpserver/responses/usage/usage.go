package usageresponses

import (
	"time"

	"sovereign-chat/internal/domain/usage"
)

// ModelUsageResponse is usage and estimated cost for one model.
type ModelUsageResponse struct {
	Model            string `json:"model"`
	Messages         int64  `json:"messages"`
	PromptTokens     int64  `json:"prompt_tokens"`
	CompletionTokens int64  `json:"completion_tokens"`
	EstimatedCost    string `json:"estimated_cost"`
}

// UsageResponse is the current-period usage report. Remaining is -1 when
// the plan is unlimited.
type UsageResponse struct {
	Object           string               `json:"object"`
	Plan             string               `json:"plan"`
	PeriodStart      time.Time            `json:"period_start"`
	PeriodEnd        time.Time            `json:"period_end"`
	MessagesUsed     int64                `json:"messages_used"`
	MessagesLimit    int                  `json:"messages_limit"`
	MessagesLeft     int64                `json:"messages_remaining"`
	Unlimited        bool                 `json:"unlimited"`
	PromptTokens     int64                `json:"prompt_tokens"`
	CompletionTokens int64                `json:"completion_tokens"`
	EstimatedCost    string               `json:"estimated_cost"`
	Models           []ModelUsageResponse `json:"models"`
}

// NewUsageResponse converts a usage report. Costs are rendered with six
// decimal places.
func NewUsageResponse(report *usage.Report) *UsageResponse {
	models := make([]ModelUsageResponse, 0, len(report.Models))
	for _, m := range report.Models {
		models = append(models, ModelUsageResponse{
			Model:            m.Model,
			Messages:         m.Messages,
			PromptTokens:     m.PromptTokens,
			CompletionTokens: m.CompletionTokens,
			EstimatedCost:    m.EstimatedCost.StringFixed(6),
		})
	}
	return &UsageResponse{
		Object:           "usage",
		Plan:             string(report.Plan),
		PeriodStart:      report.Period.Start,
		PeriodEnd:        report.Period.End,
		MessagesUsed:     report.MessagesUsed,
		MessagesLimit:    report.MessagesLimit,
		MessagesLeft:     report.Remaining(),
		Unlimited:        report.Unlimited,
		PromptTokens:     report.PromptTokens,
		CompletionTokens: report.CompletionTokens,
		EstimatedCost:    report.EstimatedCost.StringFixed(6),
		Models:           models,
	}
}
