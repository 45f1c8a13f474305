package inference

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"

	"sovereign-chat/internal/config"
	"sovereign-chat/internal/domain/chat"
	"sovereign-chat/internal/infrastructure/logger"
	"sovereign-chat/internal/infrastructure/metrics"
	"sovereign-chat/internal/infrastructure/observability"
	httpclients "sovereign-chat/internal/utils/httpclients"
	chatclient "sovereign-chat/internal/utils/httpclients/chat"
	"sovereign-chat/internal/utils/platformerrors"
)

// BackendConfig describes one OpenAI-compatible backend.
type BackendConfig struct {
	Name         string
	BaseURL      string
	APIKey       string
	DefaultModel string
	Timeout      time.Duration
}

// Backend is a configured inference endpoint.
type Backend struct {
	cfg    BackendConfig
	client *chatclient.ChatCompletionClient
}

// NewBackend returns nil when cfg has no base URL.
func NewBackend(cfg BackendConfig) *Backend {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil
	}
	// The per-call deadline comes from the context; the client timeout only
	// bounds calls made without one.
	client := httpclients.NewClient(cfg.Name+"InferenceClient", 0)
	return &Backend{cfg: cfg, client: chatclient.NewChatCompletionClient(client, cfg.Name, cfg.BaseURL, cfg.APIKey)}
}

// Timeout is the configured per-call deadline.
func (b *Backend) Timeout() time.Duration {
	return b.cfg.Timeout
}

func (b *Backend) complete(ctx context.Context, req chat.CompletionRequest) (*openai.ChatCompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = b.cfg.DefaultModel
	}
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	request := openai.ChatCompletionRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
		User:      req.User,
	}
	if req.Temperature != nil {
		request.Temperature = *req.Temperature
	}
	return b.client.CreateChatCompletion(ctx, request)
}

// InferenceProvider is the fallback proxy: one call to the primary under its
// timeout, then at most one call to the secondary.
type InferenceProvider struct {
	primary   *Backend
	secondary *Backend
}

var _ chat.Completer = (*InferenceProvider)(nil)

// NewInferenceProvider wires the backends from configuration.
func NewInferenceProvider(cfg *config.Config) *InferenceProvider {
	return NewInferenceProviderWithBackends(
		NewBackend(BackendConfig{
			Name:         chat.SourcePrimary,
			BaseURL:      cfg.InferencePrimaryURL,
			APIKey:       cfg.InferencePrimaryAPIKey,
			DefaultModel: cfg.InferencePrimaryModel,
			Timeout:      cfg.InferencePrimaryTimeout,
		}),
		NewBackend(BackendConfig{
			Name:         chat.SourceFallback,
			BaseURL:      cfg.InferenceSecondaryURL,
			APIKey:       cfg.InferenceSecondaryAPIKey,
			DefaultModel: cfg.InferenceSecondaryModel,
			Timeout:      cfg.InferenceSecondaryTimeout,
		}),
	)
}

// NewInferenceProviderWithBackends accepts nil for an unconfigured backend.
func NewInferenceProviderWithBackends(primary, secondary *Backend) *InferenceProvider {
	return &InferenceProvider{primary: primary, secondary: secondary}
}

// Complete implements chat.Completer.
func (ip *InferenceProvider) Complete(ctx context.Context, req chat.CompletionRequest) (*chat.CompletionResult, error) {
	log := logger.GetLogger()

	var primaryErr error
	if ip.primary != nil {
		result, err := ip.call(ctx, ip.primary, chat.SourcePrimary, req)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, ctx.Err(), "inference request canceled")
		}
		primaryErr = err
		log.Warn().Err(err).Msg("primary inference backend failed, falling back")
	}

	if ip.secondary == nil {
		if primaryErr == nil {
			primaryErr = errors.New("no inference backend configured")
		}
		return nil, upstreamError(ctx, primaryErr)
	}

	result, err := ip.call(ctx, ip.secondary, chat.SourceFallback, req)
	if err != nil {
		return nil, upstreamError(ctx, errors.Join(primaryErr, err))
	}
	if ip.primary != nil {
		metrics.InferenceFallbackTotal.Inc()
	}
	return result, nil
}

func (ip *InferenceProvider) call(ctx context.Context, backend *Backend, source string, req chat.CompletionRequest) (*chat.CompletionResult, error) {
	callCtx := ctx
	if backend.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, backend.cfg.Timeout)
		defer cancel()
	}

	callCtx, span := observability.StartSpan(callCtx, "inference."+source)
	defer span.End()
	observability.AddSpanAttributes(callCtx,
		attribute.String("inference.backend", backend.cfg.Name),
		attribute.String("inference.model", req.Model),
	)

	started := time.Now()
	resp, err := backend.complete(callCtx, req)
	metrics.RecordInference(source, err == nil, time.Since(started).Seconds())
	if err != nil {
		observability.RecordError(callCtx, err)
		return nil, err
	}

	model := resp.Model
	if model == "" {
		model = req.Model
	}
	if model == "" {
		model = backend.cfg.DefaultModel
	}

	choice := resp.Choices[0]
	metrics.RecordTokens(model, source, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	return &chat.CompletionResult{
		Content:          choice.Message.Content,
		Model:            model,
		Source:           source,
		FinishReason:     string(choice.FinishReason),
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

func upstreamError(ctx context.Context, err error) error {
	msg := "inference backends unavailable"
	var platformErr *platformerrors.PlatformError
	if errors.As(err, &platformErr) {
		msg = msg + ": " + platformErr.Message
	}
	return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, msg, err, "c81a2f4e-93d7-4b60-8e15-7a2c9d4f6b03")
}
