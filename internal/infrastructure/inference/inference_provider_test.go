package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sovereign-chat/internal/domain/chat"
	"sovereign-chat/internal/utils/platformerrors"
)

type fakeBackend struct {
	server *httptest.Server
	calls  atomic.Int32
}

func newFakeBackend(t *testing.T, reply string, status int, delay time.Duration) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}
	fb.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/models":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"m"}]}`))
			return
		case "/v1/chat/completions":
		default:
			http.NotFound(w, r)
			return
		}
		fb.calls.Add(1)

		var req openai.ChatCompletionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status >= 300 {
			_, _ = w.Write([]byte(`{"error":{"message":"backend exploded"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Model: req.Model,
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: "assistant", Content: reply},
				FinishReason: openai.FinishReasonStop,
			}},
			Usage: openai.Usage{PromptTokens: 7, CompletionTokens: 2},
		})
	}))
	t.Cleanup(fb.server.Close)
	return fb
}

func backend(fb *fakeBackend, name, model string, timeout time.Duration) *Backend {
	return NewBackend(BackendConfig{Name: name, BaseURL: fb.server.URL + "/v1", DefaultModel: model, Timeout: timeout})
}

func request() chat.CompletionRequest {
	return chat.CompletionRequest{Messages: []chat.PromptMessage{{Role: "user", Content: "hi"}}}
}

func TestComplete_PrimarySucceeds(t *testing.T) {
	primary := newFakeBackend(t, "from primary", http.StatusOK, 0)
	secondary := newFakeBackend(t, "from secondary", http.StatusOK, 0)
	ip := NewInferenceProviderWithBackends(backend(primary, "primary", "gpt-4o-mini", time.Second), backend(secondary, "fallback", "llama3.1", time.Second))

	res, err := ip.Complete(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, chat.SourcePrimary, res.Source)
	assert.Equal(t, "from primary", res.Content)
	assert.Equal(t, "gpt-4o-mini", res.Model)
	assert.Equal(t, 7, res.PromptTokens)
	assert.Zero(t, secondary.calls.Load())
}

func TestComplete_PrimaryTimeoutFallsBack(t *testing.T) {
	primary := newFakeBackend(t, "too late", http.StatusOK, 2*time.Second)
	secondary := newFakeBackend(t, "from secondary", http.StatusOK, 0)
	ip := NewInferenceProviderWithBackends(backend(primary, "primary", "gpt-4o-mini", 100*time.Millisecond), backend(secondary, "fallback", "llama3.1", time.Second))

	started := time.Now()
	res, err := ip.Complete(context.Background(), request())
	require.NoError(t, err)
	assert.Less(t, time.Since(started), 2*time.Second)
	assert.Equal(t, chat.SourceFallback, res.Source)
	assert.Equal(t, "from secondary", res.Content)
	assert.Equal(t, "llama3.1", res.Model)
}

func TestComplete_PrimaryErrorFallsBack(t *testing.T) {
	primary := newFakeBackend(t, "", http.StatusInternalServerError, 0)
	secondary := newFakeBackend(t, "from secondary", http.StatusOK, 0)
	ip := NewInferenceProviderWithBackends(backend(primary, "primary", "a", time.Second), backend(secondary, "fallback", "b", time.Second))

	res, err := ip.Complete(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, chat.SourceFallback, res.Source)
	assert.Equal(t, int32(1), primary.calls.Load())
	assert.Equal(t, int32(1), secondary.calls.Load())
}

func TestComplete_BothFail(t *testing.T) {
	primary := newFakeBackend(t, "", http.StatusBadGateway, 0)
	secondary := newFakeBackend(t, "", http.StatusServiceUnavailable, 0)
	ip := NewInferenceProviderWithBackends(backend(primary, "primary", "a", time.Second), backend(secondary, "fallback", "b", time.Second))

	_, err := ip.Complete(context.Background(), request())
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal))
	assert.Contains(t, platformerrors.GetPlatformError(err).Message, "backend exploded")
}

func TestComplete_SecondaryOnly(t *testing.T) {
	secondary := newFakeBackend(t, "local", http.StatusOK, 0)
	ip := NewInferenceProviderWithBackends(nil, backend(secondary, "fallback", "llama3.1", time.Second))

	res, err := ip.Complete(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, chat.SourceFallback, res.Source)
}

func TestHealthMonitor_Check(t *testing.T) {
	primary := newFakeBackend(t, "", http.StatusServiceUnavailable, 0)
	secondary := newFakeBackend(t, "", http.StatusOK, 0)
	ip := NewInferenceProviderWithBackends(backend(primary, "primary", "a", time.Second), backend(secondary, "fallback", "b", time.Second))
	monitor := &HealthMonitor{provider: ip, timeout: time.Second}

	report := monitor.Check(context.Background())
	assert.True(t, report.Primary.Configured)
	assert.False(t, report.Primary.Healthy)
	assert.NotEmpty(t, report.Primary.Error)
	assert.True(t, report.Fallback.Healthy)
	assert.Equal(t, report, monitor.Last())
}
