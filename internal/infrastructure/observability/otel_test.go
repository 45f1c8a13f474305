package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sovereign-chat/internal/config"
)

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		raw      string
		endpoint string
		insecure bool
	}{
		{"otel-collector:4318", "otel-collector:4318", true},
		{"http://otel-collector:4318/", "otel-collector:4318", true},
		{"https://otlp.example.com", "otlp.example.com", false},
	}
	for _, tt := range tests {
		endpoint, insecure := splitEndpoint(tt.raw)
		assert.Equal(t, tt.endpoint, endpoint, tt.raw)
		assert.Equal(t, tt.insecure, insecure, tt.raw)
	}
}

func TestParseHeaders(t *testing.T) {
	headers := parseHeaders("authorization=Bearer abc, x-tenant = t1,broken,empty=")
	assert.Equal(t, map[string]string{"authorization": "Bearer abc", "x-tenant": "t1"}, headers)
	assert.Empty(t, parseHeaders(""))
}

func TestSetupWithoutExporterRecordsSpans(t *testing.T) {
	cfg := &config.Config{ServiceName: "sovereign-chat", ServiceNamespace: "test", Environment: "test"}
	shutdown, err := Setup(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = shutdown(context.Background()) }()

	ctx, span := StartSpan(context.Background(), "unit")
	assert.NotEmpty(t, GetTraceID(ctx))
	RecordError(ctx, errors.New("boom"))
	span.End()
}
