package observability_test

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/freeloader/internal/observability"
)

func TestContextValues(t *testing.T) {
	tests := []struct {
		name string
		with func(context.Context, string) context.Context
		get  func(context.Context) string
	}{
		{name: "trace id", with: observability.WithTraceID, get: observability.GetTraceID},
		{name: "span id", with: observability.WithSpanID, get: observability.GetSpanID},
		{name: "run id", with: observability.WithRunID, get: observability.GetRunID},
		{name: "provider", with: observability.WithProvider, get: observability.GetProvider},
		{name: "model", with: observability.WithModel, get: observability.GetModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			require.Empty(t, tt.get(ctx))

			ctx = tt.with(ctx, "value-under-test")
			require.Equal(t, "value-under-test", tt.get(ctx))
		})
	}

	t.Run("should keep values independent", func(t *testing.T) {
		ctx := observability.WithProvider(context.Background(), "openrouter")
		ctx = observability.WithModel(ctx, "openrouter/auto")

		require.Equal(t, "openrouter", observability.GetProvider(ctx))
		require.Equal(t, "openrouter/auto", observability.GetModel(ctx))
		require.Empty(t, observability.GetRunID(ctx))
	})
}

func TestGenerateIDs(t *testing.T) {
	t.Run("should generate hex trace ids", func(t *testing.T) {
		traceID := observability.GenerateTraceID()

		require.Len(t, traceID, 32)
		_, err := hex.DecodeString(traceID)
		require.NoError(t, err)
	})

	t.Run("should generate hex span ids", func(t *testing.T) {
		spanID := observability.GenerateSpanID()

		require.Len(t, spanID, 16)
		_, err := hex.DecodeString(spanID)
		require.NoError(t, err)
	})

	t.Run("should generate unique run ids", func(t *testing.T) {
		first := observability.GenerateRunID()
		second := observability.GenerateRunID()

		_, err := uuid.Parse(first)
		require.NoError(t, err)
		require.NotEqual(t, first, second)
	})
}
