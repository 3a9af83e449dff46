package telemetry_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/coldflow/supportbot/internal/telemetry"
)

// providerOnce ensures we only create one Provider per test run to avoid
// duplicate Prometheus metric registration errors from promauto's global registry
var (
	testProvider *telemetry.Provider
	providerOnce sync.Once
)

func getTestProvider(t *testing.T) *telemetry.Provider {
	t.Helper()
	providerOnce.Do(func() {
		testProvider = telemetry.NewProvider()
	})
	return testProvider
}

func TestNewProvider(t *testing.T) {
	provider := getTestProvider(t)
	if provider == nil {
		t.Fatal("expected non-nil provider")
	}
	if provider.Tracer == nil {
		t.Error("expected non-nil tracer")
	}
	if provider.Metrics == nil {
		t.Error("expected non-nil metrics")
	}
	if provider.Handler() == nil {
		t.Error("expected non-nil metrics handler")
	}
}

func TestRecordChatFlow(t *testing.T) {
	provider := getTestProvider(t)
	ctx := context.Background()

	// Should not panic
	provider.RecordSessionStarted(ctx)
	provider.RecordMessage(ctx, "prompt", 10*time.Millisecond)
	provider.RecordMessage(ctx, "ai", 2*time.Second)
	provider.RecordMessageFailure(ctx)
}

func TestRecordMatching(t *testing.T) {
	provider := getTestProvider(t)
	ctx := context.Background()

	// Should not panic
	provider.RecordMatch(ctx, time.Millisecond, 0.93, "excellent")
	provider.RecordMatchMiss(ctx, time.Millisecond)
	provider.RecordFAQHit(ctx)
	provider.RecordFAQPromotion(ctx)
}

func TestRecordLLMCall(t *testing.T) {
	provider := getTestProvider(t)
	ctx := context.Background()

	// Should not panic
	provider.RecordLLMCall(ctx, time.Second, 420, nil)
	provider.RecordLLMCall(ctx, time.Second, 0, errors.New("timeout"))
}

func TestStartSpan(t *testing.T) {
	provider := getTestProvider(t)

	ctx, span := provider.StartSpan(context.Background(), "test-span")
	if ctx == nil || span == nil {
		t.Fatal("expected a context and span")
	}
	span.End()
}
