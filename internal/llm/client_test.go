package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/coldflow/supportbot/internal/config"
	"github.com/coldflow/supportbot/internal/llm"
)

func TestClient_DisabledFallback(t *testing.T) {
	client := llm.NewClient(config.OpenAIConfig{Enabled: false}, nil)

	reply, err := client.Generate(context.Background(), []llm.Turn{
		{Role: llm.RoleUser, Content: "my fridge is broken"},
	})
	if !errors.Is(err, llm.ErrDisabled) {
		t.Errorf("err = %v, want ErrDisabled", err)
	}
	if reply != nil {
		t.Errorf("reply = %+v, want nil", reply)
	}
}

func TestClient_CancelledContext(t *testing.T) {
	client := llm.NewClient(config.OpenAIConfig{
		Enabled:           true,
		APIKey:            "test-key",
		RequestsPerSecond: 1,
	}, nil)

	// An already-cancelled context fails at the rate limiter, before any
	// network traffic.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Generate(ctx, []llm.Turn{{Role: llm.RoleUser, Content: "hello"}})
	if err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
}
