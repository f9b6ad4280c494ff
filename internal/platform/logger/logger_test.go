package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/lexcram/recall-api/internal/config"
)

func TestSetup(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := Setup(config.ServerConfig{Port: 8080, LogLevel: level})
		if err != nil {
			t.Fatalf("level %s: expected no error, got %v", level, err)
		}
		if logger == nil {
			t.Fatalf("level %s: expected a logger", level)
		}
	}
}

func TestSetupInvalidLevelFallsBack(t *testing.T) {
	logger, err := Setup(config.ServerConfig{Port: 8080, LogLevel: "shouting"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if logger == nil {
		t.Fatal("Expected a logger despite the invalid level")
	}
}

func TestFromContext(t *testing.T) {
	ctx := context.Background()

	if got := FromContext(ctx); got != slog.Default() {
		t.Error("Expected default logger for an empty context")
	}

	custom := slog.Default().With(slog.String("trace_id", "abc"))
	ctx = WithLogger(ctx, custom)

	if got := FromContext(ctx); got != custom {
		t.Error("Expected the stored logger to round-trip")
	}

	fallback := slog.Default().With(slog.String("component", "test"))
	if got := FromContextOrDefault(context.Background(), fallback); got != fallback {
		t.Error("Expected the fallback logger when the context is empty")
	}
	if got := FromContextOrDefault(ctx, fallback); got != custom {
		t.Error("Expected the stored logger to win over the fallback")
	}
}
