package logging

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Spok95/academic-eval/internal/ctxutil"
)

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := ctxutil.WithRequestID(context.Background(), "req-1")
	ctx = ctxutil.WithOp(ctx, "evaluations.create")
	FromContext(ctx, base).Info("hello")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("ожидали 1 запись, получили %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-1" || fields["op"] != "evaluations.create" {
		t.Fatalf("нет полей контекста: %v", fields)
	}
	if _, ok := fields["user_id"]; ok {
		t.Fatal("user_id не задан, поля быть не должно")
	}
}

func TestFromContext_NilLogger(t *testing.T) {
	FromContext(context.Background(), nil).Info("no panic")
}

func TestInit(t *testing.T) {
	lg, err := Init("debug", "prod")
	if err != nil {
		t.Fatal(err)
	}
	defer lg.Closer()
	if lg.Level.Level() != zap.DebugLevel {
		t.Fatalf("уровень %s", lg.Level.Level())
	}
	lg, err = Init("bogus", "dev")
	if err != nil {
		t.Fatal(err)
	}
	if lg.Level.Level() != zap.InfoLevel {
		t.Fatalf("неизвестный уровень должен дать info, получили %s", lg.Level.Level())
	}
}
