package task

import (
	"context"
	"io"
	"log/slog"
)

func testTask(fn func(ctx context.Context) error) Task {
	return NewFunc("test", fn)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
