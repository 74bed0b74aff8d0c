package deploy

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunner_Run(t *testing.T) {
	runner := NewRunner(testLogger())

	t.Run("should pass a clean exit through", func(t *testing.T) {
		code, err := runner.Run(context.Background(), []string{"/bin/sh", "-c", "exit 0"})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if code != 0 {
			t.Fatalf("\nwanted:\n0\ngot:\n%d", code)
		}
	})

	t.Run("should pass a nonzero exit through", func(t *testing.T) {
		code, err := runner.Run(context.Background(), []string{"/bin/sh", "-c", "exit 3"})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if code != 3 {
			t.Fatalf("\nwanted:\n3\ngot:\n%d", code)
		}
	})

	t.Run("should forward cancellation as a single term signal", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(200 * time.Millisecond)
			cancel()
		}()

		// The child converts the first TERM into a distinct exit code, so
		// the passthrough proves the signal arrived.
		code, err := runner.Run(ctx, []string{"/bin/sh", "-c", "trap 'exit 7' TERM; sleep 10 & wait"})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if code != 7 {
			t.Fatalf("\nwanted:\n7\ngot:\n%d", code)
		}
	})

	t.Run("should report an unstartable entrypoint as an error", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "missing-binary")
		_, err := runner.Run(context.Background(), []string{missing})
		if err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})

	t.Run("should reject an empty entrypoint", func(t *testing.T) {
		_, err := runner.Run(context.Background(), nil)
		if err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})
}
