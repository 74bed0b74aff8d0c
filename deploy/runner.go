package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
)

// Runner starts the deployment unit's entrypoint as the sole foreground
// child process and passes its exit code through unchanged. There is no
// supervision: a crashed child is simply a nonzero return.
type Runner struct {
	Logger *slog.Logger
}

// NewRunner creates a Runner. A nil logger falls back to the default.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{Logger: logger}
}

// Run starts argv in the foreground with inherited stdio and waits for it.
// SIGINT and SIGTERM are forwarded to the child's process group, as is
// context cancellation (as SIGTERM). The returned int is the child's exit
// status; a child that could not be started at all is reported through the
// error instead.
func (runner *Runner) Run(ctx context.Context, argv []string) (int, error) {
	if len(argv) == 0 {
		return 0, fmt.Errorf("empty entrypoint")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// Give the child its own process group so forwarded signals reach the
	// whole tree, not just the immediate child.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("starting %s : %w", argv[0], err)
	}
	runner.Logger.Info("entrypoint started", "pid", cmd.Process.Pid, "command", argv[0])

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	forwardDone := make(chan struct{})
	defer close(forwardDone)
	go func() {
		for {
			select {
			case sig := <-signals:
				runner.forward(cmd.Process.Pid, sig.(syscall.Signal))
			case <-ctx.Done():
				runner.forward(cmd.Process.Pid, syscall.SIGTERM)
				return
			case <-forwardDone:
				return
			}
		}
	}()

	err := cmd.Wait()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			runner.Logger.Info("entrypoint exited", "code", code)
			return code, nil
		}
		return 0, fmt.Errorf("waiting for %s : %w", argv[0], err)
	}

	runner.Logger.Info("entrypoint exited", "code", 0)
	return 0, nil
}

// forward signals the child's whole process group.
func (runner *Runner) forward(pid int, sig syscall.Signal) {
	if err := syscall.Kill(-pid, sig); err != nil {
		runner.Logger.Warn("forwarding signal", "signal", sig, "error", err)
	}
}
