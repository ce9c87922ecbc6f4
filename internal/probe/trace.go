package probe

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"
)

// SystemTracer shells out to the system traceroute binary
type SystemTracer struct {
	host string
}

// NewSystemTracer creates a tracer for the given host
func NewSystemTracer(host string) *SystemTracer {
	return &SystemTracer{host: host}
}

// Host returns the traced host
func (t *SystemTracer) Host() string {
	return t.host
}

// Start launches `traceroute host` with stderr folded into the line
// stream, so resolver errors show up alongside hop output. Cancelling
// ctx kills the subprocess.
func (t *SystemTracer) Start(ctx context.Context) (TraceRun, error) {
	cmd := exec.CommandContext(ctx, "traceroute", t.host)

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		return nil, fmt.Errorf("failed to start traceroute: %w", err)
	}

	run := &execTraceRun{
		cmd:   cmd,
		lines: make(chan string, 64),
		done:  make(chan struct{}),
	}

	// Reap the process; closing the write end unblocks the reader below
	go func() {
		err := cmd.Wait()
		var exitErr *exec.ExitError
		switch {
		case err == nil:
			run.exitCode = 0
		case errors.As(err, &exitErr):
			run.exitCode = exitErr.ExitCode()
		default:
			run.waitErr = err
		}
		pw.Close()
		close(run.done)
	}()

	go func() {
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 64*1024), 64*1024)
		for scanner.Scan() {
			run.lines <- scanner.Text()
		}
		close(run.lines)
	}()

	return run, nil
}

// execTraceRun wraps a running traceroute subprocess
type execTraceRun struct {
	cmd      *exec.Cmd
	lines    chan string
	done     chan struct{}
	exitCode int
	waitErr  error
}

func (r *execTraceRun) Lines() <-chan string {
	return r.lines
}

func (r *execTraceRun) Wait(grace time.Duration) (int, error) {
	select {
	case <-r.done:
		return r.exitCode, r.waitErr
	case <-time.After(grace):
		return 0, fmt.Errorf("traceroute still running after %s", grace)
	}
}

func (r *execTraceRun) Kill() {
	if r.cmd.Process != nil {
		r.cmd.Process.Kill()
	}
}
