package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxOutputBytes caps each captured stream when no limit is configured
const DefaultMaxOutputBytes = 1 << 20

// waitDelay bounds how long Wait blocks on pipes held open by orphaned children
const waitDelay = 2 * time.Second

// ErrNotFound is returned when the command binary is not on PATH
var ErrNotFound = errors.New("command not found")

// Command describes a single process invocation
type Command struct {
	Name    string
	Args    []string
	Dir     string
	Env     []string // appended to the host environment
	Timeout time.Duration
}

// Shell wraps a command line in "sh -c"
func Shell(line, dir string, timeout time.Duration) Command {
	return Command{Name: "sh", Args: []string{"-c", line}, Dir: dir, Timeout: timeout}
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result holds the outcome of a command. A timeout is reported through
// TimedOut, never through Err.
type Result struct {
	ExitCode  int
	Stdout    string
	Stderr    string
	Duration  time.Duration
	TimedOut  bool
	Truncated bool
	Err       error
}

// Combined returns stdout followed by stderr
func (r *Result) Combined() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// Succeeded reports whether the process ran to completion with exit code 0
func (r *Result) Succeeded() bool {
	return r.Err == nil && !r.TimedOut && r.ExitCode == 0
}

// Executor runs commands. Implementations must be safe for concurrent use.
type Executor interface {
	Run(ctx context.Context, cmd Command) *Result
}

// LocalExecutor runs commands on the host, each in its own process group so
// the whole tree can be killed.
type LocalExecutor struct {
	maxOutput int
	logger    *zap.Logger
}

// Option configures a LocalExecutor
type Option func(*LocalExecutor)

// WithMaxOutputBytes caps the bytes captured per stream. Beyond the cap the
// start and the end of the stream are kept.
func WithMaxOutputBytes(n int) Option {
	return func(e *LocalExecutor) {
		if n > 0 {
			e.maxOutput = n
		}
	}
}

// WithLogger sets the logger used for command tracing
func WithLogger(logger *zap.Logger) Option {
	return func(e *LocalExecutor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates a LocalExecutor
func New(opts ...Option) *LocalExecutor {
	e := &LocalExecutor{
		maxOutput: DefaultMaxOutputBytes,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run starts the command and waits for it to exit, the timeout to fire, or
// ctx to be cancelled. On timeout the process group is killed and whatever
// output was captured so far is returned.
func (e *LocalExecutor) Run(ctx context.Context, c Command) *Result {
	start := time.Now()
	res := &Result{ExitCode: -1}

	path, err := exec.LookPath(c.Name)
	if err != nil {
		res.Err = fmt.Errorf("%w: %s", ErrNotFound, c.Name)
		res.Duration = time.Since(start)
		return res
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.Command(path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)

	stdoutLimited := newLimitedWriter(e.maxOutput)
	stderrLimited := newLimitedWriter(e.maxOutput)
	cmd.Stdout = stdoutLimited
	cmd.Stderr = stderrLimited

	e.logger.Debug("Executing command",
		zap.String("command", c.String()),
		zap.String("dir", c.Dir),
		zap.Duration("timeout", c.Timeout),
	)

	if err := cmd.Start(); err != nil {
		res.Err = fmt.Errorf("failed to start %s: %w", c.Name, err)
		res.Duration = time.Since(start)
		return res
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var waitErr error
	select {
	case <-ctx.Done():
		killProcessGroup(cmd)
		waitErr = <-done
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			res.TimedOut = true
			e.logger.Warn("Command timed out",
				zap.String("command", c.String()),
				zap.Duration("timeout", c.Timeout),
			)
		} else {
			res.Err = fmt.Errorf("execution cancelled: %w", ctx.Err())
		}
	case waitErr = <-done:
		// reap anything the command left running in its group
		killProcessGroup(cmd)
	}

	res.Duration = time.Since(start)
	res.Stdout = stdoutLimited.String()
	res.Stderr = stderrLimited.String()
	res.Truncated = stdoutLimited.truncated || stderrLimited.truncated

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil, errors.Is(waitErr, exec.ErrWaitDelay):
		if cmd.ProcessState != nil {
			res.ExitCode = cmd.ProcessState.ExitCode()
		}
	case errors.As(waitErr, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	case !res.TimedOut && res.Err == nil:
		res.Err = fmt.Errorf("failed to execute %s: %w", c.Name, waitErr)
	}

	e.logger.Debug("Command finished",
		zap.String("command", c.String()),
		zap.Int("exit_code", res.ExitCode),
		zap.Bool("timed_out", res.TimedOut),
		zap.Duration("duration", res.Duration),
	)

	return res
}
