// Package command runs the external tools (ping, arp) that back the probes.
// Probes depend on the Runner interface so tests and host applications can
// substitute their own process spawning.
package command

import (
	"context"
	"os/exec"
)

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages for every spawned command.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// Runner spawns a command and returns its standard output.
// A non-nil error means the process failed to start or exited non-zero;
// the output captured so far is still returned.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// RunnerFunc adapts a plain function to the Runner interface.
type RunnerFunc func(ctx context.Context, name string, args ...string) (string, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, name string, args ...string) (string, error) {
	return f(ctx, name, args...)
}

// Exec runs commands with os/exec. The context bounds the process lifetime.
type Exec struct{}

// Run executes name with args and returns stdout.
func (Exec) Run(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		debugLog("%s %v: %v", name, args, err)
	}
	return string(out), err
}
