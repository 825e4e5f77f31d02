// Package ping provides single-host liveness probes.
//
// Two implementations are available: Command runs the platform ping tool and
// interprets its output, ICMP sends echo requests directly through pro-bing.
package ping

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"runtime"
	"strconv"
	"time"

	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/command"
)

// DefaultTimeout is the default per-probe timeout.
const DefaultTimeout = 3 * time.Second

// Errors
var (
	// ErrPacketLoss is returned when the host did not answer.
	ErrPacketLoss = errors.New("100% packet loss")
	// ErrInvalidIP is returned when an invalid IP address is provided.
	ErrInvalidIP = errors.New("invalid IP address")
	// ErrNotSupported is returned when no ping invocation is known for the platform.
	ErrNotSupported = errors.New("ping is not supported on this platform")
)

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from ping operations.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// Pinger probes one host. A nil error means the host is responsive.
type Pinger interface {
	Ping(ctx context.Context, ip string, timeout time.Duration) error
}

var lossPattern = regexp.MustCompile(`100(\.0+)?% (packet )?loss`)

// Command pings by spawning the system ping tool.
type Command struct {
	Runner command.Runner // nil uses command.Exec
	GOOS   string         // empty uses runtime.GOOS
}

// Ping implements Pinger.
func (c *Command) Ping(ctx context.Context, ip string, timeout time.Duration) error {
	if net.ParseIP(ip) == nil {
		return ErrInvalidIP
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	goos := c.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	args, err := Args(goos, ip, timeout)
	if err != nil {
		return err
	}
	runner := c.Runner
	if runner == nil {
		runner = command.Exec{}
	}

	// Leave the tool a moment past its own deadline to report.
	runCtx, cancel := context.WithTimeout(ctx, timeout+time.Second)
	defer cancel()

	out, err := runner.Run(runCtx, "ping", args...)
	if err != nil {
		debugLog("%s: ping failed: %v", ip, err)
		return fmt.Errorf("ping %s: %w", ip, err)
	}
	if lossPattern.MatchString(out) {
		debugLog("%s: no reply", ip)
		return ErrPacketLoss
	}
	debugLog("%s: reply", ip)
	return nil
}

// Args returns the ping arguments for a single echo request bounded by
// timeout on the given platform. Tools taking whole seconds get the timeout
// rounded up, never below one second.
func Args(goos, ip string, timeout time.Duration) ([]string, error) {
	secs := int((timeout + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	switch goos {
	case "linux", "android":
		return []string{"-c", "1", "-w", strconv.Itoa(secs), ip}, nil
	case "darwin", "freebsd", "netbsd", "openbsd", "dragonfly":
		return []string{"-c", "1", "-t", strconv.Itoa(secs), ip}, nil
	case "windows":
		return []string{"-n", "1", "-w", strconv.Itoa(secs * 1000), ip}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotSupported, goos)
	}
}
