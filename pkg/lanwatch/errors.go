package lanwatch

import (
	"errors"
	"fmt"

	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/network"
)

// Errors
var (
	// ErrInvalidConfig is returned by New for out-of-range options.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrNoConnection is returned when probing without an active connection,
	// or when the connection's subnet holds no probe-able addresses.
	ErrNoConnection = errors.New("no active network connection")
	// ErrInvalidNetwork is returned for an unparseable address or mask.
	ErrInvalidNetwork = network.ErrInvalidNetwork
	// ErrInvalidInput is returned by searches given no terms.
	ErrInvalidInput = errors.New("invalid input")
)

// ConfigError describes a rejected option. It matches ErrInvalidConfig
// with errors.Is.
type ConfigError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s = %v: %s", e.Field, e.Value, e.Reason)
}

// Is reports whether target is ErrInvalidConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}
