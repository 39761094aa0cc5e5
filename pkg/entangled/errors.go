package entangled

import (
	"errors"
	"fmt"
)

var (
	ErrGameOver             = errors.New("game is over")
	ErrInvalidMove          = errors.New("invalid move")
	ErrSwapUnavailable      = errors.New("swap not available")
	ErrInvalidSuperposition = errors.New("invalid superposition config")
	ErrNotSuperposition     = errors.New("symbol is not in superposition")
	ErrLayoutMismatch       = errors.New("board layouts differ in size")
	ErrInvalidLayout        = errors.New("invalid layout")
	ErrUnknownLayout        = errors.New("unknown layout")
)

// ConfigError reports a rejected superposition token. It matches
// ErrInvalidSuperposition with errors.Is.
type ConfigError struct {
	Token  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("superposition config: %s", e.Reason)
	}
	return fmt.Sprintf("superposition config: %q: %s", e.Token, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidSuperposition }
