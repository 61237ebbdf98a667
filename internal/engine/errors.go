package engine

import (
	"errors"
	"fmt"

	"github.com/bobotu/kaosu-packer/internal/model"
)

// ErrSolverUsed is returned by Run when a solver is reused. A run is
// restartable only by building a new solver with the same seed.
var ErrSolverUsed = errors.New("solver already ran; create a new solver to rerun")

// ConfigError reports an invalid problem or parameter set. It is
// always raised before any generation runs.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func configErrorf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InfeasibleItemError reports a box that fits an empty bin under no
// permitted orientation. No chromosome can place such a box, so the
// solver rejects the problem before evolution begins.
type InfeasibleItemError struct {
	BoxIndex int
	Box      model.Dimension
	Bin      model.Dimension
}

func (e *InfeasibleItemError) Error() string {
	return fmt.Sprintf("box %d (%d×%d×%d) fits bin (%d×%d×%d) under no permitted orientation",
		e.BoxIndex,
		e.Box.Width, e.Box.Depth, e.Box.Height,
		e.Bin.Width, e.Bin.Depth, e.Bin.Height)
}
