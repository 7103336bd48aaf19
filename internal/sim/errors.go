package sim

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig = errors.New("sim: invalid config")
	ErrInvalidPose   = errors.New("sim: non-finite pose")
)

// RunError places a failure at a step of a run.
type RunError struct {
	Step int
	Time float64
	Err  error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("sim: step %d (t=%.3fs): %v", e.Step, e.Time, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }
