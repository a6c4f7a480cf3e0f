package physics

import (
	"errors"
	"fmt"
)

// Domain errors. The step itself never returns them; they are raised by the
// layers that validate input before it reaches the core or that watch its
// output.
var (
	// ErrNonFinite indicates a position or velocity became NaN or Inf.
	ErrNonFinite = errors.New("physics: non-finite state (NaN or Inf detected)")

	// ErrInvalidMass indicates a particle mass that is not strictly positive.
	ErrInvalidMass = errors.New("physics: mass must be positive")

	// ErrInvalidTimestep indicates a negative or non-finite dt.
	ErrInvalidTimestep = errors.New("physics: invalid timestep")

	// ErrInvalidParams indicates a gravity constant or distance clamp out of range.
	ErrInvalidParams = errors.New("physics: parameter out of valid bounds")
)

// StepError wraps an error with the tick it was detected on.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
