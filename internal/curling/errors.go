package curling

import "errors"

var (
	// ErrInvalidInput is returned for out-of-range speeds, a target at the
	// sheet origin, or a malformed board.
	ErrInvalidInput = errors.New("invalid input")

	// ErrModelInconsistency means the regression produced a launch speed that
	// does not exceed the desired release speed.
	ErrModelInconsistency = errors.New("velocity model inconsistency")

	// ErrSimulationFailure covers invalid simulator results and timeouts.
	ErrSimulationFailure = errors.New("simulation failure")

	// ErrEmptyCandidateSet is a programming error: generators never return
	// an empty candidate list.
	ErrEmptyCandidateSet = errors.New("empty candidate set")
)

// Disqualifying reports whether err marks a candidate as unscorable rather
// than aborting the turn.
func Disqualifying(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrModelInconsistency) ||
		errors.Is(err, ErrSimulationFailure)
}
