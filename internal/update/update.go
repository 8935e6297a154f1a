package update

import (
	"fmt"
	"time"

	"updatenotifier/internal/store"
)

// DefaultInterval is the minimum duration between registry checks.
const DefaultInterval = 24 * time.Hour

// Decision is the outcome of comparing persisted state against the interval.
type Decision string

const (
	DecisionCheck Decision = "check" // query the registry
	DecisionSkip  Decision = "skip"  // too soon since the last check
)

// Decide reports whether a check is due. found is false when no usable state
// was read. The boundary is inclusive: elapsed == interval checks.
func Decide(state store.CheckState, found bool, now time.Time, interval time.Duration) Decision {
	if !found {
		return DecisionCheck
	}
	if now.Sub(state.LastChecked) >= interval {
		return DecisionCheck
	}
	return DecisionSkip
}

// PersistenceError reports a failed write of the check state.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s check state: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
