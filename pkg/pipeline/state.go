package pipeline

import "fmt"

// State is a stage of a build.
type State int

const (
	StateInit State = iota
	StateFetchSources
	StateMerge
	StateComputeDerived
	StateWrite
	StateDone
	StateFatal
)

var stateNames = map[State]string{
	StateInit:           "init",
	StateFetchSources:   "fetch_sources",
	StateMerge:          "merge",
	StateComputeDerived: "compute_derived",
	StateWrite:          "write",
	StateDone:           "done",
	StateFatal:          "fatal",
}

// String implements fmt.Stringer.
func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText makes states readable in JSON reports and logs.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsTerminal returns true for Done and Fatal.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFatal
}

// CanMove checks if the transition from s to next is allowed. The
// happy path is strictly linear; any non-terminal state may fail.
func (s State) CanMove(next State) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StateFatal {
		return true
	}
	return next == s+1
}
