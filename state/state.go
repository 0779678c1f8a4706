// Package state defines the closed enumerations shared by the exporter:
// the health [State] a PiAware subsystem can be in and the five
// [Subsystem] values that are tracked.
//
// Both types are small integers with a fixed set of named constants, so an
// invalid value cannot be produced without an explicit conversion. The zero
// value of [State] is [Unavailable], which means a freshly declared state is
// always valid.
package state

import "fmt"

// State is the health of a single PiAware subsystem.
type State uint8

const (
	// Unavailable indicates the state is not known, either because nothing
	// has been read yet or because the last fetch returned a non-2xx code.
	Unavailable State = iota

	// Green indicates the subsystem reports healthy.
	Green

	// Amber indicates the subsystem reports a warning.
	Amber

	// Red indicates the subsystem reports a failure, or reported a value
	// that could not be interpreted.
	Red
)

// States lists every State in export order.
var States = []State{Green, Amber, Red, Unavailable}

// String returns the exported label value for the state.
// Unavailable is rendered as "N/A".
func (s State) String() string {
	switch s {
	case Green:
		return "green"
	case Amber:
		return "amber"
	case Red:
		return "red"
	case Unavailable:
		return "N/A"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// MarshalText implements encoding.TextMarshaler so states serialize as
// their label value in JSON.
func (s State) MarshalText() ([]byte, error) {
	if s > Red {
		return nil, fmt.Errorf("invalid state %d", uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Parse converts a label value back into a State.
// It accepts exactly the strings produced by [State.String].
func Parse(v string) (State, error) {
	switch v {
	case "green":
		return Green, nil
	case "amber":
		return Amber, nil
	case "red":
		return Red, nil
	case "N/A":
		return Unavailable, nil
	}
	return Unavailable, fmt.Errorf("unknown state %q", v)
}

// FromStatus folds a raw PiAware status value into a State.
// "green" and "amber" map to themselves; anything else is Red.
func FromStatus(status string) State {
	switch status {
	case "green":
		return Green
	case "amber":
		return Amber
	default:
		return Red
	}
}
