package spacedrep

import (
	"fmt"
	"strings"
)

// State is a card's position in the learning state machine.
// The numeric order doubles as due-queue priority.
type State int

const (
	New State = iota
	Learning
	Review
	Relearning
)

func (s State) String() string {
	switch s {
	case New:
		return "new"
	case Learning:
		return "learning"
	case Review:
		return "review"
	case Relearning:
		return "relearning"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	return s >= New && s <= Relearning
}

// ParseState converts a state name back into a State.
func ParseState(v string) (State, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, s := range []State{New, Learning, Review, Relearning} {
		if s.String() == v {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidState, v)
}

func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidState, int(s))
	}
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	v, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
