package access

import (
	"errors"
	"fmt"
)

// State is a step of the sign-in flow.
type State int

const (
	Unauthenticated State = iota
	Welcome
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Welcome:
		return "welcome"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrInvalidTransition means the requested step is not reachable from the current state.
var ErrInvalidTransition = errors.New("invalid sign-in transition")

// Flow is the linear sign-in flow Unauthenticated → Welcome → Authenticated.
// Flow values are immutable; every step returns a new Flow.
type Flow struct {
	state    State
	identity Identity
}

// State is the current step.
func (f Flow) State() State { return f.state }

// Identity is the signed-in operator; zero while unauthenticated.
func (f Flow) Identity() Identity { return f.identity }

// SignIn checks candidate against gate and moves to Welcome.
func (f Flow) SignIn(gate *Gate, candidate string) (Flow, error) {
	if f.state != Unauthenticated {
		return f, fmt.Errorf("%w: sign in from %s", ErrInvalidTransition, f.state)
	}
	id, err := gate.Check(candidate)
	if err != nil {
		return f, err
	}
	return Flow{state: Welcome, identity: id}, nil
}

// Continue leaves the welcome screen.
func (f Flow) Continue() (Flow, error) {
	if f.state != Welcome {
		return f, fmt.Errorf("%w: continue from %s", ErrInvalidTransition, f.state)
	}
	f.state = Authenticated
	return f, nil
}

// SignOut discards the in-memory identity. There is nothing to revoke.
func (f Flow) SignOut() Flow {
	return Flow{}
}

// WelcomeMessage is the greeting shown on the welcome screen.
func (f Flow) WelcomeMessage() string {
	if f.state == Unauthenticated {
		return ""
	}
	return fmt.Sprintf("Welcome, %s!", f.identity.Name)
}
