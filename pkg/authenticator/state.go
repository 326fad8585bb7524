package authenticator

import "github.com/pkg/errors"

// State tracks a bundle's progress through the protocol phases.
type State int

const (
	StateUncommitted State = iota
	StateCommitted
	StateChallenged
	StateResponded
	StateVerified
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateUncommitted:
		return "uncommitted"
	case StateCommitted:
		return "committed"
	case StateChallenged:
		return "challenged"
	case StateResponded:
		return "responded"
	case StateVerified:
		return "verified"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// bundleSession enforces the per-bundle phase order during generation:
// Uncommitted -> Committed -> Challenged -> Responded.
type bundleSession struct {
	state State
}

func newBundleSession() *bundleSession {
	return &bundleSession{state: StateUncommitted}
}

// advance moves the session to next, rejecting any out-of-order phase.
func (s *bundleSession) advance(next State) error {
	if next != s.state+1 {
		return errors.Errorf("invalid state transition %s -> %s", s.state, next)
	}
	s.state = next
	return nil
}
