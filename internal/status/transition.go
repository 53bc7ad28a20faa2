package status

import (
	"github.com/pkg/errors"
)

// ErrInvalidTransition is returned under PolicyStrict when the requested
// status is not reachable from the current one.
var ErrInvalidTransition = errors.New("invalid status transition")

// Policy decides what happens to a write whose transition is not allowed.
type Policy string

const (
	// PolicyLenient lets the write proceed and reports a warning.
	PolicyLenient Policy = "lenient"
	// PolicyStrict rejects the write before anything is persisted.
	PolicyStrict Policy = "strict"
)

// ParsePolicy maps a config value to a Policy. Empty means lenient.
func ParsePolicy(v string) (Policy, error) {
	switch Policy(v) {
	case "", PolicyLenient:
		return PolicyLenient, nil
	case PolicyStrict:
		return PolicyStrict, nil
	}
	return "", errors.Errorf("unknown transition policy %q", v)
}

// IsValidTransition reports whether to is directly reachable from from.
func IsValidTransition(from, to string) bool {
	d, ok := byValue[Status(from)]
	if !ok {
		return false
	}
	for _, next := range d.CanTransitionTo {
		if string(next) == to {
			return true
		}
	}
	return false
}

// Check applies the policy to a transition. It returns (true, nil) for an
// allowed transition, (false, nil) for a tolerated invalid one and
// ErrInvalidTransition when the policy rejects it.
func (p Policy) Check(from, to string) (bool, error) {
	if IsValidTransition(from, to) {
		return true, nil
	}
	if p == PolicyStrict {
		return false, errors.Wrapf(ErrInvalidTransition, "%q -> %q", from, to)
	}
	return false, nil
}
