package testutil

import "testing"

// stepRunner is the part of *testing.T a Scenario drives.
type stepRunner interface {
	Helper()
	Run(name string, fn func(t *testing.T)) bool
}

// Scenario runs Given/When/Then steps as ordered subtests that share the
// enclosing test's state. After a step fails the remaining steps are still
// listed but skipped, so a broken setup reports once instead of cascading
// into every later assertion.
type Scenario struct {
	t      stepRunner
	broken string
	skip   func(t *testing.T, broken string)
}

func NewScenario(t *testing.T) *Scenario {
	return newScenario(t)
}

func newScenario(t stepRunner) *Scenario {
	return &Scenario{
		t: t,
		skip: func(t *testing.T, broken string) {
			t.Skipf("skipped: %q failed", broken)
		},
	}
}

func (s *Scenario) Given(desc string, fn func(t *testing.T)) *Scenario {
	s.t.Helper()
	return s.step("Given "+desc, fn)
}

func (s *Scenario) When(desc string, fn func(t *testing.T)) *Scenario {
	s.t.Helper()
	return s.step("When "+desc, fn)
}

func (s *Scenario) Then(desc string, fn func(t *testing.T)) *Scenario {
	s.t.Helper()
	return s.step("Then "+desc, fn)
}

// And continues the previous step's kind.
func (s *Scenario) And(desc string, fn func(t *testing.T)) *Scenario {
	s.t.Helper()
	return s.step("And "+desc, fn)
}

// Broken returns the name of the first failed step, or "".
func (s *Scenario) Broken() string {
	return s.broken
}

func (s *Scenario) step(name string, fn func(t *testing.T)) *Scenario {
	s.t.Helper()
	if s.broken != "" {
		broken := s.broken
		s.t.Run(name, func(t *testing.T) { s.skip(t, broken) })
		return s
	}
	if !s.t.Run(name, fn) {
		s.broken = name
	}
	return s
}
