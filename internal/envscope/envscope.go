// Package envscope tracks process-environment changes made during a run and
// undoes them on release.
package envscope

import (
	"fmt"
	"os"
	"sync"

	multierror "github.com/hashicorp/go-multierror"

	"github.com/Jordan-Sun/geos-chem/internal/utils"
)

type prior struct {
	key   string
	value string
	set   bool
}

// Scope is a set of environment changes and release hooks.
// The zero value is ready to use.
type Scope struct {
	mu       sync.Mutex
	priors   []prior
	seen     map[string]bool
	hooks    []func() error
	released bool
}

// New returns an empty scope.
func New() *Scope {
	return &Scope{}
}

// Set exports key=value and remembers the value that was there before the
// first Set of key in this scope.
func (s *Scope) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if !s.seen[key] {
		old, ok := os.LookupEnv(key)
		s.priors = append(s.priors, prior{key: key, value: old, set: ok})
		s.seen[key] = true
	}
	if err := os.Setenv(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	utils.PrintDebug("export %s=%s", key, value)
	return nil
}

// OnRelease registers fn to run during Release. Hooks run in reverse order
// of registration, after the environment has been restored.
func (s *Scope) OnRelease(fn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Keys lists the variables set through the scope, in first-set order.
func (s *Scope) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, len(s.priors))
	for i, p := range s.priors {
		keys[i] = p.key
	}
	return keys
}

// Release restores every variable to its prior state (unsetting those that
// were absent) in reverse order and then runs the release hooks. All
// failures are collected. Calling Release again does nothing.
func (s *Scope) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil
	}
	s.released = true

	var errs *multierror.Error
	for i := len(s.priors) - 1; i >= 0; i-- {
		p := s.priors[i]
		var err error
		if p.set {
			err = os.Setenv(p.key, p.value)
		} else {
			err = os.Unsetenv(p.key)
		}
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("failed to restore %s: %w", p.key, err))
		}
	}
	for i := len(s.hooks) - 1; i >= 0; i-- {
		if err := s.hooks[i](); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}
