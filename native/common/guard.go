package common

import (
	"errors"
	"strings"
	"sync"
)

var ErrModulePaused = errors.New("module paused")

// PauseView reports whether a named module has been administratively paused.
type PauseView interface {
	IsPaused(module string) bool
}

// Guard rejects the call when the module is paused. A nil view or empty module
// name disables the check.
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}

// PauseSet is a concurrency-safe PauseView backed by an explicit set of paused
// module names. The zero value pauses nothing.
type PauseSet struct {
	mu     sync.RWMutex
	paused map[string]struct{}
}

// NewPauseSet builds a view with the supplied modules already paused.
func NewPauseSet(modules ...string) *PauseSet {
	set := &PauseSet{paused: make(map[string]struct{})}
	for _, module := range modules {
		set.Pause(module)
	}
	return set
}

func normalizeModule(module string) string {
	return strings.ToLower(strings.TrimSpace(module))
}

// Pause marks the module as paused.
func (s *PauseSet) Pause(module string) {
	name := normalizeModule(module)
	if name == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused == nil {
		s.paused = make(map[string]struct{})
	}
	s.paused[name] = struct{}{}
}

// Resume clears the paused flag for the module.
func (s *PauseSet) Resume(module string) {
	name := normalizeModule(module)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.paused, name)
}

// IsPaused implements the PauseView interface.
func (s *PauseSet) IsPaused(module string) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.paused[normalizeModule(module)]
	return ok
}
