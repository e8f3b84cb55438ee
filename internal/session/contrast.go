package session

import "sync"

// PreferenceKey is the kv key holding the persisted high contrast choice.
const PreferenceKey = "highContrastMode"

// ContrastSignal reports the platform's "prefers more contrast" setting.
type ContrastSignal interface {
	PrefersMoreContrast() bool
	// Subscribe calls fn on every change until the returned cancel runs.
	Subscribe(fn func(bool)) (cancel func())
}

// Signal is a settable ContrastSignal for hosts that learn the preference
// from configuration or a terminal query.
type Signal struct {
	mu    sync.Mutex
	value bool
	next  int
	subs  map[int]func(bool)
}

// NewSignal creates a signal holding initial.
func NewSignal(initial bool) *Signal {
	return &Signal{value: initial, subs: make(map[int]func(bool))}
}

func (s *Signal) PrefersMoreContrast() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

func (s *Signal) Subscribe(fn func(bool)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Set changes the value and notifies subscribers when it differs.
func (s *Signal) Set(v bool) {
	s.mu.Lock()
	if s.value == v {
		s.mu.Unlock()
		return
	}
	s.value = v
	fns := make([]func(bool), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}
