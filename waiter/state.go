package waiter

// state is the bookkeeping for a single Wait call.
//
// A name is in exactly one of awaiting or located. pending lists names
// located since the last flush, in discovery order.
type state struct {
	order    []string // Distinct requested names, in request order
	awaiting map[string]struct{}
	located  map[string]Artifact
	pending  []string
}

func newState(names []string) *state {
	s := &state{
		awaiting: make(map[string]struct{}, len(names)),
		located:  make(map[string]Artifact, len(names)),
	}
	for _, name := range names {
		if _, dup := s.awaiting[name]; dup {
			continue
		}
		s.awaiting[name] = struct{}{}
		s.order = append(s.order, name)
	}
	return s
}

// markFound records a listed artifact if its name is still awaited.
// Returns false for names that were never requested or are already
// located; the first record seen for a name is kept.
func (s *state) markFound(a Artifact) bool {
	if _, ok := s.awaiting[a.Name]; !ok {
		return false
	}
	delete(s.awaiting, a.Name)
	s.located[a.Name] = a
	s.pending = append(s.pending, a.Name)
	return true
}

// complete reports whether every requested name has been located.
func (s *state) complete() bool {
	return len(s.awaiting) == 0
}

// missing returns the names still awaited, in request order.
func (s *state) missing() []string {
	var names []string
	for _, name := range s.order {
		if _, ok := s.awaiting[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// takePending returns and clears the names found since the last flush.
func (s *state) takePending() []string {
	names := s.pending
	s.pending = nil
	return names
}
