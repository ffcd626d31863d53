package session

// dedupSet is a bounded set of already-handled message ids. Once full, the
// oldest entries are evicted first; the durable store check covers anything
// that falls out of the window.
type dedupSet struct {
	max   int
	order []string
	seen  map[string]struct{}
}

func newDedupSet(max int) *dedupSet {
	return &dedupSet{
		max:  max,
		seen: make(map[string]struct{}, max),
	}
}

func (s *dedupSet) has(id string) bool {
	_, ok := s.seen[id]
	return ok
}

func (s *dedupSet) add(id string) {
	if s.has(id) {
		return
	}
	for len(s.order) >= s.max {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.seen, oldest)
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *dedupSet) len() int {
	return len(s.seen)
}
