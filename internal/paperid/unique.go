package paperid

import "fmt"

// ResolveUnique returns baseID if it is not taken. Otherwise it appends -2,
// -3, ... and returns the first candidate that is free.
func ResolveUnique(baseID string, taken func(id string) bool) string {
	if !taken(baseID) {
		return baseID
	}

	// Start at 2: baseID is taken, so first duplicate becomes baseID-2
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", baseID, i)
		if !taken(candidate) {
			return candidate
		}
	}
}

// Set is a set of identifiers already in use.
type Set map[string]struct{}

// NewSet creates a Set from any number of identifier lists.
func NewSet(lists ...[]string) Set {
	s := make(Set)
	for _, ids := range lists {
		for _, id := range ids {
			s[id] = struct{}{}
		}
	}
	return s
}

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Reserve resolves baseID against the set and adds the result to it, so a
// later call with the same base gets the next suffix.
func (s Set) Reserve(baseID string) string {
	id := ResolveUnique(baseID, s.Has)
	s[id] = struct{}{}
	return id
}
