package relevance

import "encoding/json"

// KeywordSet is a deduplicated, insertion-ordered set of lower-case
// keywords. The zero value is an empty set.
type KeywordSet struct {
	order []string
	index map[string]struct{}
}

// NewKeywordSet builds a set from already normalised keywords.
func NewKeywordSet(keywords ...string) KeywordSet {
	var s KeywordSet
	s.add(keywords...)
	return s
}

func (s *KeywordSet) add(keywords ...string) {
	if s.index == nil {
		s.index = make(map[string]struct{}, len(keywords))
	}
	for _, k := range keywords {
		if _, ok := s.index[k]; ok {
			continue
		}
		s.index[k] = struct{}{}
		s.order = append(s.order, k)
	}
}

func (s KeywordSet) Len() int {
	return len(s.order)
}

func (s KeywordSet) Contains(k string) bool {
	_, ok := s.index[k]
	return ok
}

func (s KeywordSet) containsAny(keywords []string) bool {
	for _, k := range keywords {
		if s.Contains(k) {
			return true
		}
	}
	return false
}

// Keywords returns the keywords in the order they were added.
func (s KeywordSet) Keywords() []string {
	return append([]string(nil), s.order...)
}

// Head returns at most n keywords in insertion order.
func (s KeywordSet) Head(n int) []string {
	if n > len(s.order) {
		n = len(s.order)
	}
	return append([]string(nil), s.order[:n]...)
}

func (s KeywordSet) MarshalJSON() ([]byte, error) {
	if s.order == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.order)
}
