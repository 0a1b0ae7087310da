package coupon

// MapCodeSet implements CodeSet using a map for O(1) lookups.
type MapCodeSet struct {
	codes map[string]struct{}
}

// NewMapCodeSet creates an empty set sized for capacity codes.
func NewMapCodeSet(capacity int) *MapCodeSet {
	return &MapCodeSet{
		codes: make(map[string]struct{}, capacity),
	}
}

// Contains checks if a coupon code exists in the set.
func (s *MapCodeSet) Contains(code string) bool {
	_, exists := s.codes[code]
	return exists
}

// Size returns the number of codes in the set.
func (s *MapCodeSet) Size() int {
	return len(s.codes)
}

// Add inserts code into the set.
func (s *MapCodeSet) Add(code string) {
	s.codes[code] = struct{}{}
}
