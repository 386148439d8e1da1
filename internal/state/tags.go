package state

import (
	"encoding/json"
	"slices"
)

// TagSet is an insertion-ordered set of tags.
//
// Order is significant: it drives display and the problem tag reported
// by death analysis. Membership is a linear scan; sessions carry a
// handful of tags.
type TagSet struct {
	items []string
}

// NewTagSet builds a set from tags, dropping repeats after the first.
func NewTagSet(tags ...string) TagSet {
	s := TagSet{items: make([]string, 0, len(tags))}
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

// Add appends tag if absent. It reports whether the set changed.
func (s *TagSet) Add(tag string) bool {
	if s.Has(tag) {
		return false
	}
	s.items = append(s.items, tag)
	return true
}

// Remove deletes tag if present. It reports whether the set changed.
func (s *TagSet) Remove(tag string) bool {
	i := slices.Index(s.items, tag)
	if i < 0 {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	return true
}

// Has reports membership.
func (s TagSet) Has(tag string) bool {
	return slices.Contains(s.items, tag)
}

// Len returns the number of tags.
func (s TagSet) Len() int { return len(s.items) }

// Slice returns the tags in insertion order. The result is a copy and
// is never nil.
func (s TagSet) Slice() []string {
	return append([]string{}, s.items...)
}

// Clone returns an independent copy.
func (s TagSet) Clone() TagSet {
	return TagSet{items: s.Slice()}
}

// MarshalJSON encodes the set as an array.
func (s TagSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

// UnmarshalJSON decodes an array, dropping repeats.
func (s *TagSet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	*s = NewTagSet(tags...)
	return nil
}
