package idkey

import (
	"encoding/json"

	"github.com/signadot/keydiff/keypath"
)

// Set holds the identity-key outcomes of one comparison run, indexed by
// generalized array location.  It doubles as the detector memo: each
// distinct array location is analyzed once per run.  A Set must not be
// shared across comparison runs of different document pairs.
type Set struct {
	m     map[string]*Info
	order []*Info
}

func NewSet(infos ...*Info) *Set {
	s := &Set{m: map[string]*Info{}}
	for _, info := range infos {
		s.Add(info)
	}
	return s
}

// Add records info under its Location.  The first info recorded for a
// location wins.
func (s *Set) Add(info *Info) {
	loc := info.Location.String()
	if _, ok := s.m[loc]; ok {
		return
	}
	s.m[loc] = info
	s.order = append(s.order, info)
}

// At returns the info covering the given array location, or nil.
func (s *Set) At(loc keypath.ArrayPattern) *Info {
	if s == nil {
		return nil
	}
	return s.m[loc.String()]
}

// Infos lists the recorded infos in discovery order.
func (s *Set) Infos() []*Info {
	if s == nil {
		return nil
	}
	return s.order
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Infos())
}
