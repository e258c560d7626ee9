package scene

import "fmt"

// Surface is a retained drawing target: a canvas and an ordered element
// list, where later elements draw on top of earlier ones.
//
// Each [Key] appears at most once. A Surface is not safe for concurrent use.
type Surface struct {
	Canvas     Canvas
	Background string // empty for transparent
	Title      string

	elems []Element
	index map[Key]int
}

// NewSurface returns an empty surface on the given canvas.
func NewSurface(c Canvas) *Surface {
	return &Surface{Canvas: c, index: make(map[Key]int)}
}

// Len returns the number of retained elements.
func (s *Surface) Len() int { return len(s.elems) }

// Elements returns the retained elements in draw order. The slice is a copy.
func (s *Surface) Elements() []Element {
	out := make([]Element, len(s.elems))
	copy(out, s.elems)
	return out
}

// Count returns the number of retained elements of a class.
func (s *Surface) Count(class string) int {
	n := 0
	for _, el := range s.elems {
		if el.Key().Class == class {
			n++
		}
	}
	return n
}

// Lookup returns the element retained under k.
func (s *Surface) Lookup(k Key) (Element, bool) {
	i, ok := s.index[k]
	if !ok {
		return nil, false
	}
	return s.elems[i], true
}

// Append adds el on top of everything else.
func (s *Surface) Append(el Element) error {
	if err := s.checkNew(el); err != nil {
		return err
	}
	s.index[el.Key()] = len(s.elems)
	s.elems = append(s.elems, el)
	return nil
}

// InsertBefore adds el directly below the first element of the given class,
// or on top when no such element exists.
func (s *Surface) InsertBefore(el Element, class string) error {
	if err := s.checkNew(el); err != nil {
		return err
	}
	at := len(s.elems)
	for i, e := range s.elems {
		if e.Key().Class == class {
			at = i
			break
		}
	}
	s.elems = append(s.elems, nil)
	copy(s.elems[at+1:], s.elems[at:])
	s.elems[at] = el
	s.reindex(at)
	return nil
}

// Replace swaps the element retained under el's key for el, keeping its
// draw position.
func (s *Surface) Replace(el Element) error {
	i, ok := s.index[el.Key()]
	if !ok {
		return fmt.Errorf("scene: no element %s", el.Key())
	}
	s.elems[i] = el
	return nil
}

// Remove drops the element retained under k. It reports whether one existed.
func (s *Surface) Remove(k Key) bool {
	i, ok := s.index[k]
	if !ok {
		return false
	}
	delete(s.index, k)
	s.elems = append(s.elems[:i], s.elems[i+1:]...)
	s.reindex(i)
	return true
}

// Clear drops every element and keeps the canvas.
func (s *Surface) Clear() {
	s.elems = nil
	s.index = make(map[Key]int)
}

func (s *Surface) checkNew(el Element) error {
	if s.index == nil {
		s.index = make(map[Key]int)
	}
	if _, dup := s.index[el.Key()]; dup {
		return fmt.Errorf("scene: duplicate element %s", el.Key())
	}
	return nil
}

func (s *Surface) reindex(from int) {
	for i := from; i < len(s.elems); i++ {
		s.index[s.elems[i].Key()] = i
	}
}
