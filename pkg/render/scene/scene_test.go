package scene

import "testing"

func keys(s *Surface) []Key {
	var out []Key
	for _, el := range s.Elements() {
		out = append(out, el.Key())
	}
	return out
}

func sameKeys(t *testing.T, got, want []Key) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keys[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSurfaceInsertBefore(t *testing.T) {
	s := NewSurface(DefaultCanvas())

	s.Append(Group{ID: 1})
	s.Append(Group{ID: 2})
	if err := s.InsertBefore(Path{ID: 2}, ClassNode); err != nil {
		t.Fatal(err)
	}
	s.Append(Group{ID: 3})
	s.InsertBefore(Path{ID: 3}, ClassNode)

	sameKeys(t, keys(s), []Key{
		{ClassLink, 2}, {ClassLink, 3},
		{ClassNode, 1}, {ClassNode, 2}, {ClassNode, 3},
	})

	// Lookups must follow the shifted positions.
	el, ok := s.Lookup(Key{ClassNode, 3})
	if !ok || el.(Group).ID != 3 {
		t.Errorf("Lookup(node-3) = %v, %v", el, ok)
	}
}

func TestSurfaceInsertBeforeNoMatch(t *testing.T) {
	s := NewSurface(DefaultCanvas())
	s.InsertBefore(Path{ID: 1}, ClassNode)
	s.Append(Group{ID: 1})
	sameKeys(t, keys(s), []Key{{ClassLink, 1}, {ClassNode, 1}})
}

func TestSurfaceDuplicate(t *testing.T) {
	s := NewSurface(DefaultCanvas())
	if err := s.Append(Group{ID: 1}); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(Group{ID: 1, X: 5}); err == nil {
		t.Error("Append(duplicate) error = nil")
	}
	if err := s.InsertBefore(Group{ID: 1}, ClassNode); err == nil {
		t.Error("InsertBefore(duplicate) error = nil")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestSurfaceReplaceKeepsOrder(t *testing.T) {
	s := NewSurface(DefaultCanvas())
	s.Append(Group{ID: 1})
	s.Append(Group{ID: 2})

	if err := s.Replace(Group{ID: 1, X: 42}); err != nil {
		t.Fatal(err)
	}
	if err := s.Replace(Group{ID: 9}); err == nil {
		t.Error("Replace(missing) error = nil")
	}

	els := s.Elements()
	if g := els[0].(Group); g.ID != 1 || g.X != 42 {
		t.Errorf("elements[0] = %+v", g)
	}
}

func TestSurfaceRemove(t *testing.T) {
	s := NewSurface(DefaultCanvas())
	s.Append(Group{ID: 1})
	s.Append(Group{ID: 2})
	s.Append(Group{ID: 3})

	if !s.Remove(Key{ClassNode, 2}) {
		t.Fatal("Remove(node-2) = false")
	}
	if s.Remove(Key{ClassNode, 2}) {
		t.Error("second Remove(node-2) = true")
	}
	sameKeys(t, keys(s), []Key{{ClassNode, 1}, {ClassNode, 3}})

	if _, ok := s.Lookup(Key{ClassNode, 3}); !ok {
		t.Error("Lookup(node-3) after remove failed")
	}
	if s.Count(ClassNode) != 2 || s.Count(ClassLink) != 0 {
		t.Errorf("Count() = %d/%d", s.Count(ClassNode), s.Count(ClassLink))
	}
}

func TestZeroSurface(t *testing.T) {
	var s Surface
	if err := s.Append(Group{ID: 1}); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestLinkHorizontal(t *testing.T) {
	tests := []struct {
		x0, y0, x1, y1 float64
		want           string
	}{
		{0, 0, 150, -20, "M0,0C75,0,75,-20,150,-20"},
		{150, 20, 300, 40, "M150,20C225,20,225,40,300,40"},
		{0, 0, 150, 10.5, "M0,0C75,0,75,10.5,150,10.5"},
	}
	for _, tt := range tests {
		if got := LinkHorizontal(tt.x0, tt.y0, tt.x1, tt.y1); got != tt.want {
			t.Errorf("LinkHorizontal(%v, %v, %v, %v) = %q, want %q", tt.x0, tt.y0, tt.x1, tt.y1, got, tt.want)
		}
	}
}

func TestCanvasTranslate(t *testing.T) {
	c := DefaultCanvas()
	x, y := c.Translate()
	if x != 90 || y != 840 {
		t.Errorf("Translate() = (%v, %v), want (90, 840)", x, y)
	}
	w, h := c.Inner()
	if w != 780 || h != 1930 {
		t.Errorf("Inner() = (%v, %v), want (780, 1930)", w, h)
	}
}

func TestCanvasFit(t *testing.T) {
	c := DefaultCanvas().Fit(0, 300, -20, 40)
	if c.Width != 480 || c.Height != 130 {
		t.Errorf("Fit() size = %vx%v, want 480x130", c.Width, c.Height)
	}
	x, y := c.Translate()
	if x != 90 || y != 60 {
		t.Errorf("Fit() translate = (%v, %v), want (90, 60)", x, y)
	}
}
