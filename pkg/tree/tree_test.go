package tree

import (
	"testing"

	"github.com/matzehuels/stacktree/pkg/errors"
)

func sample() *Node {
	return Module("root",
		Page("login"),
		Module("main",
			Module("inbox", Page("search"), Page("edit")),
			Page("reports"),
		),
	)
}

func TestCount(t *testing.T) {
	tests := []struct {
		name string
		root *Node
		want int
	}{
		{"nil", nil, 0},
		{"single", Page("a"), 1},
		{"sample", sample(), 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Count(tt.root); got != tt.want {
				t.Errorf("Count() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHeight(t *testing.T) {
	if got := Height(nil); got != -1 {
		t.Errorf("Height(nil) = %d, want -1", got)
	}
	if got := Height(Page("a")); got != 0 {
		t.Errorf("Height(leaf) = %d, want 0", got)
	}
	if got := Height(sample()); got != 3 {
		t.Errorf("Height(sample) = %d, want 3", got)
	}
}

func TestWalkOrderAndSkip(t *testing.T) {
	var names []string
	Walk(sample(), func(n *Node, depth int) bool {
		names = append(names, n.Name)
		return n.Name != "inbox"
	})

	want := []string{"root", "login", "main", "inbox", "reports"}
	if len(names) != len(want) {
		t.Fatalf("visited %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("visit[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestLeaves(t *testing.T) {
	leaves := Leaves(sample())
	want := []string{"login", "search", "edit", "reports"}
	if len(leaves) != len(want) {
		t.Fatalf("Leaves() len = %d, want %d", len(leaves), len(want))
	}
	for i, l := range leaves {
		if l.Name != want[i] {
			t.Errorf("leaf[%d] = %q, want %q", i, l.Name, want[i])
		}
	}
}

func TestCountByType(t *testing.T) {
	root := sample()
	root.Children = append(root.Children, New("misc", ""))

	got := CountByType(root)
	if got[TypeModule] != 3 || got[TypePage] != 4 || got[""] != 1 {
		t.Errorf("CountByType() = %v", got)
	}
}

func TestIsModule(t *testing.T) {
	tests := []struct {
		typ  string
		want bool
	}{
		{TypeModule, true},
		{TypePage, false},
		{"", false},
		{"Module", false},
		{"widget", false},
	}
	for _, tt := range tests {
		n := New("x", tt.typ)
		if got := n.IsModule(); got != tt.want {
			t.Errorf("IsModule(%q) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestCheckParents(t *testing.T) {
	root := Module("root",
		&Node{Name: "login", Type: TypePage, Parent: "root"},
		&Node{Name: "main", Type: TypeModule, Parent: "root", Children: []*Node{
			{Name: "search", Type: TypePage, Parent: "other"},
			{Name: "edit", Type: TypePage},
		}},
	)

	mm := CheckParents(root)
	if len(mm) != 1 {
		t.Fatalf("CheckParents() = %v, want one mismatch", mm)
	}
	if mm[0].Declared != "other" || mm[0].Actual != "main" {
		t.Errorf("mismatch = %+v", mm[0])
	}
	if got := mm[0].String(); got != `root / main / search: parent "other", contained in "main"` {
		t.Errorf("String() = %q", got)
	}
}

func TestCheckParentsOnRoot(t *testing.T) {
	root := &Node{Name: "root", Parent: "ghost"}
	mm := CheckParents(root)
	if len(mm) != 1 || mm[0].Actual != "" {
		t.Errorf("CheckParents(root with parent) = %v", mm)
	}
}

func TestValidate(t *testing.T) {
	shared := Page("shared")
	cyclic := Module("a")
	cyclic.Children = []*Node{Module("b", cyclic)}

	mismatched := Module("root", &Node{Name: "p", Parent: "nope"})

	tests := []struct {
		name     string
		root     *Node
		opts     ValidateOptions
		wantCode errors.Code
	}{
		{"ok", sample(), ValidateOptions{}, ""},
		{"nil root", nil, ValidateOptions{}, errors.ErrCodeInvalidTree},
		{"nil child", Module("root", nil), ValidateOptions{}, errors.ErrCodeInvalidTree},
		{"shared subtree", Module("root", shared, Module("m", shared)), ValidateOptions{}, errors.ErrCodeInvalidTree},
		{"cycle", cyclic, ValidateOptions{}, errors.ErrCodeInvalidTree},
		{"mismatch lenient", mismatched, ValidateOptions{}, ""},
		{"mismatch strict", mismatched, ValidateOptions{StrictParents: true}, errors.ErrCodeParentMismatch},
		{"bad label", Module("root", Page("bad\nname")), ValidateOptions{Labels: true}, errors.ErrCodeInvalidTree},
		{"bad label unchecked", Module("root", Page("bad\nname")), ValidateOptions{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.root, tt.opts)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("Validate() error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}
