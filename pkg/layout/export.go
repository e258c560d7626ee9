package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/stacktree/pkg/tree"
)

// =============================================================================
// Document - Layout Serialization Format
// =============================================================================

// Document is the serialized form of a [Result].
//
// Nodes are stored flat, in breadth-first order, with a reference to their
// parent's identity. The canvas fields are optional and filled by callers that
// know them (the sink package does).
type Document struct {
	Width  float64 `json:"width,omitempty" bson:"width,omitempty"`
	Height float64 `json:"height,omitempty" bson:"height,omitempty"`
	Style  string  `json:"style,omitempty" bson:"style,omitempty"`

	Options Options   `json:"options" bson:"options"`
	Nodes   []DocNode `json:"nodes" bson:"nodes"`
	Edges   []DocEdge `json:"edges" bson:"edges"`
}

// DocNode is one positioned node in a [Document].
type DocNode struct {
	ID      int     `json:"id" bson:"id"`
	Parent  int     `json:"parent,omitempty" bson:"parent,omitempty"` // 0 for the root
	Name    string  `json:"name" bson:"name"`
	Type    string  `json:"type,omitempty" bson:"type,omitempty"`
	Depth   int     `json:"depth" bson:"depth"`
	Breadth float64 `json:"breadth" bson:"breadth"`
	X       float64 `json:"x" bson:"x"`
}

// DocEdge is one parent-child link in a [Document].
type DocEdge struct {
	ID     int `json:"id" bson:"id"`
	Source int `json:"source" bson:"source"`
	Target int `json:"target" bson:"target"`
}

// Export converts a result to its serializable form.
func (r Result) Export() Document {
	doc := Document{
		Options: r.Options,
		Nodes:   make([]DocNode, 0, len(r.Nodes)),
		Edges:   make([]DocEdge, 0, len(r.Edges)),
	}
	for _, n := range r.Nodes {
		dn := DocNode{
			ID:      n.ID,
			Name:    n.Node.Name,
			Type:    n.Node.Type,
			Depth:   n.Depth,
			Breadth: n.Breadth,
			X:       n.X,
		}
		if n.Parent != nil {
			dn.Parent = n.Parent.ID
		}
		doc.Nodes = append(doc.Nodes, dn)
	}
	for _, e := range r.Edges {
		doc.Edges = append(doc.Edges, DocEdge{ID: e.ID, Source: e.Source.ID, Target: e.Target.ID})
	}
	return doc
}

// Result rebuilds a layout result, including fresh tree nodes, from a
// document. The first node must be the root and every other node must
// reference a parent that appears before it.
func (d Document) Result() (Result, error) {
	res := Result{Options: d.Options}
	if len(d.Nodes) == 0 {
		return res, nil
	}

	byID := make(map[int]*PositionedNode, len(d.Nodes))
	for i, dn := range d.Nodes {
		if dn.ID <= 0 {
			return Result{}, fmt.Errorf("node %d: invalid id %d", i, dn.ID)
		}
		if _, dup := byID[dn.ID]; dup {
			return Result{}, fmt.Errorf("node %d: duplicate id %d", i, dn.ID)
		}

		p := &PositionedNode{
			ID:      dn.ID,
			Depth:   dn.Depth,
			Breadth: dn.Breadth,
			X:       dn.X,
			Node:    tree.New(dn.Name, dn.Type),
		}
		switch {
		case i == 0 && dn.Parent != 0:
			return Result{}, fmt.Errorf("first node %q must be the root", dn.Name)
		case i > 0:
			parent, ok := byID[dn.Parent]
			if !ok {
				return Result{}, fmt.Errorf("node %q: unknown parent %d", dn.Name, dn.Parent)
			}
			p.Parent = parent
			p.Node.Parent = parent.Node.Name
			parent.Children = append(parent.Children, p)
			parent.Node.Children = append(parent.Node.Children, p.Node)
			res.Edges = append(res.Edges, Edge{ID: p.ID, Source: parent, Target: p})
		}
		byID[dn.ID] = p
		res.Nodes = append(res.Nodes, p)
	}
	return res, nil
}

// =============================================================================
// Serialization API
// =============================================================================

// WriteJSON writes the result as an indented JSON [Document].
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// ReadJSON decodes a [Document] from r.
func ReadJSON(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode layout: %w", err)
	}
	if len(doc.Nodes) == 0 {
		return Document{}, fmt.Errorf("layout must contain nodes")
	}
	return doc, nil
}

// WriteFile writes a document to path.
func WriteFile(doc Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads a document from path.
func ReadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
