package io

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stacktree/pkg/errors"
	"github.com/matzehuels/stacktree/pkg/tree"
)

// Format is a tree document encoding.
type Format string

// Supported document formats.
const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat,
		"cannot tell the format of %s (want .json or .toml)", filepath.Base(path))
}

// ReadJSON decodes a JSON tree document from r.
//
// The document is a single node object; children nest recursively:
//
//	{"name": "root", "type": "module", "children": [{"name": "login", "type": "page"}]}
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*tree.Node, error) {
	var root tree.Node
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode JSON tree")
	}
	return checkRoot(&root)
}

// ReadTOML decodes a TOML tree document from r. Children are nested arrays
// of tables:
//
//	name = "root"
//	type = "module"
//
//	[[children]]
//	name = "login"
//	type = "page"
func ReadTOML(r io.Reader) (*tree.Node, error) {
	var doc tomlNode
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode TOML tree")
	}
	return checkRoot(doc.node())
}

// Read decodes a tree document in the given format.
func Read(r io.Reader, f Format) (*tree.Node, error) {
	switch f {
	case FormatJSON:
		return ReadJSON(r)
	case FormatTOML:
		return ReadTOML(r)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported tree format %q", f)
}

// Import reads the tree document at path, choosing the decoder by extension.
func Import(path string) (*tree.Node, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidPath, "no tree file given")
	}
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer file.Close()
	return Read(file, f)
}

func checkRoot(root *tree.Node) (*tree.Node, error) {
	if root.Name == "" && len(root.Children) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "tree document is empty")
	}
	return root, nil
}

// tomlNode mirrors tree.Node with value children, which the TOML codec maps
// to arrays of tables.
type tomlNode struct {
	Name     string     `toml:"name"`
	Type     string     `toml:"type,omitempty"`
	Parent   string     `toml:"parent,omitempty"`
	Children []tomlNode `toml:"children,omitempty"`
}

func (t tomlNode) node() *tree.Node {
	n := &tree.Node{Name: t.Name, Type: t.Type, Parent: t.Parent}
	for _, c := range t.Children {
		n.Children = append(n.Children, c.node())
	}
	return n
}

func toTOML(n *tree.Node) tomlNode {
	t := tomlNode{Name: n.Name, Type: n.Type, Parent: n.Parent}
	for _, c := range n.Children {
		t.Children = append(t.Children, toTOML(c))
	}
	return t
}
