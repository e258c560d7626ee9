package pipeline

import (
	"bytes"

	"github.com/matzehuels/stacktree/pkg/cache"
	"github.com/matzehuels/stacktree/pkg/io"
	"github.com/matzehuels/stacktree/pkg/tree"
)

// Load reads the tree named by source: a .json or .toml path, or empty (or
// io.BuiltinName) for the embedded router tree. It returns the tree and a
// display name for logs.
func Load(source string) (*tree.Node, string, error) {
	if source == "" || source == io.BuiltinName {
		return io.Builtin(), io.BuiltinName, nil
	}
	root, err := io.Import(source)
	if err != nil {
		return nil, "", err
	}
	return root, source, nil
}

// TreeHash returns the content hash of a tree's canonical JSON encoding.
// Structurally identical trees hash the same.
func TreeHash(root *tree.Node) (string, error) {
	var buf bytes.Buffer
	if err := io.WriteJSON(root, &buf); err != nil {
		return "", err
	}
	return cache.Hash(buf.Bytes()), nil
}
