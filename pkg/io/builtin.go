package io

import (
	"bytes"
	_ "embed"

	"github.com/matzehuels/stacktree/pkg/tree"
)

//go:embed router.json
var routerJSON []byte

// BuiltinName labels the embedded sample tree in logs and cache keys.
const BuiltinName = "builtin:router"

// Builtin returns a fresh copy of the embedded router tree: a back-office
// application's module/page hierarchy with 37 nodes, four levels below the
// root. Six of its parent back-references disagree with containment.
func Builtin() *tree.Node {
	root, err := ReadJSON(bytes.NewReader(routerJSON))
	if err != nil {
		panic("io: embedded router tree: " + err.Error())
	}
	return root
}
