// Package tree defines the rooted hierarchy that stacktree lays out and draws.
//
// A [Node] has a display name, a category tag ("module", "page", or any other
// string) and ordered children. Trees are built once, either in code with
// [New], [Module] and [Page] or by decoding a document with the io package,
// and are treated as immutable afterwards.
//
// # Parent back-references
//
// Source documents often repeat each node's parent by name. That field is
// redundant: containment is authoritative. [CheckParents] reports nodes whose
// back-reference disagrees, and [Validate] with StrictParents set turns those
// into an [errors.ErrCodeParentMismatch] error.
//
//	root := tree.Module("root",
//	    tree.Page("login"),
//	    tree.Module("main", tree.Page("search")),
//	)
//	fmt.Println(tree.Count(root)) // 4
//
// [errors.ErrCodeParentMismatch]: github.com/matzehuels/stacktree/pkg/errors.ErrCodeParentMismatch
package tree
