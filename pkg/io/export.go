package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stacktree/pkg/errors"
	"github.com/matzehuels/stacktree/pkg/tree"
)

// WriteJSON encodes a tree as an indented JSON document.
// The output can be re-imported with [ReadJSON].
func WriteJSON(root *tree.Node, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteTOML encodes a tree as a TOML document with nested [[children]]
// tables. The output can be re-imported with [ReadTOML].
func WriteTOML(root *tree.Node, w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(toTOML(root)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Write encodes a tree in the given format.
func Write(root *tree.Node, w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		return WriteJSON(root, w)
	case FormatTOML:
		return WriteTOML(root, w)
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported tree format %q", f)
}

// Export writes a tree to path, choosing the encoder by extension.
func Export(root *tree.Node, path string) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(root, file, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
