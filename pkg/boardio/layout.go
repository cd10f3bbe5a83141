package boardio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/roadmap/pkg/board"
)

// WriteLayout encodes l as indented JSON.
func WriteLayout(w io.Writer, l board.Layout) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportLayout writes l to a JSON file at path.
func ExportLayout(l board.Layout, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteLayout(f, l)
}

// ReadLayout decodes a layout written by [WriteLayout].
func ReadLayout(r io.Reader) (board.Layout, error) {
	var l board.Layout
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return l, fmt.Errorf("decode: %w", err)
	}
	return l, nil
}

// ImportLayout reads a layout JSON file.
func ImportLayout(path string) (board.Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return board.Layout{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadLayout(f)
}

// Kind of a JSON document, as reported by [Sniff].
const (
	KindBoard   = "board"
	KindLayout  = "layout"
	KindUnknown = ""
)

// Sniff reports whether data is a layout (it has "geometry" and "tasks")
// or a board file (it has "projects").
func Sniff(data []byte) string {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return KindUnknown
	}
	if _, ok := keys["geometry"]; ok {
		if _, ok := keys["tasks"]; ok {
			return KindLayout
		}
	}
	if _, ok := keys["projects"]; ok {
		return KindBoard
	}
	return KindUnknown
}
