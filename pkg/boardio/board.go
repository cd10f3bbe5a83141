package boardio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/roadmap/pkg/board"
	rerrors "github.com/matzehuels/roadmap/pkg/errors"
)

// Format is a board file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", rerrors.New(rerrors.ErrCodeInvalidFormat, "unsupported board file %q (want .json, .toml, .yaml)", filepath.Base(path))
}

// ReadBoard decodes a board file from r and validates it.
// ReadBoard does not close r.
func ReadBoard(r io.Reader, format Format) (board.File, error) {
	var f board.File
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&f); err != nil {
			return f, fmt.Errorf("decode json: %w", err)
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
			return f, fmt.Errorf("decode toml: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
			return f, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return f, rerrors.New(rerrors.ErrCodeInvalidFormat, "unknown board format %q", format)
	}
	return f, Validate(f)
}

// ImportBoard reads the board file at path, choosing the decoder by
// extension.
func ImportBoard(path string) (board.File, error) {
	format, err := FormatFor(path)
	if err != nil {
		return board.File{}, err
	}
	fh, err := os.Open(path)
	if err != nil {
		return board.File{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer fh.Close()
	f, err := ReadBoard(fh, format)
	if err != nil {
		return f, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// WriteBoard encodes f to w.
func WriteBoard(w io.Writer, f board.File, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(f); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	default:
		return rerrors.New(rerrors.ErrCodeInvalidFormat, "unknown board format %q", format)
	}
	return nil
}

// ExportBoard writes f to path, choosing the encoder by extension.
func ExportBoard(f board.File, path string) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := WriteBoard(&buf, f, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Validate checks that every task has an ID, that IDs are unique across the
// board, and that sprints are in order.
func Validate(f board.File) error {
	seen := make(map[string]board.ProjectKey)
	for _, p := range f.Projects {
		for i, t := range p.Tasks {
			if t.ID == "" {
				return rerrors.New(rerrors.ErrCodeInvalidBoard, "project %s: task %d has no id", p.Project, i)
			}
			if prev, ok := seen[t.ID]; ok {
				return rerrors.New(rerrors.ErrCodeInvalidBoard, "duplicate task id %q (projects %s and %s)", t.ID, prev, p.Project)
			}
			seen[t.ID] = p.Project
		}
	}
	for i, s := range f.Sprints {
		if !s.Start.IsZero() && !s.End.IsZero() && s.End.Before(s.Start.Time) {
			return rerrors.New(rerrors.ErrCodeInvalidBoard, "sprint %q ends before it starts", s.ID)
		}
		if i > 0 && !s.Start.IsZero() && s.Start.Before(f.Sprints[i-1].Start.Time) {
			return rerrors.New(rerrors.ErrCodeInvalidBoard, "sprint %q is out of order", s.ID)
		}
	}
	return nil
}
