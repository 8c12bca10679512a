// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package snapshot

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// Format is a document encoding.
type Format string

// Formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension. Anything other than
// .yaml or .yml is JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Encode marshals d in format f.
func Encode(d Document, f Format) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, oops.In("snapshot").Code(CodeInvalidDocument).Wrap(err)
	}
	switch f {
	case FormatJSON:
		return append(data, '\n'), nil
	case FormatYAML:
		// Route through generic JSON values so that components and the
		// random state keep their JSON representation.
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return nil, oops.In("snapshot").Code(CodeInvalidDocument).Wrap(err)
		}
		out, err := yaml.Marshal(generic)
		if err != nil {
			return nil, oops.In("snapshot").Code(CodeInvalidDocument).Wrap(err)
		}
		return out, nil
	default:
		return nil, oops.In("snapshot").Code(CodeUnknownFormat).With("format", string(f)).Errorf("unknown snapshot format %q", f)
	}
}

// Decode validates data against the snapshot schema and unmarshals it.
func Decode(data []byte, f Format) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, oops.In("snapshot").Code(CodeInvalidDocument).Errorf("snapshot is empty")
	}

	var generic any
	switch f {
	case FormatJSON:
		if err := json.Unmarshal(data, &generic); err != nil {
			return nil, oops.In("snapshot").Code(CodeInvalidDocument).Hint("invalid JSON").Wrap(err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return nil, oops.In("snapshot").Code(CodeInvalidDocument).Hint("invalid YAML").Wrap(err)
		}
	default:
		return nil, oops.In("snapshot").Code(CodeUnknownFormat).With("format", string(f)).Errorf("unknown snapshot format %q", f)
	}

	// Normalize to the value types encoding/json produces.
	normalized, err := json.Marshal(generic)
	if err != nil {
		return nil, oops.In("snapshot").Code(CodeInvalidDocument).Wrap(err)
	}
	var instance any
	if err := json.Unmarshal(normalized, &instance); err != nil {
		return nil, oops.In("snapshot").Code(CodeInvalidDocument).Wrap(err)
	}
	if err := validate(instance); err != nil {
		return nil, err
	}

	var d Document
	if err := json.Unmarshal(normalized, &d); err != nil {
		return nil, oops.In("snapshot").Code(CodeInvalidDocument).Wrap(err)
	}
	if err := d.Check(); err != nil {
		return nil, err
	}
	return &d, nil
}

// WriteFile encodes d in the format implied by path and writes it.
func WriteFile(path string, d Document) error {
	data, err := Encode(d, FormatFromPath(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Clean(path), data, 0o600); err != nil {
		return oops.In("snapshot").Code(CodeIO).With("path", path).Wrap(err)
	}
	return nil
}

// ReadFile reads and decodes the document at path.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, oops.In("snapshot").Code(CodeIO).With("path", path).Wrap(err)
	}
	d, err := Decode(data, FormatFromPath(path))
	if err != nil {
		return nil, oops.In("snapshot").With("path", path).Wrap(err)
	}
	return d, nil
}
