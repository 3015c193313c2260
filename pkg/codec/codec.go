// Package codec serializes diagrams to and from their versioned JSON
// schema. The codec is the persistence boundary: everything written passes
// validation first, and everything read is validated before it reaches a
// store, so a malformed file can never corrupt in-memory state.
package codec

import (
	"encoding/json"
	"io"
	"os"

	"github.com/treeline-io/treeline/pkg/diagram"
	"github.com/treeline-io/treeline/pkg/errors"
)

// Write encodes the diagram as indented JSON. The diagram is validated
// before any bytes are written.
func Write(d diagram.Data, w io.Writer) error {
	if err := diagram.Validate(d); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode diagram")
	}
	return nil
}

// Read decodes and validates a diagram from r. Files written before the
// schema field existed are treated as version 1. Edges present in the file
// are returned as stored; loading into a store re-derives them from parent
// links regardless.
//
// Read does not close r.
func Read(r io.Reader) (diagram.Data, error) {
	var d diagram.Data
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return diagram.Data{}, errors.Wrap(errors.ErrCodeInvalidDiagram, err, "decode diagram")
	}

	switch d.SchemaVersion {
	case 0:
		d.SchemaVersion = diagram.SchemaVersion
	case diagram.SchemaVersion:
	default:
		return diagram.Data{}, errors.New(errors.ErrCodeUnsupported,
			"diagram schema version %d is newer than this build supports (%d)",
			d.SchemaVersion, diagram.SchemaVersion)
	}

	if err := diagram.Validate(d); err != nil {
		return diagram.Data{}, err
	}
	return d, nil
}

// Export writes the diagram to a JSON file at path.
// This is a convenience wrapper around [Write] for file-based output.
func Export(d diagram.Data, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	defer f.Close()
	return Write(d, f)
}

// Import reads and validates the JSON diagram file at path.
//
// The error carries FILE_NOT_FOUND when the file does not exist, so
// callers can distinguish a missing diagram from a corrupt one.
func Import(path string) (diagram.Data, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return diagram.Data{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "diagram file %s", path)
		}
		return diagram.Data{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return Read(f)
}
