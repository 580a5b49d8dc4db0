package report

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/anstrom/nmapconv/internal/errors"
	"github.com/anstrom/nmapconv/internal/logging"
)

// DefaultIndent is the per-level indentation of pretty output.
const DefaultIndent = "  "

// DefaultFileMode is the permission used for newly created JSON files.
const DefaultFileMode os.FileMode = 0o644

// EncodeOptions controls how a report is serialized.
type EncodeOptions struct {
	// Pretty selects indented output with keys sorted at every level.
	Pretty bool
	// Indent is used per nesting level in pretty mode. Empty means DefaultIndent.
	Indent string
}

// Marshal serializes r. Compact output keeps the schema key order; pretty
// output is indented and sorts keys lexicographically. The result ends with
// a newline.
func Marshal(r *Report, opts EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeCompact(&buf, r); err != nil {
		return nil, err
	}
	if !opts.Pretty {
		return buf.Bytes(), nil
	}

	// Round-trip through generic maps, which encoding/json writes with sorted keys.
	var tree any
	dec := json.NewDecoder(&buf)
	dec.UseNumber()
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}

	indent := opts.Indent
	if indent == "" {
		indent = DefaultIndent
	}

	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(tree); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func encodeCompact(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// Encode writes the serialized report to w.
func Encode(w io.Writer, r *Report, opts EncodeOptions) error {
	data, err := Marshal(r, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteFile serializes r into path, creating or truncating it with mode.
// Any failure to create, write or close the file is a WRITE_ERROR.
func WriteFile(path string, r *Report, opts EncodeOptions, mode os.FileMode) (err error) {
	data, err := Marshal(r, opts)
	if err != nil {
		return errors.ErrWrite(path, err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode) //nolint:gosec // path is the operator's output document
	if err != nil {
		return errors.ErrWrite(path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			logging.Warn("Failed to close output file", "path", path, "error", closeErr)
			if err == nil {
				err = errors.ErrWrite(path, closeErr)
			}
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.ErrWrite(path, err)
	}
	return nil
}
