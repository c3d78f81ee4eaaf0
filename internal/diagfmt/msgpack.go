package diagfmt

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"sclint/internal/diag"
	"sclint/internal/source"
)

// Msgpack writes the JSON output model as a single msgpack document.
// Field names follow the json tags, so consumers can share one schema.
func Msgpack(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	output := BuildDiagnosticsOutput(bag, fs, opts)

	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(output); err != nil {
		return fmt.Errorf("encode msgpack: %w", err)
	}
	return nil
}

// DecodeMsgpack reads a document written by Msgpack.
func DecodeMsgpack(r io.Reader) (DiagnosticsOutput, error) {
	var out DiagnosticsOutput
	dec := msgpack.NewDecoder(r)
	dec.SetCustomStructTag("json")
	if err := dec.Decode(&out); err != nil {
		return DiagnosticsOutput{}, fmt.Errorf("decode msgpack: %w", err)
	}
	return out, nil
}
