package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/dynalayout/pkg/dygraph"
	errs "github.com/matzehuels/dynalayout/pkg/errors"
)

// Stdin as an input path reads the document from standard input.
const Stdin = "-"

// MarshalGraph encodes g as indented JSON.
func MarshalGraph(g *dygraph.Graph) ([]byte, error) {
	return marshal(FromDyGraph(g))
}

// WriteGraph writes g as indented JSON to w.
func WriteGraph(g *dygraph.Graph, w io.Writer) error {
	data, err := MarshalGraph(g)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteGraphFile writes g to path, replacing any existing file in one step.
func WriteGraphFile(g *dygraph.Graph, path string) error {
	data, err := MarshalGraph(g)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// ReadGraph decodes one graph document from r and builds the dynamic
// graph. Malformed JSON and trailing data fail with INVALID_FORMAT; bad
// intervals, overlapping segments and dangling edges keep the codes
// ToDyGraph gives them.
func ReadGraph(r io.Reader) (*dygraph.Graph, error) {
	var data Graph
	if err := decodeOne(r, &data); err != nil {
		return nil, err
	}
	return ToDyGraph(data)
}

// ReadGraphFile reads a graph document from path.
func ReadGraphFile(path string) (*dygraph.Graph, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadGraph(f)
}

func marshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return append(data, '\n'), nil
}

func decodeOne(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode")
	}
	if dec.More() {
		return errs.New(errs.ErrCodeInvalidFormat, "trailing data after the JSON document")
	}
	return nil
}

func openFile(path string) (io.ReadCloser, error) {
	if path == Stdin {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// writeFile writes data next to path and renames it into place, so a
// reader never sees a half-written document.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name()) // no-op after the rename
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
