// Package serializer renders result objects (generation results,
// verification summaries) to an output destination in a chosen format.
package serializer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// StdoutURI is the special path indicating output should be written to stdout.
const StdoutURI = "-"

// Format selects the serialization format.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// IsUnknown reports whether the format is not one of the supported formats.
func (f Format) IsUnknown() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatTable:
		return false
	default:
		return true
	}
}

// SupportedFormats returns the supported format names for flag help text.
func SupportedFormats() []string {
	return []string{string(FormatJSON), string(FormatYAML), string(FormatTable)}
}

// Serializer writes a value to its destination.
type Serializer interface {
	Serialize(ctx context.Context, value any) error
}

// Closer is implemented by serializers holding a resource to release.
type Closer interface {
	Close() error
}

// Writer serializes values to an io.Writer in a fixed format.
type Writer struct {
	format Format
	out    io.Writer
	closer io.Closer
}

// NewWriter creates a writer for the given format and destination. An
// unknown format falls back to JSON; a nil destination falls back to stdout.
func NewWriter(format Format, out io.Writer) *Writer {
	if format.IsUnknown() {
		format = FormatJSON
	}
	if out == nil {
		out = os.Stdout
	}
	return &Writer{format: format, out: out}
}

// NewStdoutWriter creates a writer targeting stdout.
func NewStdoutWriter(format Format) *Writer {
	return NewWriter(format, os.Stdout)
}

// NewFileWriterOrStdout creates a writer targeting the given file path. A
// blank path or "-" targets stdout instead.
func NewFileWriterOrStdout(format Format, path string) (Serializer, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == StdoutURI {
		return NewStdoutWriter(format), nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	w := NewWriter(format, f)
	w.closer = f
	return w, nil
}

// Serialize writes the value in the writer's format.
func (w *Writer) Serialize(ctx context.Context, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch w.format {
	case FormatYAML:
		return w.writeYAML(value)
	case FormatTable:
		return w.writeTable(value)
	default:
		return w.writeJSON(value)
	}
}

// Close releases the underlying file, if any. Safe to call repeatedly and
// on stdout-backed writers.
func (w *Writer) Close() error {
	if w.closer == nil {
		return nil
	}
	c := w.closer
	w.closer = nil
	return c.Close()
}

func (w *Writer) writeJSON(value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize to json: %w", err)
	}
	data = append(data, '\n')
	_, err = w.out.Write(data)
	return err
}

func (w *Writer) writeYAML(value any) error {
	data, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize to yaml: %w", err)
	}
	_, err = w.out.Write(data)
	return err
}

// writeTable flattens the value into FIELD/VALUE rows. Nested structures
// produce dotted keys, slices produce indexed keys.
func (w *Writer) writeTable(value any) error {
	// Round-trip through JSON so struct tags and omitted fields render the
	// same way they would in the json format.
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to flatten value: %w", err)
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("failed to flatten value: %w", err)
	}

	type row struct{ field, value string }
	var rows []row
	var walk func(prefix string, v any)
	walk = func(prefix string, v any) {
		switch t := v.(type) {
		case map[string]any:
			keys := make([]string, 0, len(t))
			for k := range t {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				key := k
				if prefix != "" {
					key = prefix + "." + k
				}
				walk(key, t[k])
			}
		case []any:
			for i, item := range t {
				walk(fmt.Sprintf("%s[%d]", prefix, i), item)
			}
		case nil:
			rows = append(rows, row{prefix, "<nil>"})
		default:
			rows = append(rows, row{prefix, fmt.Sprintf("%v", t)})
		}
	}
	walk("", generic)

	tw := tabwriter.NewWriter(w.out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tVALUE")
	if len(rows) == 0 {
		fmt.Fprintln(tw, "<empty>\t")
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r.field, r.value)
	}
	return tw.Flush()
}
