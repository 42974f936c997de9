package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/compozy/lintcompose/pkg/config"
	"github.com/mattn/go-isatty"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"
)

// OutputWriter renders documents as YAML or JSON.
type OutputWriter struct {
	writer   io.Writer
	encoding string
	color    bool
}

// NewOutputWriter creates an output writer. JSON is colored only when w is a
// terminal.
func NewOutputWriter(w io.Writer, encoding string) *OutputWriter {
	return &OutputWriter{
		writer:   w,
		encoding: encoding,
		color:    isTerminal(w),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// WriteData writes data, narrowed to the gjson path query when non-empty.
func (ow *OutputWriter) WriteData(data any, query string) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	if query != "" {
		result := gjson.GetBytes(raw, query)
		if !result.Exists() {
			return fmt.Errorf("query %q matched nothing", query)
		}
		raw = []byte(result.Raw)
	}
	switch ow.encoding {
	case config.EncodingJSON:
		return ow.writeJSON(raw)
	case config.EncodingYAML:
		return ow.writeYAML(raw)
	default:
		return fmt.Errorf("unsupported output encoding: %s", ow.encoding)
	}
}

func (ow *OutputWriter) writeJSON(raw []byte) error {
	out := pretty.Pretty(raw)
	if ow.color {
		out = pretty.Color(out, nil)
	}
	_, err := ow.writer.Write(out)
	return err
}

// writeYAML re-encodes the JSON document so that queried fragments and whole
// documents share one code path.
func (ow *OutputWriter) writeYAML(raw []byte) error {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return fmt.Errorf("failed to convert output to YAML: %w", err)
	}
	clearStyle(&node)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	_, err := ow.writer.Write(buf.Bytes())
	return err
}

// clearStyle drops the flow style inherited from JSON input.
func clearStyle(node *yaml.Node) {
	if node.Kind != yaml.ScalarNode {
		node.Style = 0
	} else if node.Style == yaml.DoubleQuotedStyle {
		node.Style = 0
	}
	for _, child := range node.Content {
		clearStyle(child)
	}
}
