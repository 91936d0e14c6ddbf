package service

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AlexisVallejos/macroentreno-flet/internal/store"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Export writes the current document to w as JSON or YAML. Key order follows
// the stored document in both formats.
func Export(s *store.Store, format string, w io.Writer) error {
	doc, err := s.Load()
	if err != nil {
		return err
	}
	data, err := store.EncodeDocument(doc)
	if err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		return nil
	case FormatYAML, "yml":
		out, err := jsonToYAML(data)
		if err != nil {
			return err
		}
		if _, err := w.Write(out); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		return nil
	default:
		return invalid("format", "must be %q or %q, got %q", FormatJSON, FormatYAML, format)
	}
}

func jsonToYAML(data []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("convert export to yaml: %w", err)
	}
	clearStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("encode yaml export: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml export: %w", err)
	}
	return buf.Bytes(), nil
}

// clearStyle drops the flow and quoting styles picked up from the JSON
// source so the encoder emits block YAML.
func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}
