package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SetValue writes value at a dotted key (e.g. "navigation.use_navigable")
// in the config file, creating intermediate mappings as needed.
// Comments and formatting in other sections are preserved by editing the
// yaml.Node tree rather than re-marshaling a struct.
func SetValue(configPath, key string, value any) error {
	parts := strings.Split(key, ".")
	for _, p := range parts {
		if p == "" {
			return fmt.Errorf("invalid config key %q", key)
		}
	}

	data, err := os.ReadFile(configPath) //nolint:gosec // G304: path comes from the user
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}
	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode}}}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("config root must be a mapping")
	}

	var valueNode yaml.Node
	if err := valueNode.Encode(value); err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	node := doc.Content[0]
	for i, part := range parts {
		last := i == len(parts)-1
		child := lookup(node, part)
		switch {
		case last && child != nil:
			// reuse the node so its line comment survives
			child.Kind, child.Tag, child.Value, child.Content, child.Style =
				valueNode.Kind, valueNode.Tag, valueNode.Value, valueNode.Content, valueNode.Style
		case last:
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: part}, &valueNode)
		case child == nil:
			child = &yaml.Node{Kind: yaml.MappingNode}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: part}, child)
			node = child
		case child.Kind != yaml.MappingNode:
			return fmt.Errorf("config key %q is not a mapping", strings.Join(parts[:i+1], "."))
		default:
			node = child
		}
	}

	var buf bytes.Buffer
	if err := encodeDocument(&buf, &doc); err != nil {
		return err
	}
	return writeAtomic(configPath, buf.Bytes())
}

// encodeDocument writes doc to w with two-space indentation.
func encodeDocument(w io.Writer, doc *yaml.Node) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("flushing config: %w", err)
	}
	return nil
}

func lookup(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// writeAtomic writes to a temp file and renames it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".twinview.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
