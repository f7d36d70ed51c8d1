// Package config provides configuration types, defaults, and persistence for gridclip.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/gridclip/internal/log"
)

// SaveClipboard updates the clipboard section in the config file.
// Keys inside an existing section are updated in place so comments and
// formatting elsewhere in the file survive.
func SaveClipboard(configPath string, cb ClipboardConfig) error {
	doc, err := readDocument(configPath)
	if err != nil {
		return err
	}

	root := rootMapping(doc)
	section := mappingValue(root, "clipboard")
	if section == nil || section.Kind != yaml.MappingNode {
		section = &yaml.Node{Kind: yaml.MappingNode}
		setMappingValue(root, "clipboard", section)
	}

	setMappingValue(section, "delimiter", scalar(cb.Delimiter))
	setMappingValue(section, "include_header_when_copying", boolScalar(cb.IncludeHeaderWhenCopying))
	setMappingValue(section, "quote_fields", boolScalar(cb.QuoteFields))
	setMappingValue(section, "ignore_formatting_fields", stringSequence(cb.IgnoreFormattingFields))
	setMappingValue(section, "min_paste_column", intScalar(cb.MinPasteColumn))
	setMappingValue(section, "field_name_seed", intScalar(cb.FieldNameSeed))
	if cb.CopiedHighlightTTL > 0 {
		setMappingValue(section, "copied_highlight_ttl", scalar(cb.CopiedHighlightTTL.String()))
	}

	if err := writeDocument(configPath, doc); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to save clipboard config", err, "path", configPath)
		return err
	}
	log.Debug(log.CatConfig, "Saved clipboard config", "path", configPath)
	return nil
}

// readDocument parses the config file into a yaml.Node to preserve
// comments. A missing or empty file yields an empty document.
func readDocument(configPath string) (*yaml.Node, error) {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	return &doc, nil
}

// rootMapping returns the top-level mapping, replacing a non-mapping root.
func rootMapping(doc *yaml.Node) *yaml.Node {
	if doc.Content[0].Kind != yaml.MappingNode {
		doc.Content[0] = &yaml.Node{Kind: yaml.MappingNode}
	}
	return doc.Content[0]
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i < len(m.Content)-1; i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// setMappingValue replaces the value of key, or appends the pair. Comments
// attached to the old value are carried over.
func setMappingValue(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i < len(m.Content)-1; i += 2 {
		if m.Content[i].Value == key {
			old := m.Content[i+1]
			value.LineComment = old.LineComment
			value.HeadComment = old.HeadComment
			value.FootComment = old.FootComment
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		value,
	)
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: v}
}

func boolScalar(v bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)}
}

func intScalar(v int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(v)}
}

func stringSequence(vs []string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.SequenceNode, Content: make([]*yaml.Node, 0, len(vs))}
	if len(vs) == 0 {
		node.Style = yaml.FlowStyle
	}
	for _, v := range vs {
		node.Content = append(node.Content, scalar(v))
	}
	return node
}

// writeDocument marshals doc and writes it atomically (temp file, then rename).
func writeDocument(configPath string, doc *yaml.Node) error {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".gridclip.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(buf.Bytes()); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, configPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
