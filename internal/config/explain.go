package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Explain returns the effective value at a dotted YAML path (for example
// "gesture.long_press_delay") and where it came from.
func Explain(res *LoadResult, path string) (string, Source, error) {
	if res == nil || res.Config == nil {
		return "", Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return "", Source{}, fmt.Errorf("path is empty")
	}

	var doc yaml.Node
	if err := doc.Encode(res.Config); err != nil {
		return "", Source{}, fmt.Errorf("failed to encode config: %w", err)
	}
	node := &doc
	for _, part := range strings.Split(path, ".") {
		node = child(node, part)
		if node == nil {
			return "", Source{}, fmt.Errorf("unknown config path %q", path)
		}
	}

	value := node.Value
	if node.Kind != yaml.ScalarNode {
		out, err := yaml.Marshal(node)
		if err != nil {
			return "", Source{}, err
		}
		value = strings.TrimSpace(string(out))
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

// Keys lists every leaf path of the configuration, in document order.
func Keys() []string {
	var doc yaml.Node
	if err := doc.Encode(DefaultConfig()); err != nil {
		return nil
	}
	var out []string
	var walk func(n *yaml.Node, prefix string)
	walk = func(n *yaml.Node, prefix string) {
		for i := 0; i+1 < len(n.Content); i += 2 {
			path := n.Content[i].Value
			if prefix != "" {
				path = prefix + "." + path
			}
			if n.Content[i+1].Kind == yaml.MappingNode {
				walk(n.Content[i+1], path)
				continue
			}
			out = append(out, path)
		}
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	walk(root, "")
	return out
}

func child(n *yaml.Node, key string) *yaml.Node {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}
