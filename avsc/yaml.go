package avsc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Position is a 1-based line and column in a YAML document.
type Position struct {
	Line, Col int
}

// DuplicateKeyError reports a mapping key given twice. Path is the JSON
// Pointer of the mapping holding it.
type DuplicateKeyError struct {
	Key    string
	Path   string
	First  Position
	Second Position
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q in %s at %d:%d (first at %d:%d)",
		e.Key, e.Path, e.Second.Line, e.Second.Col, e.First.Line, e.First.Col)
}

// decodeYAML turns the first document into the same JSON-like values the
// JSON drivers produce. Anchors and "<<" merge keys are expanded; explicit
// keys win over merged ones.
func decodeYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty YAML document")
		}
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("empty YAML document")
	}
	return yamlValue(doc.Content[0], "")
}

func yamlValue(n *yaml.Node, path string) (any, error) {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	switch n.Kind {
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		if err := yamlMapping(n, path, m, map[string]Position{}); err != nil {
			return nil, err
		}
		return m, nil
	case yaml.SequenceNode:
		out := make([]any, len(n.Content))
		for i, c := range n.Content {
			v, err := yamlValue(c, pointer(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case yaml.ScalarNode:
		return yamlScalar(n), nil
	}
	return nil, nil
}

// yamlMapping fills m from n. Explicit keys are checked for duplicates;
// merged mappings only fill keys not already set.
func yamlMapping(n *yaml.Node, path string, m map[string]any, seen map[string]Position) error {
	var merges []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.ShortTag() == "!!merge" {
			merges = append(merges, v)
			continue
		}
		at := Position{Line: k.Line, Col: k.Column}
		if first, dup := seen[k.Value]; dup {
			return &DuplicateKeyError{Key: k.Value, Path: orRoot(path), First: first, Second: at}
		}
		seen[k.Value] = at
		val, err := yamlValue(v, pointer(path, k.Value))
		if err != nil {
			return err
		}
		m[k.Value] = val
	}
	for _, src := range merges {
		for src.Kind == yaml.AliasNode && src.Alias != nil {
			src = src.Alias
		}
		sources := []*yaml.Node{src}
		if src.Kind == yaml.SequenceNode {
			sources = src.Content
		}
		for _, s := range sources {
			v, err := yamlValue(s, path)
			if err != nil {
				return err
			}
			mm, ok := v.(map[string]any)
			if !ok {
				return fmt.Errorf("merge key in %s needs a mapping", orRoot(path))
			}
			for key, val := range mm {
				if _, set := m[key]; !set {
					m[key] = val
				}
			}
		}
	}
	return nil
}

// yamlScalar resolves the core schema tags; anything else stays text. A bare
// null matters here: in a type position it names the null primitive.
func yamlScalar(n *yaml.Node) any {
	switch n.ShortTag() {
	case "!!null":
		return nil
	case "!!bool", "!!int", "!!float":
		var v any
		if err := n.Decode(&v); err == nil {
			return v
		}
	}
	return n.Value
}

func orRoot(path string) string {
	if path == "" {
		return "/"
	}
	return path
}
