package avsc

import (
	"bytes"
	"errors"
	"fmt"

	j "github.com/goccy/go-json"

	ac "github.com/reoring/avrocompat"
)

// ErrNameConflict is returned by Marshal when a tree holds two different
// definitions under one full name. A merged superset can: it keeps the first
// version's nested types and takes new fields verbatim from later versions.
var ErrNameConflict = errors.New("avsc: conflicting definitions for named type")

// Marshal renders a schema tree as JSON. Named types are written in full at
// their first occurrence and by full name afterwards, so recursive schemas
// encode finitely and the output parses back with Parse. A second node under
// an emitted name is accepted only if it encodes identically.
func Marshal(s ac.Schema) ([]byte, error) {
	v, err := newEncoder().value(s)
	if err != nil {
		return nil, err
	}
	return j.Marshal(v)
}

// MarshalIndent is like Marshal with indentation.
func MarshalIndent(s ac.Schema, prefix, indent string) ([]byte, error) {
	v, err := newEncoder().value(s)
	if err != nil {
		return nil, err
	}
	return j.MarshalIndent(v, prefix, indent)
}

type recordJSON struct {
	Type      string      `json:"type"`
	Name      string      `json:"name"`
	Namespace string      `json:"namespace,omitempty"`
	Doc       string      `json:"doc,omitempty"`
	Aliases   []string    `json:"aliases,omitempty"`
	Fields    []fieldJSON `json:"fields"`
}

type fieldJSON struct {
	Name    string        `json:"name"`
	Doc     string        `json:"doc,omitempty"`
	Aliases []string      `json:"aliases,omitempty"`
	Type    any           `json:"type"`
	Default *defaultValue `json:"default,omitempty"`
}

// defaultValue keeps a null default distinguishable from no default.
type defaultValue struct{ v any }

func (d defaultValue) MarshalJSON() ([]byte, error) { return j.Marshal(d.v) }

type enumJSON struct {
	Type      string   `json:"type"`
	Name      string   `json:"name"`
	Namespace string   `json:"namespace,omitempty"`
	Doc       string   `json:"doc,omitempty"`
	Symbols   []string `json:"symbols"`
}

type fixedJSON struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
	Size      int    `json:"size"`
}

type arrayJSON struct {
	Type  string `json:"type"`
	Items any    `json:"items"`
}

type mapJSON struct {
	Type   string `json:"type"`
	Values any    `json:"values"`
}

type primitiveJSON struct {
	Type        string `json:"type"`
	LogicalType string `json:"logicalType"`
}

// encoder remembers the node written under each full name.
type encoder struct {
	emitted map[string]ac.Schema
}

func newEncoder() *encoder { return &encoder{emitted: map[string]ac.Schema{}} }

// define reports whether s still needs its full definition. A different node
// under an emitted name becomes a reference only when both encode the same.
func (e *encoder) define(s ac.Schema, full string) (bool, error) {
	prev, ok := e.emitted[full]
	if !ok {
		e.emitted[full] = s
		return true, nil
	}
	if prev == s {
		return false, nil
	}
	same, err := sameDefinition(prev, s)
	if err != nil {
		return false, err
	}
	if !same {
		return false, fmt.Errorf("%w %q", ErrNameConflict, full)
	}
	return false, nil
}

// sameDefinition compares the standalone encodings of two named nodes.
func sameDefinition(a, b ac.Schema) (bool, error) {
	ea, err := Marshal(a)
	if err != nil {
		return false, err
	}
	eb, err := Marshal(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(ea, eb), nil
}

func (e *encoder) value(s ac.Schema) (any, error) {
	switch n := s.(type) {
	case *ac.Record:
		if n == nil {
			return nil, nil
		}
		if def, err := e.define(s, n.FullName()); err != nil || !def {
			return n.FullName(), err
		}
		out := recordJSON{Type: "record", Name: n.Name, Namespace: n.Namespace, Doc: n.Doc, Aliases: n.Aliases,
			Fields: make([]fieldJSON, 0, len(n.Fields))}
		for _, f := range n.Fields {
			t, err := e.value(f.Type)
			if err != nil {
				return nil, err
			}
			fj := fieldJSON{Name: f.Name, Doc: f.Doc, Aliases: f.Aliases, Type: t}
			if f.HasDefault {
				fj.Default = &defaultValue{v: f.Default}
			}
			out.Fields = append(out.Fields, fj)
		}
		return out, nil
	case *ac.Enum:
		if n == nil {
			return nil, nil
		}
		if def, err := e.define(s, n.FullName()); err != nil || !def {
			return n.FullName(), err
		}
		return enumJSON{Type: "enum", Name: n.Name, Namespace: n.Namespace, Doc: n.Doc, Symbols: append([]string{}, n.Symbols...)}, nil
	case *ac.Fixed:
		if n == nil {
			return nil, nil
		}
		if def, err := e.define(s, n.FullName()); err != nil || !def {
			return n.FullName(), err
		}
		return fixedJSON{Type: "fixed", Name: n.Name, Namespace: n.Namespace, Size: n.Size}, nil
	case *ac.Union:
		if n == nil {
			return nil, nil
		}
		out := make([]any, 0, len(n.Types))
		for _, t := range n.Types {
			v, err := e.value(t)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case *ac.Array:
		if n == nil {
			return nil, nil
		}
		items, err := e.value(n.Items)
		if err != nil {
			return nil, err
		}
		return arrayJSON{Type: "array", Items: items}, nil
	case *ac.Map:
		if n == nil {
			return nil, nil
		}
		values, err := e.value(n.Values)
		if err != nil {
			return nil, err
		}
		return mapJSON{Type: "map", Values: values}, nil
	case *ac.Primitive:
		if n == nil {
			return nil, nil
		}
		if n.LogicalType != "" {
			return primitiveJSON{Type: n.Type.String(), LogicalType: n.LogicalType}, nil
		}
		return n.Type.String(), nil
	}
	return nil, nil
}
