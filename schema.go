package avrocompat

import "strings"

// Kind identifies a schema node type. The declaration order is the union
// precedence order used when pairing union members.
type Kind int

const (
	KindRecord Kind = iota
	KindEnum
	KindArray
	KindMap
	KindUnion
	KindFixed
	KindPrimitive
)

func (k Kind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindEnum:
		return "enum"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindUnion:
		return "union"
	case KindFixed:
		return "fixed"
	case KindPrimitive:
		return "primitive"
	default:
		return "unknown"
	}
}

// PrimitiveType is the tag of a primitive schema.
type PrimitiveType int

const (
	Null PrimitiveType = iota
	Boolean
	Int
	Long
	Float
	Double
	Bytes
	String
)

var primitiveNames = [...]string{"null", "boolean", "int", "long", "float", "double", "bytes", "string"}

func (p PrimitiveType) String() string {
	if p < 0 || int(p) >= len(primitiveNames) {
		return "unknown"
	}
	return primitiveNames[p]
}

// LookupPrimitive maps an Avro primitive name ("int", "string", ...) to its tag.
func LookupPrimitive(name string) (PrimitiveType, bool) {
	for i, n := range primitiveNames {
		if n == name {
			return PrimitiveType(i), true
		}
	}
	return 0, false
}

// Schema is a node of a parsed schema tree. The set of implementations is
// closed: Record, Enum, Union, Array, Map, Fixed and Primitive.
//
// Nodes are treated as immutable once built. Nothing in this module mutates a
// node it was handed, so trees can be shared across goroutines read-only.
type Schema interface {
	Kind() Kind
	sealed()
}

// Record is a named sequence of fields. Field order only matters for display.
type Record struct {
	Name      string
	Namespace string
	Doc       string
	Aliases   []string
	Fields    []Field
}

// Field is a named member of a Record.
type Field struct {
	Name    string
	Doc     string
	Aliases []string
	Type    Schema
	// Default holds the declared default value (wire shape). Only HasDefault
	// takes part in compatibility decisions; a null default is still a default.
	Default    any
	HasDefault bool
}

// Enum is a named set of symbols.
type Enum struct {
	Name      string
	Namespace string
	Doc       string
	Symbols   []string
}

// Union is an ordered list of member schemas.
type Union struct {
	Types []Schema
}

// Array holds items of a single schema.
type Array struct {
	Items Schema
}

// Map holds string-keyed values of a single schema.
type Map struct {
	Values Schema
}

// Fixed is a named fixed-size byte sequence.
type Fixed struct {
	Name      string
	Namespace string
	Size      int
}

// Primitive is one of the eight Avro primitive types. LogicalType is kept for
// display and encoding only.
type Primitive struct {
	Type        PrimitiveType
	LogicalType string
}

func (*Record) Kind() Kind    { return KindRecord }
func (*Enum) Kind() Kind      { return KindEnum }
func (*Union) Kind() Kind     { return KindUnion }
func (*Array) Kind() Kind     { return KindArray }
func (*Map) Kind() Kind       { return KindMap }
func (*Fixed) Kind() Kind     { return KindFixed }
func (*Primitive) Kind() Kind { return KindPrimitive }

func (*Record) sealed()    {}
func (*Enum) sealed()      {}
func (*Union) sealed()     {}
func (*Array) sealed()     {}
func (*Map) sealed()       {}
func (*Fixed) sealed()     {}
func (*Primitive) sealed() {}

// NewPrimitive returns a primitive node for the given tag.
func NewPrimitive(t PrimitiveType) *Primitive { return &Primitive{Type: t} }

// FullName joins namespace and name with a dot.
func (r *Record) FullName() string { return fullName(r.Namespace, r.Name) }

// FullName joins namespace and name with a dot.
func (e *Enum) FullName() string { return fullName(e.Namespace, e.Name) }

// FullName joins namespace and name with a dot.
func (f *Fixed) FullName() string { return fullName(f.Namespace, f.Name) }

func fullName(ns, name string) string {
	if ns == "" || strings.Contains(name, ".") {
		return name
	}
	return ns + "." + name
}

// Field looks up a field by name.
func (r *Record) Field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldNames returns the field names in declaration order.
func (r *Record) FieldNames() []string {
	out := make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		out = append(out, f.Name)
	}
	return out
}

// Ordinal returns the union precedence of a node:
// record < enum < array < map < union < fixed < null < boolean < int < long <
// float < double < bytes < string. A nil node sorts last.
func Ordinal(s Schema) int {
	if isNil(s) {
		return int(KindPrimitive) + len(primitiveNames)
	}
	if p, ok := s.(*Primitive); ok {
		return int(KindPrimitive) + int(p.Type)
	}
	return int(s.Kind())
}

// TypeName renders the display type of a node: the primitive tag for
// primitives, the kind name otherwise.
func TypeName(s Schema) string {
	if isNil(s) {
		return "nil"
	}
	if p, ok := s.(*Primitive); ok {
		return p.Type.String()
	}
	return s.Kind().String()
}

// Clone deep-copies a schema tree. Shared and cyclic named types are copied
// once, so a recursive record stays recursive in the copy.
func Clone(s Schema) Schema {
	return cloneNode(s, map[Schema]Schema{})
}

func cloneNode(s Schema, seen map[Schema]Schema) Schema {
	if isNil(s) {
		return s
	}
	if c, ok := seen[s]; ok {
		return c
	}
	switch n := s.(type) {
	case *Record:
		c := &Record{Name: n.Name, Namespace: n.Namespace, Doc: n.Doc, Aliases: cloneStrings(n.Aliases)}
		seen[s] = c
		c.Fields = cloneFields(n.Fields, seen)
		return c
	case *Enum:
		c := &Enum{Name: n.Name, Namespace: n.Namespace, Doc: n.Doc, Symbols: cloneStrings(n.Symbols)}
		seen[s] = c
		return c
	case *Union:
		c := &Union{Types: make([]Schema, len(n.Types))}
		seen[s] = c
		for i, t := range n.Types {
			c.Types[i] = cloneNode(t, seen)
		}
		return c
	case *Array:
		c := &Array{}
		seen[s] = c
		c.Items = cloneNode(n.Items, seen)
		return c
	case *Map:
		c := &Map{}
		seen[s] = c
		c.Values = cloneNode(n.Values, seen)
		return c
	case *Fixed:
		c := &Fixed{Name: n.Name, Namespace: n.Namespace, Size: n.Size}
		seen[s] = c
		return c
	case *Primitive:
		c := &Primitive{Type: n.Type, LogicalType: n.LogicalType}
		seen[s] = c
		return c
	}
	return s
}

func cloneFields(fs []Field, seen map[Schema]Schema) []Field {
	if fs == nil {
		return nil
	}
	out := make([]Field, len(fs))
	for i, f := range fs {
		out[i] = Field{
			Name:       f.Name,
			Doc:        f.Doc,
			Aliases:    cloneStrings(f.Aliases),
			Type:       cloneNode(f.Type, seen),
			Default:    f.Default,
			HasDefault: f.HasDefault,
		}
	}
	return out
}

func cloneStrings(ss []string) []string {
	if ss == nil {
		return nil
	}
	return append([]string(nil), ss...)
}
