package avsc

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	ac "github.com/reoring/avrocompat"
)

// Options controls schema building.
type Options struct {
	// MaxDepth caps type nesting while building (0 = unlimited).
	MaxDepth int
	// Namespace is the enclosing namespace for top-level names without one.
	Namespace string
}

// ParseError reports why a schema document could not be turned into a tree.
// Path is a JSON Pointer into the document (for example /fields/2/type).
type ParseError struct {
	Path string
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	b := &strings.Builder{}
	b.WriteString("avsc: ")
	b.WriteString(e.Msg)
	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse decodes a JSON schema document (.avsc) with the current Driver and
// builds its schema tree.
func Parse(data []byte, opts ...Options) (ac.Schema, error) {
	v, err := CurrentDriver().Decode(data)
	if err != nil {
		return nil, &ParseError{Path: "/", Msg: "invalid JSON", Err: err}
	}
	return FromValue(v, opts...)
}

// ParseYAML decodes a YAML schema document and builds its schema tree.
// Duplicate mapping keys are rejected with a *DuplicateKeyError cause.
func ParseYAML(data []byte, opts ...Options) (ac.Schema, error) {
	v, err := decodeYAML(data)
	if err != nil {
		return nil, &ParseError{Path: "/", Msg: "invalid YAML", Err: err}
	}
	return FromValue(v, opts...)
}

// ParseFile reads path and parses it as YAML for .yaml/.yml and as JSON
// otherwise.
func ParseFile(path string, opts ...Options) (ac.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s ac.Schema
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		s, err = ParseYAML(data, opts...)
	default:
		s, err = Parse(data, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// FromValue builds a schema tree from an already decoded JSON-like value.
func FromValue(v any, opts ...Options) (ac.Schema, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	b := &builder{names: map[string]ac.Schema{}, maxDepth: opt.MaxDepth}
	return b.build(v, opt.Namespace, "", 1)
}

// builder resolves named types as it goes. A named type is registered before
// its body is built, so recursive references resolve to the same node.
type builder struct {
	names    map[string]ac.Schema
	maxDepth int
}

func (b *builder) fail(path, format string, a ...any) error {
	if path == "" {
		path = "/"
	}
	return &ParseError{Path: path, Msg: fmt.Sprintf(format, a...)}
}

func (b *builder) build(v any, ns, path string, depth int) (ac.Schema, error) {
	if b.maxDepth > 0 && depth > b.maxDepth {
		return nil, b.fail(path, "nesting exceeds max depth %d", b.maxDepth)
	}
	switch t := v.(type) {
	case nil:
		// bare YAML null in a type position
		return ac.NewPrimitive(ac.Null), nil
	case string:
		return b.reference(t, ns, path)
	case []any:
		u := &ac.Union{Types: make([]ac.Schema, 0, len(t))}
		for i, m := range t {
			s, err := b.build(m, ns, pointer(path, strconv.Itoa(i)), depth+1)
			if err != nil {
				return nil, err
			}
			u.Types = append(u.Types, s)
		}
		return u, nil
	case map[string]any:
		return b.complex(t, ns, path, depth)
	default:
		return nil, b.fail(path, "unexpected schema value of type %T", v)
	}
}

// reference resolves a primitive name or a previously defined named type.
func (b *builder) reference(name, ns, path string) (ac.Schema, error) {
	if p, ok := ac.LookupPrimitive(name); ok {
		return ac.NewPrimitive(p), nil
	}
	if !strings.Contains(name, ".") && ns != "" {
		if s, ok := b.names[ns+"."+name]; ok {
			return s, nil
		}
	}
	if s, ok := b.names[name]; ok {
		return s, nil
	}
	return nil, b.fail(path, "unknown type %q", name)
}

func (b *builder) complex(m map[string]any, ns, path string, depth int) (ac.Schema, error) {
	rawType, ok := m["type"]
	if !ok {
		return nil, b.fail(path, "missing \"type\"")
	}
	typ, ok := rawType.(string)
	if !ok {
		// {"type": {...}} or {"type": [...]} wraps another schema
		return b.build(rawType, ns, pointer(path, "type"), depth+1)
	}
	switch typ {
	case "record", "error":
		return b.record(m, ns, path, depth)
	case "enum":
		return b.enum(m, ns, path)
	case "fixed":
		return b.fixed(m, ns, path)
	case "array":
		items, ok := m["items"]
		if !ok {
			return nil, b.fail(path, "array without \"items\"")
		}
		s, err := b.build(items, ns, pointer(path, "items"), depth+1)
		if err != nil {
			return nil, err
		}
		return &ac.Array{Items: s}, nil
	case "map":
		values, ok := m["values"]
		if !ok {
			return nil, b.fail(path, "map without \"values\"")
		}
		s, err := b.build(values, ns, pointer(path, "values"), depth+1)
		if err != nil {
			return nil, err
		}
		return &ac.Map{Values: s}, nil
	}
	if p, ok := ac.LookupPrimitive(typ); ok {
		lt, _ := m["logicalType"].(string)
		return &ac.Primitive{Type: p, LogicalType: lt}, nil
	}
	return b.reference(typ, ns, pointer(path, "type"))
}

// splitName splits a declared name into short name and namespace, applying the
// explicit namespace attribute and then the enclosing one.
func (b *builder) splitName(m map[string]any, ns, path string) (name, namespace string, err error) {
	raw, ok := m["name"].(string)
	if !ok || raw == "" {
		return "", "", b.fail(path, "named type without \"name\"")
	}
	if i := strings.LastIndexByte(raw, '.'); i >= 0 {
		return raw[i+1:], raw[:i], nil
	}
	if explicit, ok := m["namespace"].(string); ok {
		return raw, explicit, nil
	}
	return raw, ns, nil
}

func (b *builder) register(s ac.Schema, name, namespace, path string) error {
	full := name
	if namespace != "" {
		full = namespace + "." + name
	}
	if _, dup := b.names[full]; dup {
		return b.fail(path, "named type %q redefined", full)
	}
	b.names[full] = s
	return nil
}

func (b *builder) record(m map[string]any, ns, path string, depth int) (ac.Schema, error) {
	name, namespace, err := b.splitName(m, ns, path)
	if err != nil {
		return nil, err
	}
	r := &ac.Record{Name: name, Namespace: namespace}
	r.Doc, _ = m["doc"].(string)
	r.Aliases = stringList(m["aliases"])
	if err := b.register(r, name, namespace, path); err != nil {
		return nil, err
	}

	rawFields, ok := m["fields"].([]any)
	if !ok {
		return nil, b.fail(path, "record %q without \"fields\" array", name)
	}
	fields := make([]ac.Field, 0, len(rawFields))
	seen := make(map[string]struct{}, len(rawFields))
	for i, rf := range rawFields {
		fp := pointer(path, "fields", strconv.Itoa(i))
		fm, ok := rf.(map[string]any)
		if !ok {
			return nil, b.fail(fp, "field must be an object")
		}
		fname, ok := fm["name"].(string)
		if !ok || fname == "" {
			return nil, b.fail(fp, "field without \"name\"")
		}
		if _, dup := seen[fname]; dup {
			return nil, b.fail(fp, "duplicate field %q in record %q", fname, name)
		}
		seen[fname] = struct{}{}
		rawType, ok := fm["type"]
		if !ok {
			return nil, b.fail(fp, "field %q without \"type\"", fname)
		}
		ft, err := b.build(rawType, namespace, pointer(fp, "type"), depth+1)
		if err != nil {
			return nil, err
		}
		f := ac.Field{Name: fname, Type: ft, Aliases: stringList(fm["aliases"])}
		f.Doc, _ = fm["doc"].(string)
		f.Default, f.HasDefault = fm["default"]
		fields = append(fields, f)
	}
	r.Fields = fields
	return r, nil
}

func (b *builder) enum(m map[string]any, ns, path string) (ac.Schema, error) {
	name, namespace, err := b.splitName(m, ns, path)
	if err != nil {
		return nil, err
	}
	raw, ok := m["symbols"].([]any)
	if !ok {
		return nil, b.fail(path, "enum %q without \"symbols\" array", name)
	}
	e := &ac.Enum{Name: name, Namespace: namespace, Symbols: make([]string, 0, len(raw))}
	e.Doc, _ = m["doc"].(string)
	seen := make(map[string]struct{}, len(raw))
	for i, s := range raw {
		sp := pointer(path, "symbols", strconv.Itoa(i))
		sym, ok := s.(string)
		if !ok {
			return nil, b.fail(sp, "enum symbol must be a string")
		}
		if _, dup := seen[sym]; dup {
			return nil, b.fail(sp, "duplicate symbol %q in enum %q", sym, name)
		}
		seen[sym] = struct{}{}
		e.Symbols = append(e.Symbols, sym)
	}
	if err := b.register(e, name, namespace, path); err != nil {
		return nil, err
	}
	return e, nil
}

func (b *builder) fixed(m map[string]any, ns, path string) (ac.Schema, error) {
	name, namespace, err := b.splitName(m, ns, path)
	if err != nil {
		return nil, err
	}
	size, ok := toInt(m["size"])
	if !ok || size < 0 {
		return nil, b.fail(pointer(path, "size"), "fixed %q needs a non-negative integer \"size\"", name)
	}
	f := &ac.Fixed{Name: name, Namespace: namespace, Size: size}
	if err := b.register(f, name, namespace, path); err != nil {
		return nil, err
	}
	return f, nil
}

// pointer extends a JSON Pointer, escaping '~' and '/' per RFC6901.
func pointer(base string, parts ...string) string {
	for _, p := range parts {
		base += "/" + strings.ReplaceAll(strings.ReplaceAll(p, "~", "~0"), "/", "~1")
	}
	return base
}

func stringList(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, x := range raw {
		if s, ok := x.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// toInt accepts every number shape the drivers produce.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case interface{ Int64() (int64, error) }:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}
