package avrocompat

import "sort"

// Compare decides whether a and b, two versions of the same logical schema
// position, can each read data written with the other. It returns nil when
// they can and the first *Incompatibility otherwise.
//
// Dispatch follows a's kind; a differing kind on b is itself reported as
// kind_mismatch. Only MaxDepth is read from opts.
func Compare(a, b Schema, trace Trace, opts ...CheckOpt) error {
	c := comparator{maxDepth: lastOpt(opts).MaxDepth}
	if err := c.compare(a, b, trace, 1); err != nil {
		return err
	}
	return nil
}

// comparator holds per-call state only: the depth cap and the record pairs
// currently on the recursion stack.
type comparator struct {
	maxDepth int
	active   map[recordPair]struct{}
}

type recordPair struct{ a, b *Record }

func (c *comparator) compare(a, b Schema, t Trace, depth int) *Incompatibility {
	if c.maxDepth > 0 && depth > c.maxDepth {
		return incompatibleAt(t, CodeTooDeep, depth, c.maxDepth, map[string]any{"limit": c.maxDepth})
	}
	if isNil(a) || isNil(b) || a.Kind() != b.Kind() {
		return incompatibleAt(t, CodeKindMismatch, TypeName(a), TypeName(b), nil)
	}
	switch x := a.(type) {
	case *Record:
		return c.record(x, b.(*Record), t, depth)
	case *Enum:
		return enum(x, b.(*Enum), t)
	case *Union:
		return c.union(x, b.(*Union), t, depth)
	case *Array:
		return c.compare(x.Items, b.(*Array).Items, t, depth+1)
	case *Map:
		return c.compare(x.Values, b.(*Map).Values, t, depth+1)
	case *Fixed:
		return fixed(x, b.(*Fixed), t)
	case *Primitive:
		return primitive(x, b.(*Primitive), t)
	}
	// Schema is sealed; every implementation is handled above.
	return incompatibleAt(t, CodeKindMismatch, TypeName(a), TypeName(b), nil)
}

// record applies the field rules: a field present on one side only needs a
// default on that side; shared fields are compared recursively.
func (c *comparator) record(a, b *Record, t Trace, depth int) *Incompatibility {
	pair := recordPair{a, b}
	if _, ok := c.active[pair]; ok {
		// Recursive reference to a pair already under comparison.
		return nil
	}
	if c.active == nil {
		c.active = map[recordPair]struct{}{}
	}
	c.active[pair] = struct{}{}
	defer delete(c.active, pair)

	t = t.Push(a.Name)
	aFields := indexFields(a.Fields)
	bFields := indexFields(b.Fields)

	for _, af := range a.Fields {
		bf, ok := bFields[af.Name]
		if !ok {
			if !af.HasDefault {
				return incompatibleAt(t.Push(af.Name), CodeMissingDefault, af.Name, nil, map[string]any{"field": af.Name})
			}
			continue
		}
		if err := c.compare(af.Type, bf.Type, t.Push(af.Name), depth+1); err != nil {
			return err
		}
	}
	for _, bf := range b.Fields {
		if _, ok := aFields[bf.Name]; ok {
			continue
		}
		if !bf.HasDefault {
			return incompatibleAt(t.Push(bf.Name), CodeMissingDefault, nil, bf.Name, map[string]any{"field": bf.Name})
		}
	}
	return nil
}

func indexFields(fs []Field) map[string]Field {
	m := make(map[string]Field, len(fs))
	for _, f := range fs {
		m[f.Name] = f
	}
	return m
}

// enum requires equal symbol sets; order is irrelevant.
func enum(a, b *Enum, t Trace) *Incompatibility {
	as := sortedStrings(a.Symbols)
	bs := sortedStrings(b.Symbols)
	if len(as) != len(bs) {
		return incompatibleAt(t, CodeSymbolSetMismatch, as, bs, nil)
	}
	for i := range as {
		if as[i] != bs[i] {
			return incompatibleAt(t, CodeSymbolSetMismatch, as, bs, nil)
		}
	}
	return nil
}

func sortedStrings(ss []string) []string {
	out := cloneStrings(ss)
	sort.Strings(out)
	return out
}

// union requires equal arity, then pairs members by kind precedence so that
// reordering branches is not a change.
func (c *comparator) union(a, b *Union, t Trace, depth int) *Incompatibility {
	if len(a.Types) != len(b.Types) {
		return incompatibleAt(t, CodeUnionArityMismatch, typeNames(a.Types), typeNames(b.Types),
			map[string]any{"a": len(a.Types), "b": len(b.Types)})
	}
	as := byOrdinal(a.Types)
	bs := byOrdinal(b.Types)
	for i := range as {
		if err := c.compare(as[i], bs[i], t, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// byOrdinal returns a stably sorted copy; the input is left untouched.
func byOrdinal(types []Schema) []Schema {
	out := append([]Schema(nil), types...)
	sort.SliceStable(out, func(i, j int) bool { return Ordinal(out[i]) < Ordinal(out[j]) })
	return out
}

func typeNames(types []Schema) []string {
	out := make([]string, len(types))
	for i, s := range types {
		out[i] = TypeName(s)
	}
	return out
}

// fixed requires identical size and name.
func fixed(a, b *Fixed, t Trace) *Incompatibility {
	if a.Size != b.Size {
		return incompatibleAt(t, CodeFixedMismatch, a.Size, b.Size, map[string]any{"attr": "size"})
	}
	if a.Name != b.Name {
		return incompatibleAt(t, CodeFixedMismatch, a.Name, b.Name, map[string]any{"attr": "name"})
	}
	return nil
}

// primitive is strict equality; int -> long is a change.
func primitive(a, b *Primitive, t Trace) *Incompatibility {
	if a.Type != b.Type {
		return incompatibleAt(t, CodePrimitiveMismatch, a.Type.String(), b.Type.String(), nil)
	}
	return nil
}

func isNil(s Schema) bool {
	switch n := s.(type) {
	case nil:
		return true
	case *Record:
		return n == nil
	case *Enum:
		return n == nil
	case *Union:
		return n == nil
	case *Array:
		return n == nil
	case *Map:
		return n == nil
	case *Fixed:
		return n == nil
	case *Primitive:
		return n == nil
	}
	return false
}
