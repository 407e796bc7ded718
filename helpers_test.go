package avrocompat_test

import (
	"testing"

	ac "github.com/reoring/avrocompat"
)

func prim(t ac.PrimitiveType) ac.Schema { return ac.NewPrimitive(t) }

func field(name string, typ ac.Schema) ac.Field { return ac.Field{Name: name, Type: typ} }

func withDefault(f ac.Field, v any) ac.Field {
	f.Default = v
	f.HasDefault = true
	return f
}

func record(name string, fields ...ac.Field) *ac.Record {
	return &ac.Record{Name: name, Fields: fields}
}

func union(types ...ac.Schema) *ac.Union { return &ac.Union{Types: types} }

func enum(name string, symbols ...string) *ac.Enum { return &ac.Enum{Name: name, Symbols: symbols} }

func fixed(name string, size int) *ac.Fixed { return &ac.Fixed{Name: name, Size: size} }

// baseRecord mirrors the MyRecord.base fixture used across the test suites.
func baseRecord() *ac.Record {
	return record("MyRecord",
		field("fieldWithoutDefaultValue", prim(ac.Int)),
		withDefault(field("properField", prim(ac.Int)), 0),
		withDefault(field("enumField", enum("MyEnum", "A", "B", "C")), "A"),
		withDefault(field("unionField", union(prim(ac.Null), prim(ac.String))), nil),
		withDefault(field("arrayField", &ac.Array{Items: prim(ac.String)}), []any{}),
		withDefault(field("mapField", &ac.Map{Values: prim(ac.String)}), map[string]any{}),
		withDefault(field("fixedField", fixed("MyFixed", 16)), "aaaaaaaaaaaaaaaa"),
	)
}

// goodRecord applies only allowed evolutions to baseRecord: a defaulted
// field removed and another added, enum symbols and union members reordered,
// fields reordered, aliases and default values changed.
func goodRecord() *ac.Record {
	return record("MyRecord",
		withDefault(field("fixedField", fixed("MyFixed", 16)), "bbbbbbbbbbbbbbbb"),
		ac.Field{Name: "fieldWithoutDefaultValue", Aliases: []string{"fwd"}, Type: prim(ac.Int)},
		withDefault(field("properField2", prim(ac.Int)), 0),
		withDefault(field("enumField", enum("MyEnum", "C", "A", "B")), "B"),
		withDefault(field("unionField", union(prim(ac.String), prim(ac.Null))), "x"),
		withDefault(field("arrayField", &ac.Array{Items: prim(ac.String)}), []any{"world"}),
	)
}

func mustIncompatible(t *testing.T, err error, code string, path string) *ac.Incompatibility {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s at %q, got nil", code, path)
	}
	inc, ok := ac.AsIncompatibility(err)
	if !ok {
		t.Fatalf("expected *Incompatibility, got %T: %v", err, err)
	}
	if inc.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, inc.Code, err)
	}
	if inc.Path() != path {
		t.Fatalf("expected path %q, got %q (%v)", path, inc.Path(), err)
	}
	return inc
}
