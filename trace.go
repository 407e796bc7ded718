package avrocompat

import "strings"

// Trace is the path of record and field names from the root record down to
// the node being compared. It is a value: Push returns an extended copy and
// never touches the receiver, so sibling frames cannot observe each other.
type Trace struct {
	parts []string
}

// Root returns the empty trace.
func Root() Trace { return Trace{} }

// TraceOf builds a trace from segments.
func TraceOf(segments ...string) Trace {
	return Trace{parts: cloneStrings(segments)}
}

// Push returns a new trace with seg appended. Empty segments are ignored.
func (t Trace) Push(seg string) Trace {
	if seg == "" {
		return t
	}
	parts := make([]string, len(t.parts), len(t.parts)+1)
	copy(parts, t.parts)
	return Trace{parts: append(parts, seg)}
}

// Segments returns a copy of the path segments.
func (t Trace) Segments() []string { return cloneStrings(t.parts) }

// Len reports the number of segments.
func (t Trace) Len() int { return len(t.parts) }

// String renders the dotted path, e.g. "MyRecord.inner.Inner.x".
func (t Trace) String() string { return strings.Join(t.parts, ".") }

// Equal reports whether both traces hold the same segments.
func (t Trace) Equal(o Trace) bool {
	if len(t.parts) != len(o.parts) {
		return false
	}
	for i := range t.parts {
		if t.parts[i] != o.parts[i] {
			return false
		}
	}
	return true
}
