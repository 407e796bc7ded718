package avrocompat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/avrocompat/i18n"
)

// Incompatibility codes (exported consts for IDE completion and type safety by convention)
const (
	CodeKindMismatch       = "kind_mismatch"
	CodeMissingDefault     = "missing_default"
	CodeSymbolSetMismatch  = "symbol_set_mismatch"
	CodeUnionArityMismatch = "union_arity_mismatch"
	CodeFixedMismatch      = "fixed_mismatch"
	CodePrimitiveMismatch  = "primitive_mismatch"
	// Host-imposed nesting cap (CheckOpt.MaxDepth)
	CodeTooDeep = "too_deep"
)

var (
	// ErrIncompatible matches every *Incompatibility under errors.Is.
	ErrIncompatible = errors.New("avrocompat: incompatible schemas")
	// ErrNoSchemas is returned by Check and Superset for an empty sequence.
	ErrNoSchemas = errors.New("avrocompat: no schemas to check")
)

// Incompatibility reports the first violation found while comparing two
// schemas. It is produced at the frame where the violation occurs and
// returned to the caller unmodified.
type Incompatibility struct {
	Code  string // One of the codes listed above.
	Trace Trace  // Record and field names from the root record.
	// A and B are the conflicting values of the older/superset side and the
	// newer side (type names, symbol lists, sizes, or a field name with nil on
	// the side lacking the field).
	A, B    any
	Message string
	// Params carries structured values (e.g. {"field":"f"}, {"attr":"size"})
	// for i18n and observability.
	Params map[string]any
}

func (e *Incompatibility) Error() string {
	b := &strings.Builder{}
	b.WriteString(e.Code)
	if p := e.Trace.String(); p != "" {
		b.WriteString(" at ")
		b.WriteString(p)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	fmt.Fprintf(b, " (a=%s, b=%s)", renderValue(e.A), renderValue(e.B))
	return b.String()
}

// Is reports true for ErrIncompatible.
func (e *Incompatibility) Is(target error) bool { return target == ErrIncompatible }

// Path returns the dotted trace.
func (e *Incompatibility) Path() string { return e.Trace.String() }

// AsIncompatibility extracts an *Incompatibility using errors.As internally.
func AsIncompatibility(err error) (*Incompatibility, bool) {
	if err == nil {
		return nil, false
	}
	var inc *Incompatibility
	if errors.As(err, &inc) {
		return inc, true
	}
	return nil, false
}

// incompatibleAt creates an Incompatibility at the given trace and resolves
// its message through the i18n catalog.
func incompatibleAt(t Trace, code string, a, b any, params map[string]any) *Incompatibility {
	return &Incompatibility{
		Code:    code,
		Trace:   t,
		A:       a,
		B:       b,
		Params:  params,
		Message: i18n.T(code, stringParams(params)),
	}
}

func stringParams(params map[string]any) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = fmt.Sprint(v)
	}
	return out
}

func renderValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "<none>"
	case []string:
		return "[" + strings.Join(t, ",") + "]"
	default:
		return fmt.Sprint(v)
	}
}
