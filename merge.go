package avrocompat

// Merge folds next into superset and returns a new record: a deep copy of
// superset followed by every field of next whose name superset lacks, in
// next's order. The union is top-level only; a field present on both sides
// keeps superset's type.
//
// Merge expects Compare(superset, next, Root()) to have succeeded and does not
// re-validate. Neither input is modified.
func Merge(superset, next *Record) *Record {
	switch {
	case superset == nil && next == nil:
		return nil
	case superset == nil:
		return Clone(next).(*Record)
	case next == nil:
		return Clone(superset).(*Record)
	}

	out := &Record{
		Name:      superset.Name,
		Namespace: superset.Namespace,
		Doc:       superset.Doc,
		Aliases:   cloneStrings(superset.Aliases),
	}
	// self references inside superset's fields resolve to the merged record
	seen := map[Schema]Schema{superset: out}
	out.Fields = cloneFields(superset.Fields, seen)

	have := make(map[string]struct{}, len(superset.Fields)+len(next.Fields))
	for _, f := range superset.Fields {
		have[f.Name] = struct{}{}
	}
	for _, f := range next.Fields {
		if _, ok := have[f.Name]; ok {
			continue
		}
		have[f.Name] = struct{}{}
		out.Fields = append(out.Fields, f)
	}
	return out
}
