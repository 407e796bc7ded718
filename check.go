package avrocompat

import "log/slog"

// CheckOpt bundles options for Check, Superset and Compare. When several are
// passed the last one wins.
type CheckOpt struct {
	// MaxDepth caps comparison recursion (0 = bounded only by the schemas).
	MaxDepth int
	// Logger receives a Debug record per accepted version and a Warn record on
	// rejection. Defaults to slog.Default().
	Logger *slog.Logger
	// OnReject, when set, is called once with the running superset and the
	// rejected schema before the error is returned.
	OnReject func(index int, superset, rejected Schema)
}

func lastOpt(opts []CheckOpt) CheckOpt {
	if len(opts) == 0 {
		return CheckOpt{}
	}
	return opts[len(opts)-1]
}

// Check validates that schemas, ordered oldest to newest, are pairwise
// backward- and forward-compatible. It returns the first incompatibility
// found, unmodified, or ErrNoSchemas for an empty sequence.
func Check(schemas []Schema, opts ...CheckOpt) error {
	_, err := Superset(schemas, opts...)
	return err
}

// Superset runs the same pass as Check and returns the final superset: the
// first schema with every later top-level record field folded in.
//
// Each version is compared against the superset of all earlier ones. Because
// the superset only grows by fields that passed the default rules, accepting
// version i against it also accepts it against every earlier version.
func Superset(schemas []Schema, opts ...CheckOpt) (Schema, error) {
	if len(schemas) == 0 {
		return nil, ErrNoSchemas
	}
	opt := lastOpt(opts)
	logger := opt.Logger
	if logger == nil {
		logger = slog.Default()
	}

	superset := schemas[0]
	for i := 1; i < len(schemas); i++ {
		next := schemas[i]
		if err := Compare(superset, next, Root(), opt); err != nil {
			logger.Warn("schema rejected", "index", i, "error", err)
			if opt.OnReject != nil {
				opt.OnReject(i, superset, next)
			}
			return nil, err
		}
		// non-record roots have no field set to union
		if sr, ok := superset.(*Record); ok {
			if nr, ok := next.(*Record); ok {
				superset = Merge(sr, nr)
			}
		}
		logger.Debug("schema compatible", "index", i, "superset_fields", fieldCount(superset))
	}
	return superset, nil
}

func fieldCount(s Schema) int {
	if r, ok := s.(*Record); ok && r != nil {
		return len(r.Fields)
	}
	return 0
}
