// Package avrocompat checks that a history of Avro record schemas is mutually
// backward- and forward-compatible.
//
// It provides:
//
// - A closed schema model (Record, Enum, Union, Array, Map, Fixed, Primitive)
// - Compare: a structural comparator applying per-kind evolution rules
// - Merge: folds a new version into a running superset of record fields
// - Check/Superset: validates a whole chain, oldest to newest, in one pass
// - A stable error model via *Incompatibility (code, dotted trace, both values)
//
// Design policy:
// - Keep only the model and the algorithm in the root package; schema text
// parsing lives under avsc/, messages under i18n/, and the CLI under
// cmd/avrocompat.
// - Nodes are never mutated; Merge always allocates.
//
// Typical usage:
//
//	v1, _ := avsc.ParseFile("MyRecord.v1.avsc")
//	v2, _ := avsc.ParseFile("MyRecord.v2.avsc")
//	if err := avrocompat.Check([]avrocompat.Schema{v1, v2}); err != nil {
//		inc, _ := avrocompat.AsIncompatibility(err)
//		fmt.Println(inc.Code, inc.Path())
//	}
package avrocompat
