// Package avsc reads Avro schema documents (.avsc JSON, or YAML) into
// avrocompat schema trees and writes trees back as JSON.
//
// JSON decoding goes through a pluggable Driver (goccy/go-json by default,
// valyala/fastjson as an alternative); YAML is decoded with gopkg.in/yaml.v3
// and rejects duplicate mapping keys.
//
//	s, err := avsc.ParseFile("user.v2.avsc")
//	if err != nil { ... }
//	err = avrocompat.Check([]avrocompat.Schema{v1, s})
package avsc
