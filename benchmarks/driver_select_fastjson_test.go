//go:build fastjson

package avrocompat_test

import "github.com/reoring/avrocompat/avsc"

func init() {
	avsc.SetDriver(avsc.FastJSONDriver())
}
