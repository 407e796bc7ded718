package avsc

import (
	"fmt"

	"github.com/valyala/fastjson"
)

// FastJSONDriver returns a Driver backed by valyala/fastjson. Integral
// numbers decode as int64, others as float64.
func FastJSONDriver() Driver { return fastJSONDriver{} }

type fastJSONDriver struct{}

func (fastJSONDriver) Name() string { return "fastjson" }

func (fastJSONDriver) Decode(data []byte) (any, error) {
	v, err := fastjson.ParseBytes(data)
	if err != nil {
		return nil, err
	}
	return fromFastJSON(v)
}

func fromFastJSON(v *fastjson.Value) (any, error) {
	switch v.Type() {
	case fastjson.TypeObject:
		o, err := v.Object()
		if err != nil {
			return nil, err
		}
		m := make(map[string]any, o.Len())
		var verr error
		o.Visit(func(key []byte, vv *fastjson.Value) {
			if verr != nil {
				return
			}
			x, err := fromFastJSON(vv)
			if err != nil {
				verr = err
				return
			}
			m[string(key)] = x
		})
		if verr != nil {
			return nil, verr
		}
		return m, nil
	case fastjson.TypeArray:
		vs, err := v.Array()
		if err != nil {
			return nil, err
		}
		arr := make([]any, 0, len(vs))
		for _, vv := range vs {
			x, err := fromFastJSON(vv)
			if err != nil {
				return nil, err
			}
			arr = append(arr, x)
		}
		return arr, nil
	case fastjson.TypeString:
		b, err := v.StringBytes()
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case fastjson.TypeNumber:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		return v.Float64()
	case fastjson.TypeTrue:
		return true, nil
	case fastjson.TypeFalse:
		return false, nil
	case fastjson.TypeNull:
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported JSON value type %s", v.Type())
}
