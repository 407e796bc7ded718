package avsc

import (
	"bytes"
	"errors"
	"io"

	j "github.com/goccy/go-json"
)

// GoJSONDriver returns the Driver backed by goccy/go-json. Numbers decode as
// json.Number so that defaults keep their textual form.
func GoJSONDriver() Driver { return goJSONDriver{} }

type goJSONDriver struct{}

func (goJSONDriver) Name() string { return "go-json" }

func (goJSONDriver) Decode(data []byte) (any, error) {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	// a schema document holds exactly one value
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after schema document")
	}
	return v, nil
}
