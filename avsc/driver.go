package avsc

import (
	"fmt"
	"sync"
)

// Driver decodes JSON schema text into JSON-like Go values (map[string]any,
// []any, string, numbers, bool, nil). The default implementation is backed by
// goccy/go-json and may be swapped with SetDriver.
type Driver interface {
	Decode(data []byte) (any, error)
	Name() string
}

var (
	driverMu      sync.RWMutex
	currentDriver Driver = goJSONDriver{}
)

// SetDriver replaces the global JSON driver; nil values are ignored.
func SetDriver(d Driver) {
	if d == nil {
		return
	}
	driverMu.Lock()
	currentDriver = d
	driverMu.Unlock()
}

// UseDefaultDriver restores the go-json backed driver.
func UseDefaultDriver() {
	driverMu.Lock()
	currentDriver = goJSONDriver{}
	driverMu.Unlock()
}

// CurrentDriver returns the driver used by Parse.
func CurrentDriver() Driver {
	driverMu.RLock()
	d := currentDriver
	driverMu.RUnlock()
	return d
}

// DriverByName resolves "go-json" (default) or "fastjson".
func DriverByName(name string) (Driver, error) {
	switch name {
	case "", "go-json", "gojson":
		return goJSONDriver{}, nil
	case "fastjson":
		return fastJSONDriver{}, nil
	default:
		return nil, fmt.Errorf("avsc: unknown JSON driver %q", name)
	}
}
