package assess

import (
	"errors"
	"fmt"
)

// ErrSchemaMismatch is returned by consumers handed an Assessment with a
// schema version they do not recognize. Refusing to render beats guessing
// a layout.
var ErrSchemaMismatch = errors.New("unrecognized assessment schema version")

// ConfigError is a fatal, pre-run configuration problem: a bad weight
// override, an unknown attribute reference, or a degenerate weight table.
// No partial run is attempted after one of these.
type ConfigError struct {
	AttributeID string // offending attribute id, if any
	Reason      string
}

func (e *ConfigError) Error() string {
	if e.AttributeID != "" {
		return fmt.Sprintf("configuration error for attribute %q: %s", e.AttributeID, e.Reason)
	}
	return "configuration error: " + e.Reason
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
