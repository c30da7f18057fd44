package observability

import (
	"time"

	"go.uber.org/zap"
)

// Field aliases so callers outside this package do not need to import zap
// directly for the common field constructors.

// String constructs a string field.
func String(key, value string) zap.Field {
	return zap.String(key, value)
}

// Strings constructs a string-slice field.
func Strings(key string, values []string) zap.Field {
	return zap.Strings(key, values)
}

// Int constructs an int field.
func Int(key string, value int) zap.Field {
	return zap.Int(key, value)
}

// Bool constructs a bool field.
func Bool(key string, value bool) zap.Field {
	return zap.Bool(key, value)
}

// Float64 constructs a float64 field.
func Float64(key string, value float64) zap.Field {
	return zap.Float64(key, value)
}

// Duration constructs a duration field.
func Duration(key string, value time.Duration) zap.Field {
	return zap.Duration(key, value)
}

// Error constructs an error field.
func Error(err error) zap.Field {
	return zap.Error(err)
}
