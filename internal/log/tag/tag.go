package tag

import (
	"time"

	"go.uber.org/zap"
)

// Tag is a typed key/value pair attached to log messages.
type Tag struct {
	field zap.Field
}

// Field returns the underlying zap field.
func (t Tag) Field() zap.Field {
	return t.field
}

// NewStringTag returns a tag for an arbitrary string value.
func NewStringTag(key string, value string) Tag {
	return Tag{field: zap.String(key, value)}
}

// NewInt returns a tag for an int value.
func NewInt(key string, value int) Tag {
	return Tag{field: zap.Int(key, value)}
}

// NewInt64 returns a tag for an int64 value.
func NewInt64(key string, value int64) Tag {
	return Tag{field: zap.Int64(key, value)}
}

// NewUint32 returns a tag for a uint32 value.
func NewUint32(key string, value uint32) Tag {
	return Tag{field: zap.Uint32(key, value)}
}

// NewUint64 returns a tag for a uint64 value.
func NewUint64(key string, value uint64) Tag {
	return Tag{field: zap.Uint64(key, value)}
}

// NewBoolTag returns a tag for a bool value.
func NewBoolTag(key string, value bool) Tag {
	return Tag{field: zap.Bool(key, value)}
}

// NewDurationTag returns a tag for a time.Duration value.
func NewDurationTag(key string, value time.Duration) Tag {
	return Tag{field: zap.Duration(key, value)}
}

// Error returns a tag for an error value under the conventional "error" key.
func Error(err error) Tag {
	return Tag{field: zap.Error(err)}
}
