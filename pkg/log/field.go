package log

// Field is a single piece of structured context attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field from a key and an arbitrary value.
func F(key string, value interface{}) Field { return Field{Key: key, Value: value} }

// Str builds a string Field.
func Str(key, value string) Field { return Field{Key: key, Value: value} }

// Int builds an int Field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Int64 builds an int64 Field.
func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }

// Bool builds a bool Field.
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

// Err builds an "error" Field. A nil error is rendered as nil, not omitted,
// so callers can log.Error("failed", log.Err(err)) unconditionally.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Any builds a Field from any value, for cases the typed helpers don't cover.
func Any(key string, value interface{}) Field { return Field{Key: key, Value: value} }

// Component tags a log entry with the originating component name.
func Component(name string) Field { return Field{Key: ComponentKey, Value: name} }
