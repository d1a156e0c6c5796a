package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// JSONFormatter renders an Entry as a single line of JSON.
type JSONFormatter struct{}

func (JSONFormatter) Format(entry *Entry) ([]byte, error) {
	out := make(map[string]interface{}, len(entry.Fields)+4)
	for k, v := range entry.Fields {
		out[k] = v
	}
	out["level"] = entry.Level.String()
	out["msg"] = entry.Message
	out["time"] = entry.Timestamp.Format("2006-01-02T15:04:05.000Z07:00")
	if entry.Caller != "" {
		out["caller"] = entry.Caller
	}
	if entry.Error != nil {
		out["error"] = entry.Error.Error()
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// TextFormatter renders an Entry as a human-readable single line, sorting
// field keys for deterministic output.
type TextFormatter struct {
	// DisableColor suppresses ANSI color codes around the level tag.
	DisableColor bool
}

func (f TextFormatter) Format(entry *Entry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(entry.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"))
	buf.WriteByte(' ')
	buf.WriteString(f.levelTag(entry.Level))
	buf.WriteByte(' ')
	buf.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&buf, " %s=%v", k, entry.Fields[k])
	}
	if entry.Error != nil {
		fmt.Fprintf(&buf, " error=%q", entry.Error.Error())
	}
	if entry.Caller != "" {
		fmt.Fprintf(&buf, " caller=%s", entry.Caller)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (f TextFormatter) levelTag(level Level) string {
	tag := "[" + level.String() + "]"
	if f.DisableColor {
		return tag
	}
	switch level {
	case DebugLevel:
		return "\x1b[90m" + tag + "\x1b[0m"
	case InfoLevel:
		return "\x1b[36m" + tag + "\x1b[0m"
	case WarnLevel:
		return "\x1b[33m" + tag + "\x1b[0m"
	case ErrorLevel, FatalLevel:
		return "\x1b[31m" + tag + "\x1b[0m"
	default:
		return tag
	}
}
