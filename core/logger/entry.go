package logger

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// EventType names a kind of log entry.
type EventType string

const (
	EventSessionStart      EventType = "session_start"
	EventLoginAttempt      EventType = "login_attempt"
	EventCommand           EventType = "command"
	EventUnknownCommand    EventType = "unknown_command"
	EventInvalidInvocation EventType = "invalid_invocation"
	EventPanic             EventType = "panic"
	EventAliasLoop         EventType = "alias_loop"
	EventPersistError      EventType = "persist_error"
	EventSessionEnd        EventType = "session_end"
)

// Fields holds the payload of an event. Values must be accepted by
// structpb.NewValue, use Strings for string slices.
type Fields map[string]interface{}

// Strings converts a string slice into a value Fields accepts.
func Strings(s []string) []interface{} {
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

// LogEntry is a single event.
type LogEntry struct {
	TimestampMicros int64
	SessionID       string
	Event           EventType
	Fields          *structpb.Struct
}

type jsonLogEntry struct {
	TimestampMicros int64           `json:"timestamp_micros"`
	SessionID       string          `json:"session_id,omitempty"`
	Event           EventType       `json:"event"`
	Fields          json.RawMessage `json:"fields,omitempty"`
}

// MarshalJSON implements json.Marshaler, the payload is encoded with
// protojson.
func (le *LogEntry) MarshalJSON() ([]byte, error) {
	out := jsonLogEntry{
		TimestampMicros: le.TimestampMicros,
		SessionID:       le.SessionID,
		Event:           le.Event,
	}

	if le.Fields != nil {
		fields, err := protojson.Marshal(le.Fields)
		if err != nil {
			return nil, fmt.Errorf("encoding fields: %w", err)
		}
		out.Fields = fields
	}

	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (le *LogEntry) UnmarshalJSON(data []byte) error {
	var in jsonLogEntry
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	le.TimestampMicros = in.TimestampMicros
	le.SessionID = in.SessionID
	le.Event = in.Event
	le.Fields = nil

	if len(in.Fields) > 0 && string(in.Fields) != "null" {
		fields := &structpb.Struct{}
		if err := protojson.Unmarshal(in.Fields, fields); err != nil {
			return fmt.Errorf("decoding fields: %w", err)
		}
		le.Fields = fields
	}
	return nil
}

func (le *LogEntry) field(name string) *structpb.Value {
	if le.Fields == nil {
		return nil
	}
	return le.Fields.GetFields()[name]
}

// String returns the string field name, or "" if it isn't set.
func (le *LogEntry) String(name string) string {
	return le.field(name).GetStringValue()
}

// Number returns the numeric field name, or 0 if it isn't set.
func (le *LogEntry) Number(name string) float64 {
	return le.field(name).GetNumberValue()
}

// Bool returns the boolean field name.
func (le *LogEntry) Bool(name string) bool {
	return le.field(name).GetBoolValue()
}

// StringList returns the string values in the list field name.
func (le *LogEntry) StringList(name string) []string {
	var out []string
	for _, v := range le.field(name).GetListValue().GetValues() {
		out = append(out, v.GetStringValue())
	}
	return out
}
