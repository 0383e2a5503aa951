package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(le *LogEntry) error

// Logger captures events from every session.
type Logger struct {
	Record LogRecorder

	// Now is the clock used for timestamps, time.Now if nil.
	Now func() time.Time
}

// NewJSONLinesLogRecorder creates a Logger that exports logs in newline
// delimited JSON object format.
func NewJSONLinesLogRecorder(w io.Writer) *Logger {
	var mu sync.Mutex
	return &Logger{
		Record: func(le *LogEntry) error {
			entry, err := json.Marshal(le)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			_, err = fmt.Fprintln(w, string(entry))
			return err
		},
	}
}

// Discard returns a Logger that drops every event.
func Discard() *Logger {
	return &Logger{
		Record: func(*LogEntry) error { return nil },
	}
}

func (l *Logger) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *Logger) record(sessionID string, event EventType, fields Fields) error {
	le := &LogEntry{
		TimestampMicros: l.now().UnixNano() / int64(time.Microsecond),
		SessionID:       sessionID,
		Event:           event,
	}

	if len(fields) > 0 {
		payload, err := structpb.NewStruct(fields)
		if err != nil {
			return fmt.Errorf("%s event: %w", event, err)
		}
		le.Fields = payload
	}

	return l.Record(le)
}

// NewSession creates a logger with attached session ID.
func (l *Logger) NewSession() *SessionLogger {
	return &SessionLogger{Logger: l, sessionID: fmt.Sprintf("%d", rand.Uint64())}
}

// Sessionless creates a logger for events that don't belong to a session.
func (l *Logger) Sessionless() *SessionLogger {
	return &SessionLogger{Logger: l, sessionID: ""}
}

// SessionLogger logs messages with a shared session ID. A nil SessionLogger
// discards everything.
type SessionLogger struct {
	*Logger
	sessionID string
}

// ID returns the session ID.
func (l *SessionLogger) ID() string {
	if l == nil {
		return ""
	}
	return l.sessionID
}

// Record logs an event.
func (l *SessionLogger) Record(event EventType, fields Fields) error {
	if l == nil || l.Logger == nil {
		return nil
	}
	return l.record(l.sessionID, event, fields)
}
