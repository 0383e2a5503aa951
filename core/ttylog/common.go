package ttylog

import (
	"io"
	"log"
	"regexp"
	"sync"
	"time"
)

var (
	crlf = regexp.MustCompile(`\r?\n`)
)

// FD identifies the stream an Entry was captured from.
type FD int

const (
	FDStdin FD = iota
	FDStdout
	FDStderr
)

// Entry is a chunk of terminal IO captured at a point in time.
type Entry struct {
	TimestampMicros int64
	FD              FD
	Data            []byte
}

// LogSink receives log events.
type LogSink func(e *Entry) error

// LogSource adapts log readers.
type LogSource interface {
	// Next fetches the next available log entry. It returns io.EOF if the source
	// has no more log entries.
	Next() (*Entry, error)
}

// NewRealTimePlayback plays back the results in real-time.
// If maxSleep > 0, it's used as the maximum duration to pause.
func NewRealTimePlayback(maxSleep time.Duration, next LogSink) LogSink {
	var once sync.Once
	var prevTimeMicros int64

	return func(e *Entry) error {
		once.Do(func() {
			prevTimeMicros = e.TimestampMicros
		})

		delta := e.TimestampMicros - prevTimeMicros
		prevTimeMicros = e.TimestampMicros

		if maxSleep > 0 {
			sleepDuration := time.Duration(delta) * time.Microsecond
			if sleepDuration > maxSleep {
				sleepDuration = maxSleep
			}
			time.Sleep(sleepDuration)
		}

		return next(e)
	}
}

// NewIdleTimeLimit shifts entries earlier so no gap between two of them is
// longer than maxIdle.
func NewIdleTimeLimit(maxIdle time.Duration, next LogSink) LogSink {
	var (
		once       sync.Once
		prevMicros int64
		skewMicros int64
	)
	limit := maxIdle.Microseconds()

	return func(e *Entry) error {
		once.Do(func() {
			prevMicros = e.TimestampMicros
		})

		if pause := e.TimestampMicros - prevMicros; limit > 0 && pause > limit {
			skewMicros += pause - limit
		}
		prevMicros = e.TimestampMicros

		shifted := *e
		shifted.TimestampMicros -= skewMicros
		return next(&shifted)
	}
}

// NewCRLFAdapter rewrites bare newlines in output to CRLF so playback on a
// raw terminal returns the cursor to the first column.
func NewCRLFAdapter(next LogSink) LogSink {
	return func(e *Entry) error {
		if e.FD != FDStdin {
			e.Data = crlf.ReplaceAll(e.Data, []byte("\r\n"))
		}
		return next(e)
	}
}

// NewClientOutput writes stdout and stderr to the given writer
func NewClientOutput(w io.Writer) LogSink {
	return func(e *Entry) error {
		if e.FD == FDStdin {
			return nil
		}
		_, err := w.Write(e.Data)
		return err
	}
}

// Replay reads a stream of events to a callback.
func Replay(recording LogSource, callback LogSink) (err error) {
	for {
		e, err := recording.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		if err := callback(e); err != nil {
			return err
		}
	}
}

// Recorder wraps a terminal connection and forwards everything read from or
// written to it to a LogSink.
type Recorder struct {
	wrapped io.ReadWriter
	mutex   sync.Mutex
	output  LogSink

	// Now is the clock used for timestamps, time.Now if nil.
	Now func() time.Time
}

var _ io.ReadWriter = (*Recorder)(nil)

// NewRecorder creates a logger that forwards all events to output.
func NewRecorder(toWrap io.ReadWriter, output LogSink) *Recorder {
	return &Recorder{
		wrapped: toWrap,
		output:  output,
	}
}

func (r *Recorder) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Recorder) record(fd FD, data []byte) {
	if len(data) == 0 {
		return
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	err := r.output(&Entry{
		TimestampMicros: r.now().UnixNano() / int64(time.Microsecond),
		FD:              fd,
		Data:            append([]byte(nil), data...),
	})
	if err != nil {
		log.Print(err)
	}
}

// Read implements io.Reader, recording the bytes as stdin.
func (r *Recorder) Read(p []byte) (int, error) {
	n, err := r.wrapped.Read(p)
	r.record(FDStdin, p[:n])
	return n, err
}

// Write implements io.Writer, recording the bytes as stdout.
func (r *Recorder) Write(p []byte) (int, error) {
	n, err := r.wrapped.Write(p)
	r.record(FDStdout, p[:n])
	return n, err
}
