package vfs

import (
	"context"
	"log"
	"sync"

	"github.com/juju/ratelimit"
)

type opKind int

const (
	opPut opKind = iota
	opDelete
	opDeletePrefix
)

func (k opKind) String() string {
	switch k {
	case opPut:
		return "put"
	case opDelete:
		return "delete"
	default:
		return "delete_prefix"
	}
}

type writeOp struct {
	kind  opKind
	key   string
	value []byte
}

// ErrorHandler is notified when the store rejects a write.
type ErrorHandler func(op, key string, err error)

// LogErrors returns an ErrorHandler that prints failures to logger.
func LogErrors(logger *log.Logger) ErrorHandler {
	return func(op, key string, err error) {
		logger.Printf("persistence: %s %q failed: %v", op, key, err)
	}
}

// WriterConfig holds the optional settings of a Writer.
type WriterConfig struct {
	// WritesPerSecond throttles store calls, zero or less is unlimited.
	WritesPerSecond float64
	// OnError is called for each failed write, failures are otherwise
	// dropped.
	OnError ErrorHandler
}

// Writer is the single writer queue between a filesystem and its Store.
//
// Enqueueing never blocks; operations reach the store one at a time in the
// order they were issued.
type Writer struct {
	store   Store
	onError ErrorHandler
	bucket  *ratelimit.Bucket

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []writeOp
	pending int
	closed  bool
	done    chan struct{}
}

// NewWriter starts a writer goroutine draining into store.
func NewWriter(store Store, cfg WriterConfig) *Writer {
	w := &Writer{
		store:   store,
		onError: cfg.OnError,
		done:    make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)

	if cfg.WritesPerSecond > 0 {
		w.bucket = ratelimit.NewBucketWithRate(cfg.WritesPerSecond, 1+int64(cfg.WritesPerSecond))
	}

	go w.run()
	return w
}

// Store returns the store the writer drains into.
func (w *Writer) Store() Store {
	return w.store
}

// Put queues a Store.Put.
func (w *Writer) Put(key string, value []byte) {
	w.enqueue(writeOp{kind: opPut, key: key, value: value})
}

// Delete queues a Store.Delete.
func (w *Writer) Delete(key string) {
	w.enqueue(writeOp{kind: opDelete, key: key})
}

// DeletePrefix queues a Store.DeletePrefix.
func (w *Writer) DeletePrefix(prefix string) {
	w.enqueue(writeOp{kind: opDeletePrefix, key: prefix})
}

func (w *Writer) enqueue(op writeOp) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.queue = append(w.queue, op)
	w.pending++
	w.cond.Broadcast()
}

// Flush blocks until every queued operation has been applied.
func (w *Writer) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for w.pending > 0 {
		w.cond.Wait()
	}
}

// Close flushes the queue and stops the writer. Later writes are dropped.
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return nil
	}
	w.closed = true
	w.cond.Broadcast()
	w.mu.Unlock()

	<-w.done
	return nil
}

func (w *Writer) run() {
	defer close(w.done)

	for {
		w.mu.Lock()
		for len(w.queue) == 0 && !w.closed {
			w.cond.Wait()
		}
		if len(w.queue) == 0 && w.closed {
			w.mu.Unlock()
			return
		}
		op := w.queue[0]
		w.queue = w.queue[1:]
		w.mu.Unlock()

		w.apply(op)

		w.mu.Lock()
		w.pending--
		w.cond.Broadcast()
		w.mu.Unlock()
	}
}

func (w *Writer) apply(op writeOp) {
	if w.bucket != nil {
		w.bucket.Wait(1)
	}

	ctx := context.Background()
	var err error
	switch op.kind {
	case opPut:
		err = w.store.Put(ctx, op.key, op.value)
	case opDelete:
		err = w.store.Delete(ctx, op.key)
	case opDeletePrefix:
		err = w.store.DeletePrefix(ctx, op.key)
	}

	if err != nil && w.onError != nil {
		w.onError(op.kind.String(), op.key, err)
	}
}
