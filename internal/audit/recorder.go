// Package audit records the append-only trail of sensitive operations.
// Writes are handed off to a background worker; the primary operation never
// waits for them and never fails because of them.
package audit

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"org-service/internal/model"
	"org-service/prometheus"
)

// Sink is where audit entries land. Satisfied by *store.Store.
type Sink interface {
	InsertAuditLog(entry *model.AuditLog) error
}

// Entry describes one auditable event.
type Entry struct {
	Action           string
	OrganizationName string
	AdminEmail       string
	IPAddress        string
	UserAgent        string
	Details          map[string]interface{}
	Success          bool
}

// Recorder queues entries onto a buffered channel consumed by a single
// worker goroutine.
type Recorder struct {
	sink  Sink
	log   *zap.Logger
	queue chan Entry
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewRecorder starts a recorder with the given queue capacity.
func NewRecorder(sink Sink, log *zap.Logger, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = 256
	}
	r := &Recorder{
		sink:  sink,
		log:   log,
		queue: make(chan Entry, queueSize),
		done:  make(chan struct{}),
	}
	go r.run()
	return r
}

// Record queues an entry without blocking. If the queue is full, or the
// recorder has been closed, the entry is dropped and logged; audit writes are
// best-effort.
func (r *Recorder) Record(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.log.Warn("audit recorder closed, dropping entry", zap.String("action", e.Action))
		return
	}
	select {
	case r.queue <- e:
	default:
		r.log.Warn("audit queue full, dropping entry", zap.String("action", e.Action))
	}
}

// Close stops accepting entries and waits for the queue to drain. Safe to
// call more than once; Record after Close drops instead of panicking.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	close(r.queue)
	<-r.done
}

func (r *Recorder) run() {
	defer close(r.done)
	for e := range r.queue {
		r.write(e)
	}
}

func (r *Recorder) write(e Entry) {
	details := "{}"
	if len(e.Details) > 0 {
		if b, err := json.Marshal(e.Details); err == nil {
			details = string(b)
		} else {
			r.log.Error("failed to encode audit details", zap.Error(err))
		}
	}

	entry := &model.AuditLog{
		Action:           e.Action,
		OrganizationName: e.OrganizationName,
		AdminEmail:       e.AdminEmail,
		IPAddress:        e.IPAddress,
		UserAgent:        e.UserAgent,
		Details:          details,
		Success:          e.Success,
		Timestamp:        time.Now().UTC(),
	}

	if err := r.sink.InsertAuditLog(entry); err != nil {
		// Swallowed: an audit failure must never surface to the operation
		// that triggered it.
		r.log.Error("failed to write audit entry",
			zap.String("action", e.Action),
			zap.Error(err))
		return
	}
	prometheus.RecordAuditEntry(e.Action)
}
