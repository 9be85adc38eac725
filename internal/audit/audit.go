// Package audit writes a best-effort trail of send attempts. Writes never
// block or fail the send path: a full queue or a database error is logged and
// dropped.
package audit

import (
	"log"
	"sync"
	"time"

	"crm-gateway/internal/models"

	"gorm.io/gorm"
)

// Entry is one send attempt to record.
type Entry struct {
	PhoneNumber       string
	MessageContent    string
	MessageType       string
	Status            string
	WhatsAppMessageID string
	ErrorMessage      string
	SentAt            time.Time
}

// Recorder accepts audit entries. Record must never block the caller.
type Recorder interface {
	Record(entry Entry)
}

// Writer queues entries onto a buffered channel drained by one worker
// goroutine that inserts MessageLog rows.
type Writer struct {
	db      *gorm.DB
	queue   chan Entry
	done    chan struct{}
	timeNow func() time.Time

	mu     sync.Mutex
	closed bool
}

func NewWriter(db *gorm.DB, queueSize int) *Writer {
	if queueSize <= 0 {
		queueSize = 256
	}
	w := &Writer{
		db:      db,
		queue:   make(chan Entry, queueSize),
		done:    make(chan struct{}),
		timeNow: time.Now,
	}
	go w.run()
	return w
}

// Record enqueues an entry without blocking. Entries are dropped (and the
// drop logged) when the queue is full or the writer is already closed.
func (w *Writer) Record(entry Entry) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		log.Printf("Audit writer closed, dropping record for %s", entry.PhoneNumber)
		return
	}
	select {
	case w.queue <- entry:
	default:
		log.Printf("Audit queue full, dropping record for %s", entry.PhoneNumber)
	}
}

func (w *Writer) run() {
	defer close(w.done)
	for entry := range w.queue {
		sentAt := entry.SentAt
		if sentAt.IsZero() {
			sentAt = w.timeNow()
		}
		row := models.MessageLog{
			PhoneNumber:       entry.PhoneNumber,
			MessageContent:    entry.MessageContent,
			MessageType:       entry.MessageType,
			Status:            entry.Status,
			WhatsAppMessageID: entry.WhatsAppMessageID,
			ErrorMessage:      entry.ErrorMessage,
			SentAt:            &sentAt,
		}
		if err := w.db.Create(&row).Error; err != nil {
			log.Printf("Failed to write audit record for %s: %v", entry.PhoneNumber, err)
		}
	}
}

// Close stops accepting entries and waits for the queue to drain. It is safe
// to call more than once and safe against concurrent Record calls.
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()
	<-w.done
}

// Discard is a Recorder that drops everything; useful in tests.
type Discard struct{}

func (Discard) Record(Entry) {}
