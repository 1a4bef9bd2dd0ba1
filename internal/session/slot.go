package session

import (
	"context"
	"errors"
	"sync"
)

// ErrSlotEmpty is returned by Slot.Read when no record is stored.
var ErrSlotEmpty = errors.New("session slot is empty")

// Slot is the durable key-value location the store persists the session
// to. One slot holds at most one serialized Identity. The store is the
// only writer; implementations do not interpret the record.
type Slot interface {
	// Read returns the stored record, or ErrSlotEmpty if absent.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the stored record.
	Write(ctx context.Context, record []byte) error

	// Delete removes the record. Deleting an empty slot is not an error.
	Delete(ctx context.Context) error
}

// MemorySlot is an in-memory Slot for tests and single-binary dev runs.
// It does not survive restarts -- production wiring uses RedisSlot.
type MemorySlot struct {
	mu     sync.Mutex
	record []byte
	set    bool
}

// NewMemorySlot creates an empty in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

// Read returns the stored record, or ErrSlotEmpty if nothing was written.
func (m *MemorySlot) Read(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.set {
		return nil, ErrSlotEmpty
	}

	// Copy so callers can't mutate the stored record.
	out := make([]byte, len(m.record))
	copy(out, m.record)
	return out, nil
}

// Write replaces the stored record.
func (m *MemorySlot) Write(ctx context.Context, record []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record = make([]byte, len(record))
	copy(m.record, record)
	m.set = true
	return nil
}

// Delete clears the slot.
func (m *MemorySlot) Delete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record = nil
	m.set = false
	return nil
}
