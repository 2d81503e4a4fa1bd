// Package kernel holds the lock-free plumbing between background goroutines
// and the kiosk's single-threaded loop.
package kernel

import (
	"runtime"
	"sync/atomic"
)

// mailboxSlots is the queue depth. It must be a power of two.
const mailboxSlots = 16

type slot[T any] struct {
	// seq is pos+1 once the value for queue position pos is published.
	seq atomic.Uint32
	val T
}

// Mailbox is a fixed-size multi-producer, single-consumer queue. The zero
// value is an empty mailbox. It never allocates; blocking calls spin with
// Gosched so it works without an OS scheduler.
type Mailbox[T any] struct {
	_     [0]func() // not comparable
	head  atomic.Uint32
	tail  atomic.Uint32
	slots [mailboxSlots]slot[T]
}

// TrySend attempts to enqueue v, returning false if the mailbox is full.
func (mb *Mailbox[T]) TrySend(v T) bool {
	for {
		head := mb.head.Load()
		if head-mb.tail.Load() >= mailboxSlots {
			return false
		}
		if !mb.head.CompareAndSwap(head, head+1) {
			// Another producer won the slot; retry with the new head.
			continue
		}
		s := &mb.slots[head%mailboxSlots]
		s.val = v
		s.seq.Store(head + 1)
		return true
	}
}

// Send enqueues v, blocking until it succeeds.
func (mb *Mailbox[T]) Send(v T) {
	for !mb.TrySend(v) {
		runtime.Gosched()
	}
}

// TryRecv attempts to dequeue one value, returning false if none is ready.
// Only one goroutine may receive.
func (mb *Mailbox[T]) TryRecv() (T, bool) {
	tail := mb.tail.Load()
	s := &mb.slots[tail%mailboxSlots]
	if s.seq.Load() != tail+1 {
		var zero T
		return zero, false
	}
	v := s.val
	var zero T
	s.val = zero
	mb.tail.Store(tail + 1)
	return v, true
}

// Recv blocks until one value is available.
func (mb *Mailbox[T]) Recv() T {
	for {
		if v, ok := mb.TryRecv(); ok {
			return v
		}
		runtime.Gosched()
	}
}

// Drain hands every ready value to fn and returns how many there were.
func (mb *Mailbox[T]) Drain(fn func(T)) int {
	n := 0
	for {
		v, ok := mb.TryRecv()
		if !ok {
			return n
		}
		fn(v)
		n++
	}
}

// Len is a snapshot of the number of queued values.
func (mb *Mailbox[T]) Len() int {
	return int(mb.head.Load() - mb.tail.Load())
}
