package arq

import (
	"sort"
	"sync"
	"time"
)

// PendingFragment tracks one unacknowledged fragment of the in-flight
// message.
type PendingFragment struct {
	FragID        uint8
	Attempts      int
	LastAttemptAt time.Time
}

// outbox is the pending-send set for the single in-flight message. The
// receiver path removes entries as acknowledgments arrive while the sender
// path reads it to decide what to retransmit, so it carries its own lock.
type outbox struct {
	mu    sync.RWMutex
	seq   uint8
	items map[uint8]PendingFragment
}

func newOutbox(seq uint8, total int) *outbox {
	items := make(map[uint8]PendingFragment, total)
	for i := 0; i < total; i++ {
		items[uint8(i)] = PendingFragment{FragID: uint8(i)}
	}
	return &outbox{seq: seq, items: items}
}

// MarkAttempt bumps the attempt counter for one fragment.
func (o *outbox) MarkAttempt(fragID uint8, at time.Time) (PendingFragment, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	item, ok := o.items[fragID]
	if !ok {
		return PendingFragment{}, false
	}
	item.Attempts++
	item.LastAttemptAt = at
	o.items[fragID] = item
	return item, true
}

// Ack removes a fragment if the acknowledgment matches the in-flight
// sequence number and the fragment is still pending.
func (o *outbox) Ack(seq, fragID uint8) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if seq != o.seq {
		return false
	}
	if _, ok := o.items[fragID]; !ok {
		return false
	}
	delete(o.items, fragID)
	return true
}

func (o *outbox) Empty() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.items) == 0
}

// Pending returns the unacknowledged fragments ordered by fragment id.
func (o *outbox) Pending() []PendingFragment {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]PendingFragment, 0, len(o.items))
	for _, item := range o.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FragID < out[j].FragID
	})
	return out
}

// Exhausted returns a still-pending fragment whose attempt counter reached
// the ceiling, if any.
func (o *outbox) Exhausted(maxRetry int) (uint8, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for id, item := range o.items {
		if item.Attempts >= maxRetry {
			return id, true
		}
	}
	return 0, false
}
