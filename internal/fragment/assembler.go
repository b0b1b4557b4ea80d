package fragment

import "sync"

// Key identifies one logical message being reassembled: the 1-bit sequence
// number plus the originating peer.
type Key struct {
	Peer string
	Seq  uint8
}

// Assembler holds per-key reassembly buffers. It is shared between the
// sender and receiver paths, so all access is mutex-guarded.
type Assembler struct {
	mu      sync.Mutex
	buffers map[Key]map[uint8][]byte
}

func NewAssembler() *Assembler {
	return &Assembler{
		buffers: make(map[Key]map[uint8][]byte),
	}
}

// Accept stores one fragment and returns the complete in-order message
// exactly when fragTotal distinct ids are present. A duplicate fragment id
// overwrites in place and never inflates the completeness count. The buffer
// is released once assembly succeeds.
func (a *Assembler) Accept(key Key, fragID, fragTotal uint8, payload []byte) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	buf, ok := a.buffers[key]
	if !ok {
		buf = make(map[uint8][]byte, fragTotal)
		a.buffers[key] = buf
	}
	p := make([]byte, len(payload))
	copy(p, payload)
	buf[fragID] = p

	if len(buf) < int(fragTotal) {
		return nil, false
	}

	msg := make([]byte, 0)
	for i := uint8(0); i < fragTotal; i++ {
		part, ok := buf[i]
		if !ok {
			// Stray ids outside 0..fragTotal-1 padded the count; the real
			// set is still incomplete.
			return nil, false
		}
		msg = append(msg, part...)
	}
	delete(a.buffers, key)
	return msg, true
}

// Abandon drops the buffer for key, releasing its memory.
func (a *Assembler) Abandon(key Key) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.buffers, key)
}

// PendingBuffers returns the number of incomplete reassembly buffers.
func (a *Assembler) PendingBuffers() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.buffers)
}
