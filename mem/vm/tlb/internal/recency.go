// Package internal provides the recency ordering used by the TLB.
package internal

// Entry is a translation stored in the recency list.
type Entry struct {
	VirtualPage  uint64
	PhysicalPage uint64
	Dirty        bool
}

// nilSlot marks the absence of a neighbor.
const nilSlot = -1

type node struct {
	entry Entry
	prev  int
	next  int
}

// A RecencyList keeps entries ordered from the most recently used (front) to
// the least recently used (back). Entries live in a fixed arena and are
// addressed by slot indices that stay valid until the entry is removed.
//
// A RecencyList is not safe for concurrent use.
type RecencyList struct {
	nodes []node
	free  []int
	head  int
	tail  int
	size  int
}

// NewRecencyList creates a list that can hold up to capacity entries.
func NewRecencyList(capacity int) *RecencyList {
	l := &RecencyList{
		nodes: make([]node, capacity),
		free:  make([]int, 0, capacity),
	}

	l.Reset()

	return l
}

// Reset drops all the entries.
func (l *RecencyList) Reset() {
	l.free = l.free[:0]
	for i := len(l.nodes) - 1; i >= 0; i-- {
		l.nodes[i] = node{prev: nilSlot, next: nilSlot}
		l.free = append(l.free, i)
	}

	l.head = nilSlot
	l.tail = nilSlot
	l.size = 0
}

// Len returns the number of entries in the list.
func (l *RecencyList) Len() int {
	return l.size
}

// Cap returns the number of slots in the arena.
func (l *RecencyList) Cap() int {
	return len(l.nodes)
}

// Full tells if no free slot is left.
func (l *RecencyList) Full() bool {
	return len(l.free) == 0
}

// PushFront stores the entry as the most recently used one and returns its
// slot. It panics if the list is full.
func (l *RecencyList) PushFront(e Entry) int {
	if l.Full() {
		panic("recency list is full")
	}

	slot := l.free[len(l.free)-1]
	l.free = l.free[:len(l.free)-1]

	l.nodes[slot] = node{entry: e, prev: nilSlot, next: nilSlot}
	l.linkFront(slot)
	l.size++

	return slot
}

// MoveToFront marks the entry in slot as the most recently used one.
func (l *RecencyList) MoveToFront(slot int) {
	if slot == l.head {
		return
	}

	l.unlink(slot)
	l.linkFront(slot)
}

// Remove deletes the entry in slot and returns it.
func (l *RecencyList) Remove(slot int) Entry {
	e := l.nodes[slot].entry

	l.unlink(slot)
	l.nodes[slot] = node{prev: nilSlot, next: nilSlot}
	l.free = append(l.free, slot)
	l.size--

	return e
}

// Back returns the slot of the least recently used entry.
func (l *RecencyList) Back() (slot int, ok bool) {
	if l.tail == nilSlot {
		return 0, false
	}

	return l.tail, true
}

// Get returns the entry stored in slot.
func (l *RecencyList) Get(slot int) Entry {
	return l.nodes[slot].entry
}

// Set overwrites the entry stored in slot without changing its position.
func (l *RecencyList) Set(slot int, e Entry) {
	l.nodes[slot].entry = e
}

// Entries returns the entries from the front to the back.
func (l *RecencyList) Entries() []Entry {
	entries := make([]Entry, 0, l.size)
	for s := l.head; s != nilSlot; s = l.nodes[s].next {
		entries = append(entries, l.nodes[s].entry)
	}

	return entries
}

func (l *RecencyList) linkFront(slot int) {
	n := &l.nodes[slot]
	n.prev = nilSlot
	n.next = l.head

	if l.head != nilSlot {
		l.nodes[l.head].prev = slot
	} else {
		l.tail = slot
	}

	l.head = slot
}

func (l *RecencyList) unlink(slot int) {
	n := &l.nodes[slot]

	if n.prev != nilSlot {
		l.nodes[n.prev].next = n.next
	} else {
		l.head = n.next
	}

	if n.next != nilSlot {
		l.nodes[n.next].prev = n.prev
	} else {
		l.tail = n.prev
	}

	n.prev = nilSlot
	n.next = nilSlot
}
