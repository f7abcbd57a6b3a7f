// Package tlb provides a fully associative translation lookaside buffer that
// caches virtual-to-physical page number translations with LRU replacement.
package tlb

import (
	"sync"

	"github.com/sarchlab/tlbsim/mem/vm/tlb/internal"
	"github.com/sarchlab/tlbsim/sim/hooking"
)

// Entry is a cached translation. Dirty is reserved for write tracking and is
// never set by the TLB itself.
type Entry = internal.Entry

// Hook positions triggered by the TLB. The hook item is always an Entry.
var (
	HookPosHit           = &hooking.HookPos{Name: "TLBHit"}
	HookPosMiss          = &hooking.HookPos{Name: "TLBMiss"}
	HookPosInsert        = &hooking.HookPos{Name: "TLBInsert"}
	HookPosUpdate        = &hooking.HookPos{Name: "TLBUpdate"}
	HookPosEvict         = &hooking.HookPos{Name: "TLBEvict"}
	HookPosInvalidate    = &hooking.HookPos{Name: "TLBInvalidate"}
	HookPosInvalidateAll = &hooking.HookPos{Name: "TLBInvalidateAll"}
)

// Comp is a TLB shared by all the tasks of a simulation. All the methods are
// safe for concurrent use. Each call holds the TLB lock for its whole
// duration, so concurrent calls behave as if executed one after another.
//
// Hooks are invoked after the lock is released.
type Comp struct {
	hooking.HookableBase

	name     string
	capacity int

	lock    sync.Mutex
	entries *internal.RecencyList
	index   map[uint64]int
	hits    uint64
	misses  uint64
}

type hookEvent struct {
	pos   *hooking.HookPos
	entry Entry
}

// Name returns the name of the TLB.
func (c *Comp) Name() string {
	return c.name
}

// Capacity returns the maximum number of entries the TLB can hold.
func (c *Comp) Capacity() int {
	return c.capacity
}

// Lookup searches the translation of a virtual page. A hit promotes the entry
// to the most recently used position.
func (c *Comp) Lookup(virtualPage uint64) (physicalPage uint64, found bool) {
	entry, found := c.lookup(virtualPage)
	if !found {
		c.fire(hookEvent{HookPosMiss, Entry{VirtualPage: virtualPage}})
		return 0, false
	}

	c.fire(hookEvent{HookPosHit, entry})

	return entry.PhysicalPage, true
}

func (c *Comp) lookup(virtualPage uint64) (Entry, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	slot, found := c.index[virtualPage]
	if !found {
		c.misses++
		return Entry{}, false
	}

	c.entries.MoveToFront(slot)
	c.hits++

	return c.entries.Get(slot), true
}

// Insert caches a translation as the most recently used entry. If the TLB is
// full, the least recently used entry is evicted first. Inserting a virtual
// page that is already cached replaces its physical page and promotes it
// without evicting anything.
func (c *Comp) Insert(virtualPage, physicalPage uint64) {
	c.fire(c.insert(virtualPage, physicalPage)...)
}

func (c *Comp) insert(virtualPage, physicalPage uint64) []hookEvent {
	c.lock.Lock()
	defer c.lock.Unlock()

	entry := Entry{VirtualPage: virtualPage, PhysicalPage: physicalPage}

	if slot, found := c.index[virtualPage]; found {
		c.entries.Set(slot, entry)
		c.entries.MoveToFront(slot)

		return []hookEvent{{HookPosUpdate, entry}}
	}

	events := make([]hookEvent, 0, 2)

	if c.entries.Len() >= c.capacity {
		victim := c.evict()
		events = append(events, hookEvent{HookPosEvict, victim})
	}

	c.index[virtualPage] = c.entries.PushFront(entry)

	return append(events, hookEvent{HookPosInsert, entry})
}

func (c *Comp) evict() Entry {
	slot, ok := c.entries.Back()
	if !ok {
		panic("nothing to evict")
	}

	victim := c.entries.Remove(slot)
	delete(c.index, victim.VirtualPage)

	return victim
}

// Invalidate removes the translation of a virtual page. It does nothing if
// the page is not cached.
func (c *Comp) Invalidate(virtualPage uint64) {
	entry, found := c.invalidate(virtualPage)
	if !found {
		return
	}

	c.fire(hookEvent{HookPosInvalidate, entry})
}

func (c *Comp) invalidate(virtualPage uint64) (Entry, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	slot, found := c.index[virtualPage]
	if !found {
		return Entry{}, false
	}

	delete(c.index, virtualPage)

	return c.entries.Remove(slot), true
}

// InvalidateAll removes all the translations. Statistics are kept.
func (c *Comp) InvalidateAll() {
	c.invalidateAll()
	c.fire(hookEvent{HookPosInvalidateAll, Entry{}})
}

func (c *Comp) invalidateAll() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.entries.Reset()
	clear(c.index)
}

// Len returns the number of cached translations.
func (c *Comp) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.entries.Len()
}

// Entries returns a copy of the cached translations, from the most recently
// used to the least recently used.
func (c *Comp) Entries() []Entry {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.entries.Entries()
}

// Stats returns the hit and miss counters.
func (c *Comp) Stats() Stats {
	c.lock.Lock()
	defer c.lock.Unlock()

	return Stats{Hits: c.hits, Misses: c.misses}
}

// A Snapshot is the state of a TLB at a single moment.
type Snapshot struct {
	Name     string
	Capacity int
	Stats    Stats
	Entries  []Entry
}

// Snapshot copies the entries and the counters under one lock acquisition,
// so the returned values are consistent with each other.
func (c *Comp) Snapshot() Snapshot {
	c.lock.Lock()
	defer c.lock.Unlock()

	return Snapshot{
		Name:     c.name,
		Capacity: c.capacity,
		Stats:    Stats{Hits: c.hits, Misses: c.misses},
		Entries:  c.entries.Entries(),
	}
}

func (c *Comp) fire(events ...hookEvent) {
	if c.NumHooks() == 0 {
		return
	}

	for _, e := range events {
		c.InvokeHook(hooking.HookCtx{
			Domain: c,
			Pos:    e.pos,
			Item:   e.entry,
		})
	}
}
