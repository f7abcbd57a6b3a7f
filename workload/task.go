// Package workload replays memory access traces through the TLB, one
// goroutine per task.
package workload

import (
	"fmt"

	"github.com/sarchlab/tlbsim/mem/vm"
	"github.com/sarchlab/tlbsim/mem/vm/tlb"
)

// SharedAddressSpace is the address space that all the tasks of a trace
// live in. The TLB is shared and keyed by virtual page only, so the tasks
// must agree on their translations.
const SharedAddressSpace vm.PID = "shared"

// TaskStats counts what happened while a task was running.
type TaskStats struct {
	Task      string
	Accesses  uint64
	PageWalks uint64
	TLB       tlb.Stats
}

// A Task issues memory accesses on behalf of one trace task. A Task is used
// by a single goroutine.
type Task struct {
	id        string
	asid      vm.PID
	tlb       *tlb.Comp
	pageTable vm.PageTable
	space     vm.AddressSpace
	stats     TaskStats
}

// NewTask creates a task that translates through the given TLB and page
// table.
func NewTask(
	id string,
	cache *tlb.Comp,
	pageTable vm.PageTable,
	space vm.AddressSpace,
) *Task {
	return &Task{
		id:        id,
		asid:      SharedAddressSpace,
		tlb:       cache,
		pageTable: pageTable,
		space:     space,
		stats:     TaskStats{Task: id},
	}
}

// ID returns the name of the task.
func (t *Task) ID() string {
	return t.id
}

// Stats returns the counters of the task.
func (t *Task) Stats() TaskStats {
	return t.stats
}

// Access translates a virtual address into a physical address. On a TLB miss
// the page table is walked and the translation is inserted into the TLB.
func (t *Task) Access(vAddr uint64) (pAddr uint64, err error) {
	vpn := t.space.PageNumber(vAddr)

	ppn, found := t.tlb.Lookup(vpn)
	if found {
		t.stats.TLB.Hits++
	} else {
		t.stats.TLB.Misses++

		page, err := t.pageTable.Walk(t.asid, vpn)
		if err != nil {
			return 0, fmt.Errorf("task %s accessing %#x: %w", t.id, vAddr, err)
		}

		t.stats.PageWalks++
		ppn = page.PhysicalPage
		t.tlb.Insert(vpn, ppn)
	}

	t.stats.Accesses++

	return t.space.Address(ppn, t.space.Offset(vAddr)), nil
}
