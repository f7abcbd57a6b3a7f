// Package vm provides the models for address translations
package vm

import (
	"container/list"
	"errors"
	"fmt"
	"sync"
)

// PID identifies the task that owns an address space.
type PID string

// A Page is an entry in the page table, maintaining the information about how
// to translate a virtual page to a physical page.
type Page struct {
	PID          PID
	VirtualPage  uint64
	PhysicalPage uint64
	AccessCount  uint64
}

// ErrOutOfFrames is returned when a page table cannot back a new page.
var ErrOutOfFrames = errors.New("out of physical frames")

// A PageTable resolves the virtual pages of every task. It is what a TLB
// miss falls back on.
type PageTable interface {
	// Walk returns the page that backs the virtual page, allocating a
	// physical frame on first touch.
	Walk(pid PID, virtualPage uint64) (Page, error)

	// Find returns the page without allocating.
	Find(pid PID, virtualPage uint64) (Page, bool)

	// Remove releases the page of the given virtual page, if any.
	Remove(pid PID, virtualPage uint64)

	// NumPages returns the number of pages currently mapped.
	NumPages() int
}

// NewPageTable creates a new PageTable that can map up to numFrames
// physical pages. A numFrames of 0 means no limit.
func NewPageTable(numFrames uint64) PageTable {
	return &pageTableImpl{
		numFrames: numFrames,
		tables:    make(map[PID]*processTable),
	}
}

// pageTableImpl is the default implementation of a Page Table. Physical
// frames are handed out in order and released frames are reused first.
type pageTableImpl struct {
	sync.Mutex
	numFrames  uint64
	nextFrame  uint64
	freeFrames []uint64
	numPages   int
	tables     map[PID]*processTable
}

func (pt *pageTableImpl) getTable(pid PID) *processTable {
	table, found := pt.tables[pid]
	if !found {
		table = &processTable{
			entries:      list.New(),
			entriesTable: make(map[uint64]*list.Element),
		}
		pt.tables[pid] = table
	}

	return table
}

func (pt *pageTableImpl) allocateFrame() (uint64, error) {
	if n := len(pt.freeFrames); n > 0 {
		frame := pt.freeFrames[n-1]
		pt.freeFrames = pt.freeFrames[:n-1]

		return frame, nil
	}

	if pt.numFrames > 0 && pt.nextFrame >= pt.numFrames {
		return 0, ErrOutOfFrames
	}

	frame := pt.nextFrame
	pt.nextFrame++

	return frame, nil
}

// Walk finds or creates the page of the virtual page.
func (pt *pageTableImpl) Walk(pid PID, virtualPage uint64) (Page, error) {
	pt.Lock()
	defer pt.Unlock()

	table := pt.getTable(pid)

	page, found := table.touch(virtualPage)
	if found {
		return page, nil
	}

	frame, err := pt.allocateFrame()
	if err != nil {
		return Page{}, fmt.Errorf("mapping page %#x of %s: %w",
			virtualPage, pid, err)
	}

	page = Page{
		PID:          pid,
		VirtualPage:  virtualPage,
		PhysicalPage: frame,
		AccessCount:  1,
	}
	table.insert(page)
	pt.numPages++

	return page, nil
}

// Find returns the page that contains the given virtual page. The bool
// return value indicates if the page is found or not.
func (pt *pageTableImpl) Find(pid PID, virtualPage uint64) (Page, bool) {
	pt.Lock()
	defer pt.Unlock()

	return pt.getTable(pid).find(virtualPage)
}

// Remove removes the entry in the page table that maps the virtual page.
func (pt *pageTableImpl) Remove(pid PID, virtualPage uint64) {
	pt.Lock()
	defer pt.Unlock()

	page, found := pt.getTable(pid).remove(virtualPage)
	if !found {
		return
	}

	pt.freeFrames = append(pt.freeFrames, page.PhysicalPage)
	pt.numPages--
}

// NumPages returns the number of mapped pages across all tasks.
func (pt *pageTableImpl) NumPages() int {
	pt.Lock()
	defer pt.Unlock()

	return pt.numPages
}

// processTable holds the pages of one task in mapping order.
type processTable struct {
	entries      *list.List
	entriesTable map[uint64]*list.Element
}

func (t *processTable) insert(page Page) {
	elem := t.entries.PushBack(page)
	t.entriesTable[page.VirtualPage] = elem
}

func (t *processTable) remove(virtualPage uint64) (Page, bool) {
	elem, found := t.entriesTable[virtualPage]
	if !found {
		return Page{}, false
	}

	t.entries.Remove(elem)
	delete(t.entriesTable, virtualPage)

	return elem.Value.(Page), true
}

func (t *processTable) touch(virtualPage uint64) (Page, bool) {
	elem, found := t.entriesTable[virtualPage]
	if !found {
		return Page{}, false
	}

	page := elem.Value.(Page)
	page.AccessCount++
	elem.Value = page

	return page, true
}

func (t *processTable) find(virtualPage uint64) (Page, bool) {
	elem, found := t.entriesTable[virtualPage]
	if found {
		return elem.Value.(Page), true
	}

	return Page{}, false
}
