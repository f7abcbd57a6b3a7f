package tlb

import (
	"sync/atomic"

	"github.com/sarchlab/tlbsim/datarecording"
	"github.com/sarchlab/tlbsim/sim/hooking"
)

// EventTableName is the table that an EventRecorder writes into.
const EventTableName = "tlb_events"

// EventRow is a row of the TLB event table.
type EventRow struct {
	Seq          uint64
	TLB          string
	Event        string
	VirtualPage  uint64
	PhysicalPage uint64
}

// An EventRecorder is a hook that stores every TLB event in a DataRecorder.
type EventRecorder struct {
	recorder datarecording.DataRecorder
	seq      atomic.Uint64
}

// NewEventRecorder creates the event table in the recorder and returns the
// hook that fills it.
func NewEventRecorder(recorder datarecording.DataRecorder) *EventRecorder {
	recorder.CreateTable(EventTableName, EventRow{})

	return &EventRecorder{recorder: recorder}
}

// Func records the event.
func (r *EventRecorder) Func(ctx hooking.HookCtx) {
	entry, ok := ctx.Item.(Entry)
	if !ok {
		return
	}

	row := EventRow{
		Seq:          r.seq.Add(1),
		Event:        ctx.Pos.Name,
		VirtualPage:  entry.VirtualPage,
		PhysicalPage: entry.PhysicalPage,
	}

	if c, ok := ctx.Domain.(*Comp); ok {
		row.TLB = c.Name()
	}

	r.recorder.InsertData(EventTableName, row)
}
