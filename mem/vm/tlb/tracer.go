package tlb

import (
	"fmt"
	"io"
	"sync"

	"github.com/sarchlab/tlbsim/sim/hooking"
)

// A Tracer writes one CSV line for every event that happens in a TLB.
type Tracer struct {
	lock   sync.Mutex
	writer io.Writer
	seq    uint64
}

// NewTracer produce a new Tracer, injecting the dependency of a writer.
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{writer: w}
}

// Func prints the tlb trace information.
func (t *Tracer) Func(ctx hooking.HookCtx) {
	entry, ok := ctx.Item.(Entry)
	if !ok {
		return
	}

	name := ""
	if c, ok := ctx.Domain.(*Comp); ok {
		name = c.Name()
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	t.seq++

	_, err := fmt.Fprintf(t.writer,
		"%d,%s,%s,%#x,%#x\n",
		t.seq,
		name,
		ctx.Pos.Name,
		entry.VirtualPage,
		entry.PhysicalPage)
	if err != nil {
		panic(err)
	}
}
