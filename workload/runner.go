package workload

import (
	"context"
	"sync"

	"github.com/sarchlab/tlbsim/mem/trace"
	"github.com/sarchlab/tlbsim/mem/vm"
	"github.com/sarchlab/tlbsim/mem/vm/tlb"
	"github.com/sarchlab/tlbsim/monitoring"
)

// A ProgressMonitor displays the progress of the running tasks.
type ProgressMonitor interface {
	CreateProgressBar(name string, total uint64) *monitoring.ProgressBar
	CompleteProgressBar(pb *monitoring.ProgressBar)
}

// A Runner replays a trace with one goroutine per task. All the tasks share
// the same TLB and page table.
type Runner struct {
	tlb       *tlb.Comp
	pageTable vm.PageTable
	space     vm.AddressSpace
	monitor   ProgressMonitor
}

// NewRunner creates a Runner.
func NewRunner(
	cache *tlb.Comp,
	pageTable vm.PageTable,
	space vm.AddressSpace,
) *Runner {
	return &Runner{
		tlb:       cache,
		pageTable: pageTable,
		space:     space,
	}
}

// WithMonitor makes the runner report the progress of every task.
func (r *Runner) WithMonitor(m ProgressMonitor) *Runner {
	r.monitor = m
	return r
}

// Run replays the trace and returns the statistics of each task, in the order
// the tasks appear in the trace. The first error stops all the tasks.
func (r *Runner) Run(ctx context.Context, tr *trace.Trace) ([]TaskStats, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tasks := make([]*Task, len(tr.Tasks))
	for i, tt := range tr.Tasks {
		tasks[i] = NewTask(tt.ID, r.tlb, r.pageTable, r.space)
	}

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	for i, tt := range tr.Tasks {
		wg.Add(1)

		go func(task *Task, addresses []uint64) {
			defer wg.Done()

			err := r.runTask(ctx, task, addresses)
			if err != nil {
				errOnce.Do(func() {
					firstErr = err
					cancel()
				})
			}
		}(tasks[i], tt.Addresses)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	stats := make([]TaskStats, len(tasks))
	for i, t := range tasks {
		stats[i] = t.Stats()
	}

	return stats, nil
}

func (r *Runner) runTask(
	ctx context.Context,
	task *Task,
	addresses []uint64,
) error {
	var bar *monitoring.ProgressBar
	if r.monitor != nil {
		bar = r.monitor.CreateProgressBar(task.ID(), uint64(len(addresses)))
		defer r.monitor.CompleteProgressBar(bar)
	}

	for _, addr := range addresses {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, err := task.Access(addr)
		if err != nil {
			return err
		}

		if bar != nil {
			bar.IncrementFinished(1)
		}
	}

	return nil
}
