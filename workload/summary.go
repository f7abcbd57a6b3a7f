package workload

import (
	"fmt"
	"io"

	"github.com/sarchlab/tlbsim/datarecording"
	"github.com/sarchlab/tlbsim/mem/vm/tlb"
)

// TaskStatsTableName is the table that RecordStats writes into.
const TaskStatsTableName = "task_stats"

// TaskStatsRow is a row of the task statistics table.
type TaskStatsRow struct {
	Task      string
	Accesses  uint64
	PageWalks uint64
	TLBHits   uint64
	TLBMisses uint64
	HitRate   float64
}

// WriteSummary prints the statistics of every task followed by the
// statistics of the shared TLB.
func WriteSummary(w io.Writer, stats []TaskStats, c *tlb.Comp) error {
	_, err := fmt.Fprint(w, "\n=== Memory Access Summary ===\n")
	if err != nil {
		return err
	}

	for _, s := range stats {
		_, err = fmt.Fprintf(w,
			"Task %s:\n  Accesses: %d, Page Walks: %d\n  %s\n",
			s.Task, s.Accesses, s.PageWalks, s.TLB)
		if err != nil {
			return err
		}
	}

	snapshot := c.Snapshot()
	_, err = fmt.Fprintf(w, "%s (%d/%d entries):\n%s",
		snapshot.Name, len(snapshot.Entries), snapshot.Capacity,
		snapshot.Stats.Report())

	return err
}

// RecordStats stores the statistics of every task in the recorder.
func RecordStats(recorder datarecording.DataRecorder, stats []TaskStats) {
	recorder.CreateTable(TaskStatsTableName, TaskStatsRow{})

	for _, s := range stats {
		recorder.InsertData(TaskStatsTableName, TaskStatsRow{
			Task:      s.Task,
			Accesses:  s.Accesses,
			PageWalks: s.PageWalks,
			TLBHits:   s.TLB.Hits,
			TLBMisses: s.TLB.Misses,
			HitRate:   s.TLB.HitRate(),
		})
	}

	recorder.Flush()
}
