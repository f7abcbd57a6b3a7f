package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/sarchlab/tlbsim/datarecording"
	"github.com/sarchlab/tlbsim/mem/vm/tlb"
	"github.com/sarchlab/tlbsim/workload"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <record.sqlite3>",
		Short: "Print the statistics stored by `run --record`.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := datarecording.NewReader(args[0])
			if err != nil {
				return err
			}
			defer reader.Close()

			return report(cmd.Context(), reader, cmd.OutOrStdout())
		},
	}
}

func report(
	ctx context.Context,
	reader datarecording.DataReader,
	w io.Writer,
) error {
	reader.MapTable(workload.TaskStatsTableName, workload.TaskStatsRow{})
	reader.MapTable(tlb.EventTableName, tlb.EventRow{})

	rows, _, err := reader.Query(ctx, workload.TaskStatsTableName,
		datarecording.QueryParams{OrderBy: "Task"})
	if err != nil {
		return err
	}

	for _, r := range rows {
		row := r.(*workload.TaskStatsRow)

		_, err = fmt.Fprintf(w,
			"Task %s: Accesses: %d, Page Walks: %d, "+
				"TLB Hits: %d, TLB Misses: %d, TLB Hit Rate: %.1f%%\n",
			row.Task, row.Accesses, row.PageWalks,
			row.TLBHits, row.TLBMisses, row.HitRate)
		if err != nil {
			return err
		}
	}

	_, numEvents, err := reader.Query(ctx, tlb.EventTableName,
		datarecording.QueryParams{Limit: 1})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "TLB events: %d\n", numEvents)

	return err
}
