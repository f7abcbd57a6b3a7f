package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/tlbsim/config"
	"github.com/sarchlab/tlbsim/datarecording"
	"github.com/sarchlab/tlbsim/mem/trace"
	"github.com/sarchlab/tlbsim/mem/vm"
	"github.com/sarchlab/tlbsim/mem/vm/tlb"
	"github.com/sarchlab/tlbsim/monitoring"
	"github.com/sarchlab/tlbsim/workload"
	"github.com/spf13/cobra"
)

// tlbName is the name of the TLB shared by all the tasks.
const tlbName = "TLB"

type runOptions struct {
	envFiles    []string
	capacity    int
	pageSize    string
	numFrames   uint64
	record      string
	monitorPort int
	openBrowser bool
	lenient     bool
	verbose     bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	runCmd := &cobra.Command{
		Use:   "run [trace-file]",
		Short: "Replay a trace through the shared TLB and print the statistics.",
		Long: "`run [trace-file]` replays the trace, trace.txt by default. " +
			"Settings are read from the .env files, then the TLBSIM_* " +
			"environment variables, then the flags.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.config(cmd, args)
			if err != nil {
				return err
			}

			return runSimulation(
				cmd.Context(), c, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := runCmd.Flags()
	flags.StringSliceVar(&opts.envFiles, "env-file", []string{".env"},
		"the .env files to read the settings from")
	flags.IntVar(&opts.capacity, "capacity", tlb.DefaultCapacity,
		"the number of TLB entries")
	flags.StringVar(&opts.pageSize, "page-size", config.DefaultPageSize,
		"the page size, such as 4KB")
	flags.Uint64Var(&opts.numFrames, "num-frames", 0,
		"the number of physical frames, 0 for unlimited")
	flags.StringVar(&opts.record, "record", "",
		"record the TLB events and the task statistics into "+
			"<record>.sqlite3")
	flags.IntVar(&opts.monitorPort, "monitor-port", 0,
		"serve the monitoring web page on this port")
	flags.BoolVar(&opts.openBrowser, "open-browser", false,
		"open the monitoring web page in a browser")
	flags.BoolVar(&opts.lenient, "lenient", false,
		"skip malformed trace lines instead of failing")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false,
		"print every TLB event to stderr")

	return runCmd
}

// config merges the flags that are explicitly set into the configuration
// loaded from the environment.
func (o *runOptions) config(
	cmd *cobra.Command,
	args []string,
) (config.Config, error) {
	c, err := config.Load(o.envFiles...)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()

	if flags.Changed("capacity") {
		c.TLBCapacity = o.capacity
	}

	if flags.Changed("page-size") {
		c.PageSize, err = trace.ParseSize(o.pageSize)
		if err != nil {
			return config.Config{}, fmt.Errorf("--page-size: %w", err)
		}
	}

	if flags.Changed("num-frames") {
		c.NumFrames = o.numFrames
	}

	if flags.Changed("record") {
		c.RecordPath = o.record
	}

	if flags.Changed("monitor-port") {
		c.MonitorPort = o.monitorPort
	}

	if flags.Changed("open-browser") {
		c.OpenBrowser = o.openBrowser
	}

	if flags.Changed("lenient") {
		c.Lenient = o.lenient
	}

	if flags.Changed("verbose") {
		c.Verbose = o.verbose
	}

	if len(args) == 1 {
		c.TracePath = args[0]
	}

	return c, c.Validate()
}

func runSimulation(
	ctx context.Context,
	c config.Config,
	stdout, stderr io.Writer,
) error {
	reader := trace.NewReader(c.PageSize)
	reader.Lenient = c.Lenient
	reader.Warn = stderr

	tr, err := reader.ReadFile(c.TracePath)
	if err != nil {
		return err
	}

	space, err := vm.NewAddressSpace(c.PageSize)
	if err != nil {
		return err
	}

	cache := tlb.MakeBuilder().WithCapacity(c.TLBCapacity).Build(tlbName)
	if c.Verbose {
		cache.AcceptHook(tlb.NewTracer(stderr))
	}

	runner := workload.NewRunner(cache, vm.NewPageTable(c.NumFrames), space)

	var recorder datarecording.DataRecorder
	if c.RecordPath != "" {
		recorder, err = newRecorder(c.RecordPath)
		if err != nil {
			return err
		}
		defer recorder.Close()

		cache.AcceptHook(tlb.NewEventRecorder(recorder))
	}

	if c.MonitorPort != 0 || c.OpenBrowser {
		monitor, err := startMonitor(c, cache, stderr)
		if err != nil {
			return err
		}
		defer shutdownMonitor(monitor)

		runner.WithMonitor(monitor)
	}

	fmt.Fprintf(stderr, "Replaying %d page accesses of %d tasks from %s\n",
		tr.NumAccesses(), len(tr.Tasks), c.TracePath)

	stats, err := runner.Run(ctx, tr)
	if err != nil {
		return err
	}

	if recorder != nil {
		workload.RecordStats(recorder, stats)
	}

	return workload.WriteSummary(stdout, stats, cache)
}

func newRecorder(path string) (datarecording.DataRecorder, error) {
	filename := path + ".sqlite3"

	_, err := os.Stat(filename)
	if err == nil {
		return nil, fmt.Errorf("record file %s already exists", filename)
	}

	return datarecording.New(path), nil
}

func startMonitor(
	c config.Config,
	cache *tlb.Comp,
	stderr io.Writer,
) (*monitoring.Monitor, error) {
	monitor := monitoring.NewMonitor()
	if c.MonitorPort != 0 {
		monitor.WithPortNumber(c.MonitorPort)
	}

	monitor.RegisterTLB(cache)

	_, err := monitor.StartServer()
	if err != nil {
		return nil, err
	}

	if c.OpenBrowser {
		err = monitor.OpenInBrowser()
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open the browser: %v\n", err)
		}
	}

	return monitor, nil
}

func shutdownMonitor(monitor *monitoring.Monitor) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = monitor.Shutdown(ctx)
}
