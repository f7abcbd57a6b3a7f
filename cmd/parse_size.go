package cmd

import (
	"fmt"

	"github.com/sarchlab/tlbsim/mem/trace"
	"github.com/spf13/cobra"
)

func newParseSizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse-size <size>",
		Short: "Print the number of bytes of a size such as 16KB.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := trace.ParseSize(args[0])
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), n)

			return err
		},
	}
}
