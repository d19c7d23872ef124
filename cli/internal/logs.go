package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/gimsctl/internal/gims"
)

func newLogsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Read script execution logs",
	}
	cmd.AddCommand(newLogsStreamCommand())
	return cmd
}

func newLogsStreamCommand() *cobra.Command {
	var (
		timeout       time.Duration
		tail          int
		filter        string
		endMarkers    []string
		keepTimestamp bool
		maxSize       int
	)

	cmd := &cobra.Command{
		Use:   "stream SCRIPT_ID",
		Short: "Follow a script's execution log until an end marker or timeout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("script", args[0])
			if err != nil {
				return err
			}

			cli := getCliContext(cmd)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			path, err := cli.Client.LogStreamPath(ctx, id, tail)
			if err != nil {
				return err
			}

			reader := gims.NewLogReader(cli.Client, gims.StreamOptions{
				Timeout:       timeout,
				Tail:          tail,
				Filter:        filter,
				EndMarkers:    endMarkers,
				KeepTimestamp: keepTimestamp,
				MaxBytes:      maxSize,
			})
			reader.OnLine(func(line string) {
				fmt.Println(line)
			})

			cli.Logger.Debug("streaming script log", "script_id", id, "path", path)
			result, err := reader.Run(ctx, path)
			if err != nil {
				return err
			}

			switch result.State {
			case gims.StateCompletedTimeout:
				fmt.Fprintf(os.Stderr, "Warning: no end marker after %s, stopping\n", result.Elapsed.Round(time.Second))
			case gims.StateCompletedLimit:
				fmt.Fprintln(os.Stderr, "Warning: output size limit reached, stopping")
			case gims.StateCancelled:
				fmt.Fprintln(os.Stderr, "Interrupted")
			}
			cli.Logger.Debug("stream finished",
				"state", result.State.String(),
				"lines", len(result.Lines),
				"elapsed", result.Elapsed)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", gims.DefaultStreamTimeout, "Give up waiting for an end marker after this long")
	cmd.Flags().IntVar(&tail, "tail", 0, "Start with the last N backlog lines")
	cmd.Flags().StringVar(&filter, "filter", "", "Only print lines matching this case-insensitive pattern")
	cmd.Flags().StringArrayVar(&endMarkers, "end-markers", nil, "Stop when any of these substrings appears (default \"END SCRIPT\")")
	cmd.Flags().BoolVar(&keepTimestamp, "keep-timestamp", false, "Keep the timestamp/level prefix on lines")
	cmd.Flags().IntVar(&maxSize, "max-size", gims.DefaultMaxStreamSize, "Stop after collecting this many bytes of output")

	return cmd
}
