package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mixdown/internal/manifest"
	"mixdown/internal/timeline"
)

func newSpansCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "spans <manifest.json>",
		Short:       "Reconstruct and display a manifest's asset timeline",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(args[0])
			if err != nil {
				return fmt.Errorf("load manifest %s: %w", args[0], err)
			}
			spans := timeline.Reconstruct(m.Frames)

			rows := make([][]string, 0, len(spans))
			for _, span := range spans {
				rows = append(rows, []string{
					span.Key,
					string(span.Kind),
					fmt.Sprintf("%d-%d", span.StartFrame, span.EndFrame),
					formatFloat(span.PlaybackRate),
					formatFloat(span.Volume),
					yesNo(span.Loop),
					formatSeconds(span.TrimLeftSeconds),
					formatDuration(span.DurationSeconds),
					strconv.Itoa(len(span.Envelope)),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Shard %d-%d at %s fps, %d frames, %d spans\n",
				m.Shard.StartFrame, m.Shard.EndFrame, formatFloat(m.FPS), len(m.Frames), len(spans))
			fmt.Fprintln(out, renderTable(
				[]string{"Key", "Kind", "Frames", "Rate", "Volume", "Loop", "Trim", "Duration", "Breakpoints"},
				rows, 4, 5, 7, 8, 9))
			return nil
		},
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func formatSeconds(v float64) string {
	return formatFloat(v) + "s"
}

func formatDuration(v float64) string {
	if timeline.IsUnbounded(v) {
		return "unbounded"
	}
	return formatSeconds(v)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
