package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mixdown/internal/media/ffprobe"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <media-file>",
		Short: "Inspect a media file's streams",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			result, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(result.Streams))
			for _, stream := range result.Streams {
				sampleRate := ""
				channels := ""
				if stream.SampleRateHz() > 0 {
					sampleRate = strconv.Itoa(stream.SampleRateHz())
				}
				if stream.Channels > 0 {
					channels = strconv.Itoa(stream.Channels)
				}
				rows = append(rows, []string{
					strconv.Itoa(stream.Index),
					stream.CodecType,
					stream.CodecName,
					sampleRate,
					channels,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Stream", "Type", "Codec", "Sample Rate", "Channels"}, rows, 1, 4, 5))
			fmt.Fprintf(out, "Audio streams: %d\n", result.AudioStreamCount())
			return nil
		},
	}
}
