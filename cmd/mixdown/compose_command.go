package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mixdown/internal/compositor"
	"mixdown/internal/ledger"
	"mixdown/internal/manifest"
)

func newComposeCommand(ctx *commandContext) *cobra.Command {
	var manifests []string
	var videos []string
	var outputs []string

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Composite audio for one or more rendered shards",
		Long: `Reads each shard manifest, synthesizes and mixes its audio, and merges
the result into the matching rendered video. Repeating --manifest, --video,
and --output composites several shards concurrently.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(manifests) == 0 {
				return fmt.Errorf("at least one --manifest is required")
			}
			if len(videos) != len(manifests) || len(outputs) != len(manifests) {
				return fmt.Errorf("--manifest, --video, and --output must be repeated the same number of times (got %d/%d/%d)",
					len(manifests), len(videos), len(outputs))
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			var store *ledger.Store
			if cfg.Ledger.Enabled {
				store, err = ledger.Open(cfg.LedgerPath())
				if err != nil {
					return fmt.Errorf("open ledger: %w", err)
				}
				defer store.Close()
			}

			pipeline := compositor.New(compositor.Options{
				Logger:      logger,
				WorkDir:     cfg.Paths.WorkDir,
				FFmpeg:      cfg.FFmpegBinary(),
				FFprobe:     cfg.FFprobeBinary(),
				Timeout:     ctx.engineTimeout(),
				Concurrency: cfg.Compositor.Concurrency,
				Ledger:      store,
			})
			defer pipeline.Close()

			g, gctx := errgroup.WithContext(cmd.Context())
			results := make([]compositor.Result, len(manifests))
			for i := range manifests {
				i := i
				g.Go(func() error {
					m, err := manifest.Load(manifests[i])
					if err != nil {
						return fmt.Errorf("load manifest %s: %w", manifests[i], err)
					}
					result, err := pipeline.Compose(gctx, compositor.Request{
						Manifest:     m,
						ManifestPath: manifests[i],
						VideoPath:    videos[i],
						OutputPath:   outputs[i],
					})
					if err != nil {
						return fmt.Errorf("shard %d-%d: %w", m.Shard.StartFrame, m.Shard.EndFrame, err)
					}
					results[i] = result
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			rows := make([][]string, 0, len(results))
			for _, result := range results {
				rows = append(rows, []string{
					shortID(result.RunID),
					fmt.Sprintf("%d", len(result.Segments)),
					fmt.Sprintf("%d", result.Skipped),
					result.OutputPath,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Run", "Segments", "Skipped", "Output"}, rows, 2, 3))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&manifests, "manifest", "m", nil, "Shard manifest JSON (repeatable)")
	cmd.Flags().StringArrayVarP(&videos, "video", "v", nil, "Rendered shard video (repeatable)")
	cmd.Flags().StringArrayVarP(&outputs, "output", "o", nil, "Destination container (repeatable)")
	return cmd
}
