package main

import (
	"fmt"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"autosub/internal/jobs"
	"autosub/internal/pipeline"
)

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		audioFlag      string
		audioTrackFlag int
		sourceFlag     string
		targetsFlag    []string
		noAlignFlag    bool
		modeFlag       string
		deviceFlag     string
	)

	cmd := &cobra.Command{
		Use:   "run <video>",
		Short: "Run the subtitle pipeline on one video and wait for it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			req := pipeline.Request{
				Video:           args[0],
				Audio:           audioFlag,
				AudioTrack:      audioTrackFlag,
				SourceLanguage:  sourceFlag,
				TargetLanguages: targetsFlag,
				NoAlign:         noAlignFlag,
				Mode:            modeFlag,
				Device:          deviceFlag,
			}
			if err := req.Validate(); err != nil {
				return err
			}

			store, err := jobs.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			orchestrator, err := buildOrchestrator(cfg, store, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			job, err := store.Create(ctx, req.Video, req.SourceLanguage, req.TargetLanguages)
			if err != nil {
				return err
			}
			if err := orchestrator.Run(ctx, job, req); err != nil {
				return err
			}

			labels := make([]string, 0, len(job.Manifest))
			for label := range job.Manifest {
				labels = append(labels, label)
			}
			sort.Strings(labels)
			rows := make([][]string, 0, len(labels))
			for _, label := range labels {
				rows = append(rows, []string{label, job.Manifest[label]})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Output", "Path"}, rows, []columnAlignment{alignLeft, alignLeft}))
			return nil
		},
	}

	cmd.Flags().StringVar(&audioFlag, "audio", "", "Pre-extracted audio file, skips extraction")
	cmd.Flags().IntVar(&audioTrackFlag, "audio-track", -1, "Audio stream index to transcribe, container default when negative")
	cmd.Flags().StringVar(&sourceFlag, "source-language", "", "Source language hint for transcription")
	cmd.Flags().BoolVar(&noAlignFlag, "no-align", false, "Skip word-level timing alignment")
	cmd.Flags().StringSliceVarP(&targetsFlag, "target", "t", nil, "Target language to translate into (repeatable)")
	cmd.Flags().StringVar(&modeFlag, "mode", "", "Publish mode: hard, soft, or both")
	cmd.Flags().StringVar(&deviceFlag, "device", "", "Encode device: auto, cpu, cuda, or videotoolbox")

	return cmd
}
