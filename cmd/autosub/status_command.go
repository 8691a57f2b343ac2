package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"autosub/internal/jobs"
)

func newStatusCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status [job-id]",
		Short: "Show jobs and the outputs they have on disk",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := jobs.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				job, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJobDetail(cmd, job)
			}

			listed, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(listed))
			for _, job := range listed {
				artifacts := jobs.ArtifactsOnDisk(job)
				rows = append(rows, []string{
					job.ID,
					string(job.Status),
					job.Stage,
					job.Source,
					strconv.Itoa(countFiles(artifacts)),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Status", "Stage", "Source", "Files"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}

func printJobDetail(cmd *cobra.Command, job *jobs.Job) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Job:    %s\n", job.ID)
	fmt.Fprintf(out, "Source: %s\n", job.Source)
	fmt.Fprintf(out, "Status: %s", job.Status)
	if job.Stage != "" {
		fmt.Fprintf(out, " (%s)", job.Stage)
	}
	fmt.Fprintln(out)
	if job.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:  %s\n", job.ErrorMessage)
	}

	artifacts := jobs.ArtifactsOnDisk(job)
	if len(artifacts) == 0 {
		return nil
	}
	labels := make([]string, 0, len(artifacts))
	for label := range artifacts {
		if label != jobs.DurationLabel {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)

	rows := make([][]string, 0, len(artifacts))
	if duration, ok := artifacts[jobs.DurationLabel]; ok {
		rows = append(rows, []string{jobs.DurationLabel, duration})
	}
	for _, label := range labels {
		rows = append(rows, []string{label, artifacts[label]})
	}
	fmt.Fprintln(out, renderTable([]string{"Output", "Path"}, rows, []columnAlignment{alignLeft, alignLeft}))
	return nil
}

func countFiles(artifacts map[string]string) int {
	count := 0
	for label := range artifacts {
		if label != jobs.DurationLabel {
			count++
		}
	}
	return count
}
