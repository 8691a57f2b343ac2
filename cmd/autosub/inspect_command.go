package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"autosub/internal/language"
	"autosub/internal/media/ffprobe"
)

func newInspectCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "inspect <video>",
		Short: "Show the streams and metadata of a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			result, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary, args[0])
			if err != nil {
				return err
			}
			if jsonFlag {
				fmt.Fprintln(cmd.OutOrStdout(), string(result.RawJSON()))
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Duration: %.1fs\n", result.DurationSeconds())
			rows := make([][]string, 0, len(result.Streams))
			for _, stream := range result.Streams {
				lang := stream.Language()
				display := ""
				if lang != "" {
					display = language.DisplayName(lang)
				}
				detail := ""
				switch stream.CodecType {
				case "video":
					detail = fmt.Sprintf("%dx%d", stream.Width, stream.Height)
				case "audio":
					detail = fmt.Sprintf("%dch %s Hz", stream.Channels, stream.SampleRate)
				}
				rows = append(rows, []string{
					strconv.Itoa(stream.Index),
					stream.CodecType,
					stream.CodecName,
					lang,
					display,
					detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Type", "Codec", "Lang", "Language", "Detail"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the raw ffprobe JSON")
	return cmd
}
