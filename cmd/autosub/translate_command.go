package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"autosub/internal/language"
	"autosub/internal/translate"
)

func newTranslateCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		sourceFlag string
		targetFlag string
	)

	cmd := &cobra.Command{
		Use:   "translate [text]",
		Short: "Translate a piece of text, reading stdin when no argument is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			source, err := language.Normalize(sourceFlag)
			if err != nil {
				return err
			}
			target, err := language.Normalize(targetFlag)
			if err != nil {
				return err
			}

			text := ""
			if len(args) == 1 {
				text = args[0]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = strings.TrimSpace(string(data))
			}

			resolver := translate.NewResolver(translate.NewExecLoader(cfg), cfg, logger)
			service := translate.NewService(resolver, logger)
			out, err := service.TranslateText(cmd.Context(), text, source, target)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sourceFlag, "source", "s", "", "Source language code")
	cmd.Flags().StringVarP(&targetFlag, "target", "t", "", "Target language code")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}
