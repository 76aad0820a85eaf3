package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gwi.com/induction-assistant/internal/core"
)

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer one question and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			reply, err := a.assistant.Ask(cmd.Context(), strings.Join(args, " "), "")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, reply.Text)
			tierColor(reply.Confidence).Fprintf(out, "\n[%s | %s | %s]\n", reply.MatchType, reply.Confidence, reply.Category)
			return nil
		},
	}
}

func tierColor(confidence core.Confidence) *color.Color {
	switch confidence {
	case core.ConfidenceHigh:
		return color.New(color.FgGreen)
	case core.ConfidenceMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}
