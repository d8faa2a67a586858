package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/csvlens/internal/analysis"
	"github.com/KaramelBytes/csvlens/internal/chat"
	"github.com/KaramelBytes/csvlens/internal/parser"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <file> <question...>",
	Short: "Ask a question about a CSV file",
	Long:  `Answers questions about summaries, charts, trends, outliers, missing data and columns using the computed analysis.`,
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.TrimSpace(strings.Join(args[1:], " "))
		if question == "" {
			return fmt.Errorf("question is required")
		}
		res, err := parser.New(parser.WithLogger(logger.Named("parser"))).ParseFile(args[0], settings().MaxFileBytes())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), chat.Answer(question, analysis.Analyze(res.Dataset)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
