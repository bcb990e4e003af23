package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"semsearch/internal/tui"
)

var searchTopK int

var searchCmd = &cobra.Command{
	Use:   "search file1.txt [file2.txt ...]",
	Short: "Interactive semantic search over the given documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		documents, err := loadDocuments(args)
		if err != nil {
			return err
		}

		svc, _, err := buildService()
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := svc.LoadModel(context.Background()); err != nil {
			return fmt.Errorf("model load failed: %w", err)
		}

		m := tui.New(svc, documents, searchTopK)
		if _, err := tea.NewProgram(m).Run(); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchTopK, "top-k", 10, "number of results to return per query")
	rootCmd.AddCommand(searchCmd)
}
