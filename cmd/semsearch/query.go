package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"semsearch/internal/lexical"
	"semsearch/internal/service"
)

var queryTopK int

var queryCmd = &cobra.Command{
	Use:   "query \"question\" file1.txt [file2.txt ...]",
	Short: "One-shot ranked similarity search",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := args[0]
		documents, err := loadDocuments(args[1:])
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

		results, err := svc.SimilaritySearch(context.Background(), question, documents, queryTopK)
		if err != nil {
			var ce *service.ComputationError
			if !errors.As(err, &ce) {
				return err
			}
			// Degenerate query for this model; rank lexically instead.
			fmt.Println("semantic scoring unavailable, falling back to lexical matching")
			results = lexical.Rank(question, documents, queryTopK)
		}

		if len(results) == 0 {
			fmt.Println("no results")
			return nil
		}
		for rank, r := range results {
			fmt.Printf("%2d. [%.4f] (doc %d) %s\n", rank+1, r.Score, r.Index, r.Document)
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().IntVar(&queryTopK, "top-k", 5, "number of results to return")
	rootCmd.AddCommand(queryCmd)
}
