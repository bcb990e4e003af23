package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var infoLoad bool

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print service and model information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := buildService()
		if err != nil {
			return err
		}
		defer svc.Close()

		if infoLoad {
			if err := svc.LoadModel(cmd.Context()); err != nil {
				return fmt.Errorf("model load failed: %w", err)
			}
		}

		data, err := json.MarshalIndent(svc.Info(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

func init() {
	infoCmd.Flags().BoolVar(&infoLoad, "load", false, "load the model before reporting, filling in its dimension")
	rootCmd.AddCommand(infoCmd)
}
