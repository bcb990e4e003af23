package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Load the model, run a probe encode and report health",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := buildService()
		if err != nil {
			return err
		}
		defer svc.Close()

		// A failed load is part of what health reports, not a command error.
		_ = svc.LoadModel(cmd.Context())

		status := svc.HealthCheck(cmd.Context())
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

		if !status.Healthy() {
			return fmt.Errorf("service unhealthy: %s", status.Reason)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
