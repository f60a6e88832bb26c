package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show data availability and the active campaign selection",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), "status")
		if err != nil {
			return err
		}
		defer env.Close()

		view := env.Orch.View()

		fmt.Fprintf(os.Stdout, "Data status:  %s\n", view.Status)
		if view.Selection.Account != nil {
			fmt.Fprintf(os.Stdout, "Account:      %s (%s)\n", view.Selection.Account.Name, view.Selection.Account.ID)
		} else {
			fmt.Fprintln(os.Stdout, "Account:      none")
		}
		if view.Selection.Campaign != nil {
			fmt.Fprintf(os.Stdout, "Campaign:     %s (%s)\n", view.Selection.Campaign.Name, view.Selection.Campaign.ID)
		} else {
			fmt.Fprintln(os.Stdout, "Campaign:     none")
		}
		fmt.Fprintf(os.Stdout, "Computed at:  %s\n", view.ComputedAt.Format("2006-01-02 15:04:05 MST"))
		fmt.Fprintf(os.Stdout, "Stale:        %t\n", env.Orch.Stale())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
