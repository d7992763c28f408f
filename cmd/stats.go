package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show review scheduling statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		stats, err := st.ReviewItems().Stats(cmd.Context(), userFlag(cmd), time.Now())
		if err != nil {
			return err
		}

		fmt.Printf("Tracked items:    %d\n", stats.TotalItems)
		fmt.Printf("Due now:          %d\n", stats.DueNow)
		fmt.Printf("Average ease:     %.2f\n", stats.AverageEase)
		fmt.Printf("Average quality:  %.2f\n", stats.AverageQuality)
		return nil
	},
}
