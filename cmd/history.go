package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List completed lesson attempts, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		recs, err := st.History().List(cmd.Context(), userFlag(cmd), limit)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("No completed lessons yet.")
			return nil
		}

		fmt.Printf("%-20s %-24s %9s %6s %6s\n", "COMPLETED", "LESSON", "ACCURACY", "XP", "LIVES")
		for _, r := range recs {
			fmt.Printf("%-20s %-24s %8.1f%% %6d %6d\n",
				r.CompletedAt.Local().Format("2006-01-02 15:04"),
				r.LessonID, r.Accuracy, r.XPEarned, r.LivesUsed)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 10, "Maximum number of attempts to list (0 = no limit)")
}
