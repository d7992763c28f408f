package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List review items that are due",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		now := time.Now()

		items, err := st.ReviewItems().Due(cmd.Context(), userFlag(cmd), now, limit)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("Nothing due. Nice work!")
			return nil
		}

		fmt.Printf("%-24s %-12s %-6s %8s %9s\n", "ITEM", "TYPE", "LANG", "OVERDUE", "EASE")
		for _, it := range items {
			fmt.Printf("%-24s %-12s %-6s %7.1fd %9.2f\n",
				it.ItemID, it.ItemType, it.LanguageCode, it.OverdueDays(now), it.EaseFactor)
		}
		return nil
	},
}

func init() {
	dueCmd.Flags().Int("limit", 20, "Maximum number of items to list (0 = no limit)")
}
