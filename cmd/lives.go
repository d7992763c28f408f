package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var livesCmd = &cobra.Command{
	Use:   "lives",
	Short: "Show the current lives balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		p, err := st.Profiles().Get(cmd.Context(), userFlag(cmd))
		if err != nil {
			return err
		}
		fmt.Printf("Lives: %d / %d\n", p.Lives, p.MaxLives)
		return nil
	},
}

var livesRefillCmd = &cobra.Command{
	Use:   "refill",
	Short: "Restore lives to the maximum",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		user := userFlag(cmd)
		if err := st.Profiles().Refill(cmd.Context(), user); err != nil {
			return err
		}
		p, err := st.Profiles().Get(cmd.Context(), user)
		if err != nil {
			return err
		}
		fmt.Printf("Refilled. Lives: %d / %d\n", p.Lives, p.MaxLives)
		return nil
	},
}

func init() {
	livesCmd.AddCommand(livesRefillCmd)
}
