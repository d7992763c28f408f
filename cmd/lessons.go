package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexivo/lexivo/internal/catalog"
)

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List lessons in unlock order with their status",
	RunE: func(cmd *cobra.Command, args []string) error {
		contentPath, _ := cmd.Flags().GetString("content")
		if contentPath == "" {
			return fmt.Errorf("--content is required")
		}
		content, err := catalog.LoadFile(contentPath)
		if err != nil {
			return err
		}

		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		completed, err := st.Progress().CompletedLessons(cmd.Context(), userFlag(cmd))
		if err != nil {
			return err
		}

		fmt.Printf("%-24s %-28s %s\n", "LESSON", "TITLE", "STATUS")
		for _, id := range content.Lessons() {
			lesson, err := content.Lesson(id)
			if err != nil {
				return err
			}
			unlocked, err := content.Unlocked(id, completed)
			if err != nil {
				return err
			}

			status := "locked"
			switch {
			case completed[id]:
				status = "completed"
			case unlocked:
				status = "unlocked"
			}
			fmt.Printf("%-24s %-28s %s\n", id, lesson.Title, status)
		}
		return nil
	},
}

func init() {
	lessonsCmd.Flags().String("content", "", "Path to the lesson catalog JSON file")
	rootCmd.AddCommand(lessonsCmd)
}
