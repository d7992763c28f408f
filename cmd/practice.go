package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lexivo/lexivo/internal/catalog"
	"github.com/lexivo/lexivo/internal/gamify"
	"github.com/lexivo/lexivo/internal/review"
	"github.com/lexivo/lexivo/internal/session"
)

var practiceCmd = &cobra.Command{
	Use:   "practice <lesson-id>",
	Short: "Work through a lesson at the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		contentPath, _ := cmd.Flags().GetString("content")
		if contentPath == "" {
			return fmt.Errorf("--content is required")
		}
		content, err := catalog.LoadFile(contentPath)
		if err != nil {
			return err
		}

		st, cfg, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		sched, err := review.NewEngine(cfg.SchedulerParams())
		if err != nil {
			return err
		}

		eng, err := session.NewEngine(session.Config{
			Content:   content,
			Profiles:  st.Profiles(),
			Progress:  st.Progress(),
			History:   st.History(),
			Items:     st.ReviewItems(),
			Scheduler: sched,
			Rewards:   gamify.NewService(st.History()),
			Logger:    newLogger(cfg),
			MinLives:  cfg.Session.MinLives,
		})
		if err != nil {
			return err
		}

		return runPractice(cmd, eng, content, args[0])
	},
}

func init() {
	practiceCmd.Flags().String("content", "", "Path to the lesson catalog JSON file")
	rootCmd.AddCommand(practiceCmd)
}

func runPractice(cmd *cobra.Command, eng *session.Engine, content *catalog.Catalog, lessonID string) error {
	ctx := cmd.Context()
	user := userFlag(cmd)

	s, dec, err := eng.Start(ctx, user, lessonID)
	if err != nil {
		return err
	}
	if !dec.Allowed {
		switch dec.Reason {
		case session.ReasonInsufficientResource:
			return fmt.Errorf("out of lives; run `lexivo lives refill` first")
		default:
			return fmt.Errorf("lesson %s is locked; complete the one before it", lessonID)
		}
	}

	lesson, err := content.Lesson(lessonID)
	if err != nil {
		return err
	}
	fmt.Printf("— %s —\n\n", lesson.Title)

	// A lesson with no exercises completes during Start.
	if s.Status() == session.StatusCompleted {
		printResult(s.Result())
		return nil
	}

	in := bufio.NewScanner(os.Stdin)
	for _, ex := range lesson.Exercises {
		fmt.Println(ex.Prompt)
		fmt.Print("> ")
		start := time.Now()
		if !in.Scan() {
			return eng.Abandon(ctx, s.SessionID)
		}
		answer := strings.TrimSpace(in.Text())
		elapsed := time.Since(start).Milliseconds()

		res, err := eng.CompleteExercise(ctx, s.SessionID, ex.ID, answer, elapsed, 0)
		if err != nil {
			return err
		}

		switch {
		case res.OutOfLives:
			fmt.Println("\nOut of lives!")
			return eng.Exhaust(ctx, s.SessionID)
		case res.IsCorrect:
			fmt.Println("Correct!")
		default:
			fmt.Printf("Not quite — the answer was %q.\n", res.CorrectAnswer)
		}
		fmt.Println()

		if res.LessonCompleted {
			printResult(res.Result)
			return nil
		}
	}
	return nil
}

func printResult(r *session.Result) {
	fmt.Println("Lesson complete!")
	fmt.Printf("  Accuracy:  %.1f%%\n", r.TotalAccuracy)
	fmt.Printf("  XP earned: %d\n", r.XPEarned)
	if r.CoinsEarned > 0 || r.GemsEarned > 0 {
		fmt.Printf("  Rewards:   %d coins, %d gems\n", r.CoinsEarned, r.GemsEarned)
	}
	for _, a := range r.AchievementsUnlocked {
		fmt.Printf("  Achievement unlocked: %s\n", a)
	}
	if r.LevelUp {
		fmt.Printf("  Level up! Now level %d\n", r.NewLevel)
	}
	if r.NextLessonID != "" {
		fmt.Printf("  Next up:   %s\n", r.NextLessonID)
	}
}
