package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/mnemos/internal/review"
	"github.com/abhisek/mnemos/internal/screens/study"
	"github.com/abhisek/mnemos/internal/spacedrep"
)

var reviewCmd = &cobra.Command{
	Use:   "review <card> <rating>",
	Short: "Record a graded review (rating: again|hard|good|easy or 1-4)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rating, err := spacedrep.ParseRating(args[1])
		if err != nil {
			return err
		}
		took, _ := cmd.Flags().GetDuration("time")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		out, err := e.reviews.Submit(cmd.Context(), review.Submission{
			LearnerID:    e.learnerID,
			CardID:       args[0],
			Rating:       rating,
			ResponseTime: took,
		})
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		ev := out.Event
		fmt.Fprintf(w, "%s: %s → %s (%s)\n", ev.CardID, ev.StateBefore, ev.StateAfter, ev.Rating)
		fmt.Fprintf(w, "  difficulty     %.2f → %.2f\n", ev.DifficultyBefore, ev.DifficultyAfter)
		fmt.Fprintf(w, "  stability      %.2fd → %.2fd\n", ev.StabilityBefore, ev.StabilityAfter)
		fmt.Fprintf(w, "  recall         %.0f%%\n", ev.Retrievability*100)
		fmt.Fprintf(w, "  next review    %s (in %s)\n",
			out.State.Due.Local().Format("2006-01-02 15:04"), study.FormatInterval(out.State.Due.Sub(ev.ReviewedAt)))
		fmt.Fprintf(w, "  reps/lapses    %d/%d\n", out.State.Reps, out.State.Lapses)
		if out.Mastery != nil {
			fmt.Fprintf(w, "  topic mastery  %s %.0f%%\n", out.Mastery.TopicID, out.Mastery.Score*100)
		}
		return nil
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview <card>",
	Short: "Show when each rating would schedule a card next",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		outcomes, err := e.reviews.Preview(cmd.Context(), e.learnerID, args[0])
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		now := time.Now()
		fmt.Fprintf(w, "%-6s  %-11s  %8s  %10s  %s\n", "Rating", "State", "Interval", "Stability", "Difficulty")
		fmt.Fprintln(w, strings.Repeat("─", 56))
		for _, r := range spacedrep.Ratings {
			st := outcomes[r]
			fmt.Fprintf(w, "%-6s  %-11s  %8s  %9.2fd  %10.2f\n",
				r, st.State, study.FormatInterval(st.Due.Sub(now)), st.Stability, st.Difficulty)
		}
		return nil
	},
}

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List the cards due for review in review order",
	RunE: func(cmd *cobra.Command, args []string) error {
		course, _ := cmd.Flags().GetString("course")
		topic, _ := cmd.Flags().GetString("topic")
		limit, _ := cmd.Flags().GetInt("limit")
		newCards, _ := cmd.Flags().GetInt("new")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if course != "" {
			c, err := e.catalog.Course(course)
			if err != nil {
				return err
			}
			course = c.Code
		}
		if topic != "" {
			if _, err := e.catalog.CourseForTopic(topic); err != nil {
				return err
			}
		}

		due, err := e.reviews.Due(cmd.Context(), review.DueQuery{
			LearnerID:  e.learnerID,
			CourseCode: course,
			TopicID:    topic,
			Limit:      limit,
			NewCards:   newCards,
		})
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(due) == 0 {
			fmt.Fprintln(w, "Nothing is due.")
			return nil
		}
		now := time.Now()
		fmt.Fprintf(w, "%-20s  %-11s  %9s  %6s  %s\n", "Card", "State", "Overdue", "Recall", "Lapses")
		fmt.Fprintln(w, strings.Repeat("─", 62))
		for _, st := range due {
			fmt.Fprintf(w, "%-20s  %-11s  %9s  %5.0f%%  %6d\n",
				st.CardID, st.State, study.FormatInterval(now.Sub(st.Due)), st.RetrievabilityAt(now)*100, st.Lapses)
		}
		fmt.Fprintf(w, "\n%d due\n", len(due))
		return nil
	},
}

func init() {
	reviewCmd.Flags().Duration("time", 0, "How long the answer took (e.g. 12s)")

	dueCmd.Flags().String("course", "", "Restrict to one course")
	dueCmd.Flags().Int("limit", 0, "Maximum cards to list (0 = all)")
	dueCmd.Flags().String("topic", "", "Restrict to one leaf topic")
	dueCmd.Flags().Int("new", 0, "Include up to this many unseen cards of --course or --topic")
}
