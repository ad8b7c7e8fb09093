package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/mnemos/internal/metrics"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		counters, _ := cmd.Flags().GetBool("counters")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		enrollments, err := e.store.Enrollments().ListByLearner(ctx, e.learnerID)
		if err != nil {
			return fmt.Errorf("list enrollments: %w", err)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Learner: %s\n\n", e.learnerID)
		if len(enrollments) == 0 {
			fmt.Fprintln(w, "Not enrolled in any course. Run `mnemos enroll <course>` to start.")
		} else {
			fmt.Fprintf(w, "%-8s  %9s  %6s  %8s  %6s  %8s  %6s\n",
				"Course", "Retention", "Cards", "Reviews", "Lapses", "Studied", "Pass")
			fmt.Fprintln(w, strings.Repeat("─", 68))
		}
		for _, en := range enrollments {
			course, err := e.catalog.Course(en.CourseCode)
			if err != nil {
				e.logger.Warn("skipping enrollment", "course", en.CourseCode, "error", err)
				continue
			}
			states, err := e.store.CardStates().ListByLearner(ctx, e.learnerID, course.Code)
			if err != nil {
				return err
			}
			reviews, lapses := 0, 0
			for _, st := range states {
				reviews += st.Reps
				lapses += st.Lapses
			}
			_, spent, err := e.store.Events().LatencyStats(ctx, e.learnerID, course.Code)
			if err != nil {
				return err
			}
			res, err := e.predictions.Predict(ctx, e.learnerID, course)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%-8s  %8.0f%%  %6d  %8d  %6d  %8s  %5.0f%%\n",
				course.Code, en.DesiredRetention*100, len(states), reviews, lapses,
				spent.Round(time.Minute), res.PassProbability*100)
		}

		if counters {
			fmt.Fprintln(w)
			printCounters(w)
		}
		return nil
	},
}

// printCounters dumps this process's operation counters.
func printCounters(w io.Writer) {
	snap := metrics.Snapshot()
	for _, name := range metrics.Names(snap) {
		fmt.Fprintf(w, "%-36s %d\n", name, snap[name])
	}
}

func init() {
	statsCmd.Flags().Bool("counters", false, "Also print this process's operation counters")
}
