package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mnemos/internal/prediction"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var predictCmd = &cobra.Command{
	Use:   "predict <course>",
	Short: "Estimate exam readiness for a course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		save, _ := cmd.Flags().GetBool("save")
		asJSON, _ := cmd.Flags().GetBool("json")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		course, err := e.catalog.Course(args[0])
		if err != nil {
			return err
		}
		res, err := e.predictions.Predict(cmd.Context(), e.learnerID, course)
		if err != nil {
			return err
		}
		if save {
			snap, err := e.predictions.Save(cmd.Context(), e.learnerID, res)
			if err != nil {
				return fmt.Errorf("save prediction: %w", err)
			}
			e.logger.Info("saved prediction", "snapshot", snap.SnapshotID, "course", course.Code)
		}

		w := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(w, res)
		}
		printPrediction(w, course.Name, res)
		return nil
	},
}

func printPrediction(w io.Writer, name string, res *prediction.Result) {
	fmt.Fprintf(w, "%s  %s\n", res.CourseCode, name)
	fmt.Fprintf(w, "Readiness:        %s\n", strings.ToUpper(res.Recommendation.Readiness.String()))
	fmt.Fprintf(w, "Pass probability: %.1f%%\n", res.PassProbability*100)
	fmt.Fprintf(w, "Weighted mastery: %.1f%% (passing %.0f%%)\n", res.WeightedMastery*100, res.PassingScore*100)
	fmt.Fprintf(w, "Topics studied:   %d/%d\n", res.StudiedTopics, res.TotalTopics)
	fmt.Fprintln(w)
	fmt.Fprintln(w, res.Recommendation.Message)

	if len(res.WeakTopics) == 0 {
		return
	}
	fmt.Fprintf(w, "\nWeak topics (%d):\n", res.WeakTopicCount)
	fmt.Fprintf(w, "%-22s  %-34s  %7s  %7s  %6s\n", "Topic", "Name", "Weight", "Mastery", "Lapse")
	fmt.Fprintln(w, strings.Repeat("─", 84))
	for _, t := range res.WeakTopics {
		topicName := t.Name
		if len(topicName) > 34 {
			topicName = topicName[:31] + "..."
		}
		fmt.Fprintf(w, "%-22s  %-34s  %6.1f%%  %6.0f%%  %5.0f%%\n",
			t.ID, topicName, t.WeightPct, t.Mastery*100, t.LapseMastery*100)
	}
}

var roiCmd = &cobra.Command{
	Use:   "roi <course>",
	Short: "Estimate the study time left to master a course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		course, err := e.catalog.Course(args[0])
		if err != nil {
			return err
		}
		roi, err := e.predictions.ROI(cmd.Context(), e.learnerID, course)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(w, roi)
		}
		fmt.Fprintf(w, "Cards mastered:   %d/%d (%.0f%%)\n", roi.MasteredCards, roi.TotalCards, roi.Coverage*100)
		fmt.Fprintf(w, "Remaining cards:  %d\n", roi.RemainingCards)
		fmt.Fprintf(w, "Seconds per card: %.0f\n", roi.SecondsPerCard)
		fmt.Fprintf(w, "Hours remaining:  %.1f\n", roi.EstimatedHoursRemaining)
		fmt.Fprintf(w, "Hours studied:    %.1f\n", roi.TotalStudyHours)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <course>",
	Short: "Show saved readiness predictions, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		course, err := e.catalog.Course(args[0])
		if err != nil {
			return err
		}
		snaps, err := e.predictions.History(cmd.Context(), e.learnerID, course.Code, limit)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(snaps) == 0 {
			fmt.Fprintln(w, "No saved predictions. Run `mnemos predict --save` to record one.")
			return nil
		}
		fmt.Fprintf(w, "%-16s  %8s  %8s  %8s  %4s\n", "Date", "Pass", "Mastery", "Score", "Weak")
		fmt.Fprintln(w, strings.Repeat("─", 54))
		for _, s := range snaps {
			fmt.Fprintf(w, "%-16s  %7.1f%%  %7.1f%%  %7.1f%%  %4d\n",
				s.CreatedAt.Local().Format("2006-01-02 15:04"),
				s.PassProbability*100, s.WeightedMastery*100, s.PredictedScore*100, s.WeakTopicCount)
		}
		return nil
	},
}

func init() {
	predictCmd.Flags().Bool("save", false, "Record the prediction in the history")
	predictCmd.Flags().Bool("json", false, "Print the result as JSON")

	roiCmd.Flags().Bool("json", false, "Print the result as JSON")

	historyCmd.Flags().Int("limit", 20, "Maximum snapshots to show (0 = all)")
}
