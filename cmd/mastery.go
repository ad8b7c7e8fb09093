package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mnemos/internal/mastery"
	"github.com/abhisek/mnemos/internal/store"
)

var masteryCmd = &cobra.Command{
	Use:   "mastery",
	Short: "Inspect and rebuild topic mastery",
}

var masteryShowCmd = &cobra.Command{
	Use:   "show <course>",
	Short: "Show per-topic mastery for a course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		course, err := e.catalog.Course(args[0])
		if err != nil {
			return err
		}
		signals, err := mastery.LoadSignals(cmd.Context(), e.store, e.learnerID, course)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-22s  %7s  %7s  %7s  %8s  %5s  %6s\n",
			"Topic", "Weight", "Mastery", "Lapse", "Reviews", "Cards", "Lapses")
		fmt.Fprintln(w, strings.Repeat("─", 76))
		for _, s := range signals {
			if !s.Studied() {
				fmt.Fprintf(w, "%-22s  %6.1f%%  %7s  %7s  %8d  %5d  %6d\n",
					s.ID, s.WeightPct, "-", "-", 0, s.Cards, s.Lapses)
				continue
			}
			fmt.Fprintf(w, "%-22s  %6.1f%%  %6.0f%%  %6.0f%%  %8d  %5d  %6d\n",
				s.ID, s.WeightPct, s.Score*100, s.LapseMastery*100, s.TotalReviews, s.Cards, s.Lapses)
		}
		return nil
	},
}

var masteryRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Recompute topic mastery from the review log",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		var res mastery.RebuildResult
		err = e.store.WithTx(ctx, func(tx store.Repos) error {
			agg := mastery.NewAggregator(tx.Cards(), tx.Mastery(), e.logger)
			var err error
			res, err = agg.Rebuild(ctx, e.learnerID, tx.Events())
			return err
		})
		if err != nil {
			return fmt.Errorf("rebuild mastery: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Replayed %d events into %d topics (%d skipped)\n",
			res.Events, res.Topics, res.Skipped)
		return nil
	},
}

func init() {
	masteryCmd.AddCommand(masteryShowCmd)
	masteryCmd.AddCommand(masteryRebuildCmd)
}
