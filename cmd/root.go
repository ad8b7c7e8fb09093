package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/abhisek/mnemos/internal/app"
	"github.com/abhisek/mnemos/internal/catalog"
	"github.com/abhisek/mnemos/internal/metrics"
	"github.com/abhisek/mnemos/internal/screens/home"
	"github.com/abhisek/mnemos/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mnemos",
	Short: "Spaced repetition and exam readiness for certification courses",
	Long: "Mnemos schedules flashcard reviews, tracks topic mastery and estimates how likely\n" +
		"you are to pass a certification exam. Run without a subcommand to start studying.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "Start a study sitting in the terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MNEMOS_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ~/.mnemos/config.yaml)")
	rootCmd.PersistentFlags().String("learner", "", "Learner id (overrides MNEMOS_LEARNER env var)")

	for _, c := range []*cobra.Command{rootCmd, studyCmd} {
		c.Flags().String("course", "", "Course to study (defaults to the first enrollment)")
		c.Flags().Int("limit", 20, "Maximum cards per study sitting")
		c.Flags().Int("new", 10, "New cards introduced per sitting")
	}

	rootCmd.AddCommand(studyCmd)
	rootCmd.AddCommand(courseCmd)
	rootCmd.AddCommand(cardCmd)
	rootCmd.AddCommand(enrollCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(roiCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(masteryCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then MNEMOS_DB env var, then database.path from the config file, then the
// default XDG path.
func resolveDBPath(cmd *cobra.Command, configured string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if os.Getenv("MNEMOS_DB") == "" && configured != "" {
		return configured, store.EnsureDir(configured)
	}
	return store.DefaultDBPath()
}

// runApp opens the environment and launches the study TUI.
func runApp(cmd *cobra.Command) error {
	e, err := newEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	course, err := e.activeCourse(cmd)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	newCards, _ := cmd.Flags().GetInt("new")

	err = app.Run(home.Deps{
		LearnerID: e.learnerID,
		Course:    course,
		Reviewer:  e.reviews,
		Cards:     e.store.Cards(),
		Signals:   e.store,
		Predictor: e.predictions,
		Events:    e.store.Events(),
		Limit:     limit,
		NewCards:  newCards,
	})
	snap := metrics.Snapshot()
	e.logger.Debug("study session finished",
		"reviews", snap["mnemos_reviews_total"],
		"lapses", snap["mnemos_lapses_total"],
		"mastery_errors", snap["mnemos_mastery_errors_total"])
	return err
}

// activeCourse picks the --course flag or the learner's first enrollment.
// It returns nil, nil when neither exists so the dashboard can explain.
func (e *env) activeCourse(cmd *cobra.Command) (*catalog.Course, error) {
	if code, _ := cmd.Flags().GetString("course"); code != "" {
		return e.catalog.Course(code)
	}
	enrollments, err := e.store.Enrollments().ListByLearner(cmd.Context(), e.learnerID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	for _, en := range enrollments {
		c, err := e.catalog.Course(en.CourseCode)
		if errors.Is(err, catalog.ErrUnknownCourse) {
			e.logger.Warn("enrollment references unknown course",
				"learner", e.learnerID,
				"course", en.CourseCode)
			continue
		}
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, nil
}
