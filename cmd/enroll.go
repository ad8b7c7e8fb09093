package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <course>",
	Short: "Enroll in a course with a retention target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		retention, _ := cmd.Flags().GetFloat64("retention")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		course, err := e.catalog.Course(args[0])
		if err != nil {
			return err
		}
		en, err := e.reviews.Enroll(cmd.Context(), e.learnerID, course.Code, retention)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Enrolled %s in %s (target retention %.0f%%)\n",
			en.LearnerID, course.Code, en.DesiredRetention*100)
		return nil
	},
}

func init() {
	enrollCmd.Flags().Float64("retention", 0, "Desired retention between 0.70 and 0.99 (default from config)")
}
