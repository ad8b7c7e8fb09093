package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var courseCmd = &cobra.Command{
	Use:   "course",
	Short: "Browse the course catalog",
}

var courseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all courses",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-8s  %-48s  %-8s  %5s  %6s  %5s\n",
			"Code", "Name", "Version", "Pass", "Topics", "Cards")
		fmt.Fprintln(out, strings.Repeat("─", 90))

		for _, c := range e.catalog.Courses() {
			cards, err := e.store.Cards().CountByCourse(cmd.Context(), c.Code)
			if err != nil {
				return fmt.Errorf("count cards: %w", err)
			}
			name := c.Name
			if len(name) > 48 {
				name = name[:45] + "..."
			}
			fmt.Fprintf(out, "%-8s  %-48s  %-8s  %4.0f%%  %6d  %5d\n",
				c.Code, name, c.Version, c.PassingScore*100, len(c.Leaves()), cards)
		}
		return nil
	},
}

var courseShowCmd = &cobra.Command{
	Use:   "show <course>",
	Short: "Show a course's exam format and weighted topics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		c, err := e.catalog.Course(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s  %s (%s)\n", c.Code, c.Name, c.Version)
		if c.Description != "" {
			fmt.Fprintln(out, c.Description)
		}
		fmt.Fprintf(out, "Passing score: %.0f%%\n", c.PassingScore*100)
		if c.Exam.TotalQuestions > 0 {
			fmt.Fprintf(out, "Exam: %d questions in %d minutes\n", c.Exam.TotalQuestions, c.Exam.DurationMinutes)
		}
		if c.Exam.Notes != "" {
			fmt.Fprintln(out, c.Exam.Notes)
		}
		fmt.Fprintln(out)

		fmt.Fprintf(out, "%-24s  %-40s  %7s\n", "Topic", "Name", "Weight")
		fmt.Fprintln(out, strings.Repeat("─", 75))
		section := ""
		for _, t := range c.Leaves() {
			if t.Section != section {
				section = t.Section
				fmt.Fprintf(out, "%s\n", section)
			}
			fmt.Fprintf(out, "  %-22s  %-40s  %6.1f%%\n", t.ID, t.Name, t.WeightPct)
		}
		return nil
	},
}

func init() {
	courseCmd.AddCommand(courseListCmd)
	courseCmd.AddCommand(courseShowCmd)
}
