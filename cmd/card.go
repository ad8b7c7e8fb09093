package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/mnemos/internal/catalog"
	"github.com/abhisek/mnemos/internal/store"
)

// deckFile is the on-disk format for card imports.
type deckFile struct {
	Course string     `yaml:"course"`
	Cards  []deckCard `yaml:"cards"`
}

type deckCard struct {
	ID    string `yaml:"id"`
	Topic string `yaml:"topic"`
	Front string `yaml:"front"`
	Back  string `yaml:"back"`
}

// parseDeck decodes a deck and maps every card onto its course topic.
func parseDeck(data []byte, registry *catalog.Registry, now time.Time) ([]store.Card, error) {
	var deck deckFile
	if err := yaml.Unmarshal(data, &deck); err != nil {
		return nil, fmt.Errorf("decode deck: %w", err)
	}
	if deck.Course == "" {
		return nil, errors.New("deck has no course")
	}
	course, err := registry.Course(deck.Course)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(deck.Cards))
	cards := make([]store.Card, 0, len(deck.Cards))
	for i, dc := range deck.Cards {
		if dc.ID == "" {
			return nil, fmt.Errorf("card %d: missing id", i+1)
		}
		if seen[dc.ID] {
			return nil, fmt.Errorf("card %s: duplicate id", dc.ID)
		}
		seen[dc.ID] = true
		if strings.TrimSpace(dc.Front) == "" {
			return nil, fmt.Errorf("card %s: empty front", dc.ID)
		}
		if _, err := course.Topic(dc.Topic); err != nil {
			return nil, fmt.Errorf("card %s: %w", dc.ID, err)
		}
		cards = append(cards, store.Card{
			CardID:     dc.ID,
			CourseCode: course.Code,
			TopicID:    dc.Topic,
			Front:      dc.Front,
			Back:       dc.Back,
			CreatedAt:  now,
		})
	}
	return cards, nil
}

var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Manage study cards",
}

var cardImportCmd = &cobra.Command{
	Use:   "import <deck.yaml>",
	Short: "Import or update cards from a YAML deck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read deck: %w", err)
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		cards, err := parseDeck(data, e.catalog, time.Now().UTC())
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		err = e.store.WithTx(ctx, func(tx store.Repos) error {
			for _, c := range cards {
				if err := tx.Cards().Upsert(ctx, c); err != nil {
					return fmt.Errorf("card %s: %w", c.CardID, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		e.logger.Info("imported deck", "file", args[0], "cards", len(cards))
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d cards\n", len(cards))
		return nil
	},
}

var cardListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cards (optionally filtered by course or topic)",
	RunE: func(cmd *cobra.Command, args []string) error {
		course, _ := cmd.Flags().GetString("course")
		topic, _ := cmd.Flags().GetString("topic")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		cards, err := e.store.Cards().List(cmd.Context(), store.CardFilter{CourseCode: course, TopicID: topic})
		if err != nil {
			return fmt.Errorf("list cards: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(cards) == 0 {
			fmt.Fprintln(out, "No cards found.")
			return nil
		}
		fmt.Fprintf(out, "%-20s  %-8s  %-22s  %s\n", "ID", "Course", "Topic", "Front")
		fmt.Fprintln(out, strings.Repeat("─", 100))
		for _, c := range cards {
			front := strings.ReplaceAll(c.Front, "\n", " ")
			if len(front) > 44 {
				front = front[:41] + "..."
			}
			fmt.Fprintf(out, "%-20s  %-8s  %-22s  %s\n", c.CardID, c.CourseCode, c.TopicID, front)
		}
		fmt.Fprintf(out, "\n%d cards\n", len(cards))
		return nil
	},
}

func init() {
	cardListCmd.Flags().String("course", "", "Filter by course code")
	cardListCmd.Flags().String("topic", "", "Filter by topic id")

	cardCmd.AddCommand(cardImportCmd)
	cardCmd.AddCommand(cardListCmd)
}
