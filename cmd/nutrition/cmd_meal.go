package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"NanoVision/server/internal/nutrition"

	"github.com/spf13/cobra"
)

func newMealCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meal",
		Short: "Analyze meals and browse meal history",
	}

	var (
		mood           string
		hunger, stress int
	)
	analyze := &cobra.Command{
		Use:   "analyze [image...]",
		Short: "Upload up to three meal photos with an optional mood note",
		Args:  cobra.MaximumNArgs(nutrition.MaxMealImages),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := nutrition.MealAnalyzeRequest{MoodText: mood}
			if cmd.Flags().Changed("hunger") {
				req.HungerLevel = &hunger
			}
			if cmd.Flags().Changed("stress") {
				req.StressLevel = &stress
			}
			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("failed to open image: %w", err)
				}
				defer f.Close()
				req.Images = append(req.Images, nutrition.MealImage{
					Filename:    filepath.Base(path),
					ContentType: mime.TypeByExtension(filepath.Ext(path)),
					Data:        f,
				})
			}

			result, err := a.client.AnalyzeMeal(commandContext(cmd), req)
			if err != nil {
				return loginHint(err)
			}
			return a.printJSON(result)
		},
	}
	analyze.Flags().StringVarP(&mood, "mood", "m", "", "How you feel about the meal")
	analyze.Flags().IntVar(&hunger, "hunger", 0, "Hunger level 1-10")
	analyze.Flags().IntVar(&stress, "stress", 0, "Stress level 1-10")

	var limit int
	history := &cobra.Command{
		Use:   "history",
		Short: "List recent meals",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.client.MealHistory(commandContext(cmd), limit)
			if err != nil {
				return loginHint(err)
			}
			if len(resp.Items) == 0 {
				a.printf("No meals recorded yet\n")
				return nil
			}
			for _, item := range resp.Items {
				a.printf("#%d  %s  %-10s risk %.2f  %s\n", item.MealID, item.CreatedAt, item.EmotionLabel, item.RiskScore, item.MoodText)
			}
			return nil
		},
	}
	history.Flags().IntVarP(&limit, "limit", "n", 20, "Number of meals (1-100)")

	cmd.AddCommand(analyze, history)
	return cmd
}
