package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newReportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Daily and weekly nutrition reports",
	}

	var day string
	daily := &cobra.Command{
		Use:   "daily",
		Short: "Summary for one day (default today)",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseDay(day)
			if err != nil {
				return err
			}
			report, err := a.client.DailyReport(commandContext(cmd), t)
			if err != nil {
				return loginHint(err)
			}
			a.printf("%s  meals %d  calories %.0f  avg risk %.2f\n", report.Date, report.TotalMeals, report.TotalCalories, report.AvgRiskScore)
			return nil
		},
	}
	daily.Flags().StringVarP(&day, "date", "d", "", "Date as YYYY-MM-DD")

	var end string
	weekly := &cobra.Command{
		Use:   "weekly",
		Short: "Seven days ending at --end (default today)",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseDay(end)
			if err != nil {
				return err
			}
			report, err := a.client.WeeklyReport(commandContext(cmd), t)
			if err != nil {
				return loginHint(err)
			}
			for _, item := range report.Items {
				a.printf("%s  meals %d  calories %.0f  avg risk %.2f\n", item.Date, item.Meals, item.TotalCalories, item.AvgRiskScore)
			}
			return nil
		},
	}
	weekly.Flags().StringVar(&end, "end", "", "Last date as YYYY-MM-DD")

	cmd.AddCommand(daily, weekly)
	return cmd
}

// parseDay returns the zero time for an empty string so the backend picks today
func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}
