package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/placescout/placescout/internal/store"
)

var (
	historyQuery string
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored recommendations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initService(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		recs, err := env.Service.History(ctx, store.RecommendationFilter{
			Query: historyQuery,
			Limit: historyLimit,
		})
		if err != nil {
			return err
		}

		if historyJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(recs)
		}

		if len(recs) == 0 {
			fmt.Println("no recommendations stored")
			return nil
		}
		for _, rec := range recs {
			feedback := "-"
			if rec.Feedback != nil {
				feedback = fmt.Sprintf("%d/5", *rec.Feedback)
			}
			fmt.Printf("%s  %-40q  places=%d  feedback=%s  %s\n",
				rec.ID, rec.Query, len(rec.Places), feedback, rec.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Summarize stored recommendation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initService(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		ins, err := env.Service.BuildInsights(ctx, historyLimit)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ins)
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyQuery, "query", "", "filter by query substring")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "maximum records to list")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "emit raw JSON")
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(insightsCmd)
}
