package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/placescout/placescout/internal/model"
)

var (
	recommendLat         float64
	recommendLng         float64
	recommendLimit       int
	recommendPreferences []string
	recommendContext     string
	recommendJSON        bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <query>",
	Short: "Run one recommendation query from the command line",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initService(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		req := model.RecommendRequest{
			Query:       strings.Join(args, " "),
			Preferences: recommendPreferences,
			Context:     recommendContext,
			Limit:       recommendLimit,
		}
		if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
			req.Location = &model.Coordinates{Latitude: recommendLat, Longitude: recommendLng}
		}

		result, err := env.Service.Recommend(ctx, req)
		if err != nil {
			return err
		}

		if recommendJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		fmt.Printf("%s\n\n", result.Summary)
		for _, p := range result.Places {
			fmt.Printf("%d. %s (%s, score %.2f, via %s)\n   %s\n", p.Rank, p.Name, p.Category, p.Score, p.Source, p.Reasoning)
		}
		if result.AdditionalTips != "" {
			fmt.Printf("\nTips: %s\n", result.AdditionalTips)
		}
		fmt.Printf("\nSources: %s\nID: %s\n", strings.Join(result.SourcesUsed, ", "), result.ID)
		return nil
	},
}

func init() {
	recommendCmd.Flags().Float64Var(&recommendLat, "lat", 0, "latitude for location bias")
	recommendCmd.Flags().Float64Var(&recommendLng, "lng", 0, "longitude for location bias")
	recommendCmd.Flags().IntVar(&recommendLimit, "limit", 0, "maximum places to return (default from config)")
	recommendCmd.Flags().StringSliceVar(&recommendPreferences, "prefer", nil, "preference keywords (repeatable)")
	recommendCmd.Flags().StringVar(&recommendContext, "context", "", "free-text context for the query")
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "emit the raw JSON response")
	rootCmd.AddCommand(recommendCmd)
}
