package main

import (
	"context"
	"fmt"

	"ai-docstore-be/internal/dto"
	"ai-docstore-be/internal/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	queryStore    string
	queryLanguage string
	querySuggest  int
)

var queryCmd = &cobra.Command{
	Use:   "query [QUESTION]",
	Short: "Ask a question grounded on a store",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		language := queryLanguage
		if language == "" {
			language = cfg.Gemini.Language
		}
		svc := service.NewQueryService(newClient(), language, log)
		ctx := context.Background()

		if querySuggest > 0 {
			res, err := svc.Suggestions(ctx, &dto.SuggestionsRequest{Store: queryStore, Language: language, Count: querySuggest})
			if err != nil {
				fail("Error getting suggestions: %v", err)
			}
			for _, q := range res.Questions {
				fmt.Println("- " + q)
			}
			return
		}

		if len(args) == 0 {
			fail("A question is required unless --suggest is set")
		}

		res, err := svc.Ask(ctx, &dto.QueryRequest{Store: queryStore, Question: args[0], Language: language})
		if err != nil {
			fail("Error querying store: %v", err)
		}

		fmt.Println(res.Answer)
		if len(res.Sources) > 0 {
			color.Yellow("\nSources:")
			for i, s := range res.Sources {
				fmt.Printf("  [%d] %s\n", i+1, s.Title)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryStore, "store", "s", "", "Store display name or resource name")
	queryCmd.Flags().StringVar(&queryLanguage, "language", "", "Answer language (defaults to ASSISTANT_LANGUAGE)")
	queryCmd.Flags().IntVar(&querySuggest, "suggest", 0, "Print this many suggested questions instead")
	queryCmd.MarkFlagRequired("store")
}
