package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var storesJSON bool

var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "List file search stores",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		stores, err := newClient().ListStores(context.Background())
		if err != nil {
			fail("Error listing stores: %v", err)
		}

		if storesJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(stores); err != nil {
				fail("Error encoding JSON: %v", err)
			}
			return
		}

		if len(stores) == 0 {
			color.Yellow("No stores")
			return
		}
		for _, st := range stores {
			fmt.Printf("%-40s %-30s %4d docs %10s\n", st.Name, st.DisplayName, st.ActiveDocumentsCount, humanBytes(st.SizeBytes))
		}
	},
}

var storesDeleteCmd = &cobra.Command{
	Use:   "delete NAME...",
	Short: "Delete stores and their documents",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient()
		failed := 0
		for _, name := range args {
			if err := client.DeleteStore(context.Background(), name); err != nil {
				color.Red("  ✘ %s: %v", name, err)
				failed++
				continue
			}
			color.Green("  ✔ %s", name)
		}
		if failed > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(storesCmd)
	storesCmd.AddCommand(storesDeleteCmd)
	storesCmd.Flags().BoolVar(&storesJSON, "json", false, "Output in JSON format")
}
