package main

import (
	"bytes"
	"context"
	"os"
	"time"

	"ai-docstore-be/internal/dto"
	"ai-docstore-be/internal/pkg/serverutils"
	"ai-docstore-be/internal/service"
	"ai-docstore-be/pkg/catalog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	exportOut      string
	exportQuery    string
	exportStores   string
	exportVersions string
	exportTags     string
	exportSort     string
	exportOrder    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the document catalog as CSV",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := service.NewDocumentService(newClient(), log)

		var buf bytes.Buffer
		req := &dto.ListDocumentsRequest{
			Query:    exportQuery,
			Stores:   exportStores,
			Versions: exportVersions,
			Tags:     exportTags,
			Sort:     exportSort,
			Order:    exportOrder,
		}
		if err := serverutils.ValidateRequest(req); err != nil {
			fail("Invalid filters: %v", err)
		}
		if err := svc.Export(context.Background(), req, &buf); err != nil {
			fail("Error exporting documents: %v", err)
		}

		out := exportOut
		if out == "" {
			out = catalog.ExportFileName(time.Now())
		}
		if out == "-" {
			os.Stdout.Write(buf.Bytes())
			return
		}
		if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
			fail("Error writing %s: %v", out, err)
		}
		color.Green("Wrote %s", out)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file, - for stdout")
	exportCmd.Flags().StringVarP(&exportQuery, "query", "q", "", "Text filter")
	exportCmd.Flags().StringVar(&exportStores, "stores", "", "Comma separated store display names")
	exportCmd.Flags().StringVar(&exportVersions, "versions", "", "Comma separated versions")
	exportCmd.Flags().StringVar(&exportTags, "tags", "", "Comma separated tags")
	exportCmd.Flags().StringVar(&exportSort, "sort", "", "Sort key")
	exportCmd.Flags().StringVar(&exportOrder, "order", "", "asc or desc")
}
