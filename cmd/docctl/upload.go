package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"ai-docstore-be/internal/dto"
	"ai-docstore-be/internal/service"
	"ai-docstore-be/pkg/ingest"
	"ai-docstore-be/pkg/operation"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	uploadStore    string
	uploadVersion  string
	uploadNotes    string
	uploadCategory string
	uploadTags     string
)

var uploadCmd = &cobra.Command{
	Use:   "upload FILE...",
	Short: "Upload files into a store, creating it when missing",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		files := make([]ingest.File, 0, len(args))
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				fail("Error reading %s: %v", path, err)
			}
			name := filepath.Base(path)
			files = append(files, ingest.File{Name: name, MIMEType: ingest.DetectMIME(name, data), Data: data})
		}

		req := &dto.UploadRequest{
			Store:    uploadStore,
			Version:  uploadVersion,
			Notes:    uploadNotes,
			Category: uploadCategory,
			Tags:     uploadTags,
		}

		orch := ingest.NewOrchestrator(
			newClient(),
			operation.NewPoller(cfg.Ingest.PollInterval, cfg.Ingest.MaxAttempts),
			ingest.Options{
				StoreWeight:    cfg.Ingest.StoreWeight,
				MaxBytes:       cfg.Ingest.MaxBytes,
				RequireVersion: cfg.Ingest.RequireVersion,
			},
			log,
		)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		result, err := orch.Run(ctx, uploadStore, files, service.BuildMetadata(req), func(p ingest.Progress) {
			line := fmt.Sprintf("[%3d%%] %s", p.Percent, p.Message)
			if p.Phase == ingest.PhaseFailed {
				color.Red("%s", line)
				return
			}
			color.Cyan("%s", line)
		})

		if result != nil {
			if result.Store != nil {
				fmt.Printf("Store: %s (%s)\n", result.Store.DisplayName, result.Store.Name)
			}
			for _, f := range result.Files {
				switch f.Status {
				case ingest.FileSucceeded:
					color.Green("  ✔ %s", f.Name)
				case ingest.FileFailed:
					color.Red("  ✘ %s: %s", f.Name, f.Error)
				default:
					color.Yellow("  - %s (skipped)", f.Name)
				}
			}
		}

		if err != nil {
			var partial *ingest.PartialUploadError
			if errors.As(err, &partial) {
				fail("Upload stopped at %s after %d files: %v", partial.FileName, partial.Succeeded, partial.Cause)
			}
			fail("Upload failed: %v", err)
		}
		color.Green("Uploaded %d files", len(files))
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().StringVarP(&uploadStore, "store", "s", "", "Store display name or resource name")
	uploadCmd.Flags().StringVar(&uploadVersion, "version", "", "Dotted version, e.g. 1.2")
	uploadCmd.Flags().StringVar(&uploadNotes, "notes", "", "Free-form notes")
	uploadCmd.Flags().StringVar(&uploadCategory, "category", "", "Category")
	uploadCmd.Flags().StringVar(&uploadTags, "tags", "", "Comma separated tags")
	uploadCmd.MarkFlagRequired("store")
}
