package main

import (
	"fmt"
	"os"

	"ai-docstore-be/internal/config"
	"ai-docstore-be/internal/pkg/logger"
	"ai-docstore-be/pkg/credential"
	"ai-docstore-be/pkg/gemini"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	apiKey  string

	cfg *config.Config
	log logger.ILogger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docctl",
	Short: "Manage file search stores and their documents",
	Long: `docctl talks to the backend directly with an API key. It uploads
batches with metadata, asks grounded questions, lists and deletes stores,
exports the document catalog and follows upload events from the bus.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		if apiKey == "" {
			apiKey = cfg.Gemini.APIKey
		}
		log = logger.NewNopLogger()
		if verbose {
			log = logger.NewZapLogger(cfg.App.LogFilePath, false)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Write a debug log to LOG_FILE_PATH")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key (defaults to GOOGLE_GEMINI_API_KEY)")
}

func newClient() *gemini.Client {
	return gemini.NewClient(credential.Static(apiKey), gemini.Config{
		BaseURL:         cfg.Gemini.BaseURL,
		UploadURL:       cfg.Gemini.UploadURL,
		QueryModel:      cfg.Gemini.QueryModel,
		SpeechModel:     cfg.Gemini.SpeechModel,
		TranscribeModel: cfg.Gemini.TranscribeModel,
		Voice:           cfg.Gemini.Voice,
	})
}

func fail(format string, args ...interface{}) {
	color.Red(format, args...)
	os.Exit(1)
}

func humanBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
