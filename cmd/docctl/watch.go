package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ai-docstore-be/pkg/events"
	pktNats "ai-docstore-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var watchUser string

var watchCmd = &cobra.Command{
	Use:   "watch [EVENT_TYPE]",
	Short: "Follow upload and store events from the bus",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			fail("Error connecting to NATS: %v", err)
		}
		defer sub.Close()

		subject := pktNats.SubjectPrefix + ".>"
		if len(args) == 1 {
			subject = pktNats.Subject(args[0])
		}

		err = sub.Follow(subject, func(ctx context.Context, event events.Event) error {
			data := event.Payload()
			if watchUser != "" && data["user_id"] != watchUser {
				return nil
			}
			printEvent(event)
			return nil
		})
		if err != nil {
			fail("Error subscribing to %s: %v", subject, err)
		}

		color.Cyan("Watching %s (Ctrl+C to stop)", subject)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()
	},
}

func printEvent(event events.Event) {
	data := event.Payload()
	ts := event.Timestamp().Format("15:04:05")
	store, ok := data["store"]
	if !ok {
		store = data["store_name"]
	}
	line := fmt.Sprintf("%s %-17s store=%v", ts, event.EventType(), store)
	if job, ok := data["job_id"]; ok {
		line += fmt.Sprintf(" job=%v", job)
	}

	switch event.EventType() {
	case events.UploadCompleted:
		color.Green("%s", line)
	case events.UploadPartial:
		color.Yellow("%s %v", line, data["error"])
	case events.UploadFailed:
		color.Red("%s %v", line, data["error"])
	case events.StoreDeleted:
		color.Magenta("%s", line)
	default:
		fmt.Println(line)
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchUser, "user", "", "Only show events of this user id")
}
