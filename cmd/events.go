/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/promptpix/apiserver/config"
	"github.com/promptpix/apiserver/internal/events"
	"github.com/spf13/cobra"
)

// eventsCmd groups commands for the generation event stream.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Work with generation events",
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Consume generation events and print them",
	Long: `Consume generation events from the configured broker and print
one line per event. Runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		backend, err := newEventsBackend(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		publisher := events.NewPublisher(backend, cfg.Events.Channel)
		defer func() {
			_ = publisher.Close()
		}()

		return publisher.Subscribe(cmd.Context(), func(ctx context.Context, evt events.Event) error {
			var generation events.GenerationEvent
			if err := json.Unmarshal(evt.Data, &generation); err != nil {
				fmt.Fprintf(os.Stderr, "skipping malformed event %s: %v\n", evt.ID, err)
				return nil
			}
			printEvent(generation)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(listenCmd)
}

func newEventsBackend(ctx context.Context, cfg config.Config) (events.Backend, error) {
	switch cfg.Events.Backend {
	case "":
		return nil, errors.New("EVENTS_BACKEND is not configured")
	case "rabbitmq":
		return events.NewRabbitMQBackend(cfg.Events.RabbitMQ)
	case "pubsub":
		return events.NewPubSubBackend(ctx, cfg.Events.PubSub)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Events.Backend)
	}
}

func printEvent(evt events.GenerationEvent) {
	user := evt.UserEmail
	if user == "" {
		user = "guest"
	}
	fmt.Printf("%s  %s  %s  %q  %s\n",
		evt.CreatedAt.Format(time.RFC3339), user, evt.Model, evt.Prompt, evt.ImageURL)
}
