package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lazy-tourist-be/pkg/events"
	pktNats "lazy-tourist-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	var subject, durable string
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Tail trip session events from NATS",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
			if err != nil {
				return &ExitError{Code: ExitFailure, Err: err}
			}
			defer sub.Close()

			out := cmd.OutOrStdout()
			cancel, err := sub.Subscribe(ctx, subject, durable, func(ctx context.Context, event events.Event) error {
				payload, _ := json.Marshal(event.Payload())
				color.New(color.FgCyan).Fprintf(out, "%s ", event.Timestamp().Format("15:04:05"))
				color.New(color.FgYellow).Fprintf(out, "%-24s ", event.EventType())
				fmt.Fprintln(out, string(payload))
				return nil
			})
			if err != nil {
				return &ExitError{Code: ExitFailure, Err: err}
			}
			defer cancel()

			fmt.Fprintf(out, "Listening on %s (Ctrl+C to stop)\n", subject)
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", pktNats.Subject("trip.>"), "NATS subject filter")
	cmd.Flags().StringVar(&durable, "durable", "", "durable consumer name; empty only shows new events")
	return cmd
}
