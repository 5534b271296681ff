package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/madan-prog/palletforge/lifecycle"
	"github.com/madan-prog/palletforge/syncer"
)

// NewWatchCommand returns the watch verb: a live terminal view of the quote
// and order collections, driven by the same controller the dashboards use.
func NewWatchCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow quote and order changes live",
		RunE: func(cmd *cobra.Command, args []string) error {
			nc, err := nats.Connect(opts.NATSURL,
				nats.ReconnectWait(2*time.Second),
				nats.MaxReconnects(-1),
			)
			if err != nil {
				return fmt.Errorf("connect to NATS: %w", err)
			}
			defer nc.Close()

			notifier := syncer.NewNotifier()
			controller := syncer.NewController(
				opts.client(), nc, syncer.Scope{Admin: true}, notifier, slog.Default())

			controller.OnChange(func(snap syncer.Snapshot) {
				pending := 0
				for _, q := range snap.Quotes {
					if q.Status == lifecycle.QuotePending {
						pending++
					}
				}
				fmt.Printf("%s  quotes=%d (pending %d)  orders=%d  state=%s\n",
					time.Now().Format("15:04:05"), len(snap.Quotes), pending,
					len(snap.Orders), controller.ConnectionState())
			})

			if err := controller.Start(cmd.Context()); err != nil {
				return err
			}
			defer controller.Stop()

			fmt.Println("Watching for changes, Ctrl+C to stop")
			<-cmd.Context().Done()
			return nil
		},
	}
}
