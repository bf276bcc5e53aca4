package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/internal/inbox"
	"github.com/rustyeddy/tradejournal/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the journal over HTTP until interrupted.

When import.inbox_schedule is configured, CSV files dropped into
import.inbox_dir are imported on that schedule.

Example:
  tradejournal serve --config tradejournal.yaml`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, overrides server.addr")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if serveAddr != "" {
		a.cfg.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(a.store, a.cfg, a.log.Named("http"))
	if err != nil {
		return err
	}

	if ic := a.cfg.Import; ic.InboxSchedule != "" {
		in, err := inbox.New(srv.Importer(), ic.InboxDir, a.user(), ic.InboxAccount, a.log.Named("inbox"))
		if err != nil {
			return err
		}
		if err := in.Start(ctx, ic.InboxSchedule); err != nil {
			return err
		}
		defer in.Stop()
	}

	a.log.Info("starting tradejournal",
		zap.String("addr", a.cfg.Server.Addr),
		zap.String("user", a.user()),
		zap.String("driver", a.cfg.Database.Driver))
	return srv.Run(ctx)
}
