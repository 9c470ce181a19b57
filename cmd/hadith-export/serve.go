package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"hadithexport/internal/events"
	"hadithexport/internal/export"
	"hadithexport/internal/notify"
	"hadithexport/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the export directory over HTTP",
	Long:  "Serve the manifest and archives, stream progress over /ws, and accept token-protected re-runs",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, db, err := openSource()
	if err != nil {
		return err
	}
	defer db.Close()

	hub := events.NewHub()
	notifier := export.Notifiers{hub}
	var udp *notify.Server
	if cfg.Server.UDPAddr != "" {
		udp = notify.NewServer(cfg.Server.UDPAddr, notify.NewRegistry(), log.Default())
		notifier = append(notifier, udp)
	}

	exp, err := newExporter(db, cfg, export.ModeArchive, notifier)
	if err != nil {
		return err
	}

	handler := server.NewHandler(cfg.OutputDir, exp.Run, log.Default())
	router := server.NewRouter(handler, hub, tokenService(cfg))

	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("HTTP export server listening on %s", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if udp != nil {
		g.Go(func() error { return udp.Run(ctx) })
	}
	g.Go(func() error {
		<-ctx.Done()
		log.Println("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	// let an in-flight run finish its manifest before the db closes
	handler.Wait()
	log.Println("server stopped")
	return err
}
