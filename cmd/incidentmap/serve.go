package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jengzang/incidentmap/internal/api"
	"github.com/jengzang/incidentmap/internal/service"
)

var servePort string

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the explorer over HTTP and websocket",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&servePort, "port", "", "Listen address, overrides config (e.g. :8080)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx, stderr)
	if err != nil {
		return err
	}
	if servePort != "" {
		a.cfg.Server.Port = servePort
	}

	gin.SetMode(gin.ReleaseMode)
	loop := service.NewLoop(64)
	hub := service.NewHub(32, a.log)
	session := service.NewSession(a.explorer, loop, hub)
	router := api.SetupRouter(ctx, a.cfg, session, a.data.Boundary, a.log)

	srv := &http.Server{
		Addr:              a.cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loop.Run(gctx)
		return nil
	})
	g.Go(func() error {
		a.log.Info("server starting", "component", "Server", "addr", srv.Addr, "auth", a.cfg.Server.JWTSecret != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.log.Info("server shutting down", "component", "Server")
		loop.Close()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
