package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"heritage/core/loader"
	"heritage/core/logger"
	"heritage/core/middleware/auth"
	"heritage/core/middleware/rayid"
	replicationFeature "heritage/feature/replication"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "heritage/docs/swagger"
)

// @title Heritage API
// @version 1.0
// @description Replication, backup and reconciliation controls for the family dataset.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the heritage server",
	Long:  `Starts the HTTP control surface and the replication retry loop.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := context.WithCancel(context.Background())
		defer stop()

		a, err := bootstrap(ctx)
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		logg := a.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		if !a.cfg.Server.IsValidMode() {
			logg.Warn("Unknown server mode, using production", zap.String("mode", a.cfg.Server.Mode))
		}

		a.orchestrator.Start(ctx)

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		mgr := loader.NewManager()
		mgr.Register(replicationFeature.NewFeature(a.service))

		// RayID first so every later log line can be traced.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
		if a.cfg.Server.ServeDocs() {
			app.Get("/swagger/*", swagger.HandlerDefault)
		}

		app.Use(auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey, Skip: []string{"/metrics", "/swagger"}}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		go func() {
			logg.Info("Starting server", zap.String("port", a.cfg.Server.Port))
			if err := app.Listen(":" + a.cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
		a.orchestrator.Stop()
		if pending := a.orchestrator.Status().PendingOperations; pending > 0 {
			logg.Warn("Pending sync operations dropped at shutdown", zap.Int("pending", pending))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
