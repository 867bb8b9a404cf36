package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/combochart/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve <definition>",
	Short: "Preview a chart with live reload",
	Long: `Start a preview server for one chart definition. The page animates
every change, reloads when the definition or its data file changes,
and forwards hover and click events on marks to the engine.

Examples:
  combochart serve chart.yaml
  combochart serve chart.yaml --port 9000`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8090, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")

	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, args[0], server.Options{Logger: log})
	go func() {
		<-ctx.Done()
		log.Info(context.Background(), "Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(shutdownCtx, err, "Error during server shutdown")
		}
	}()

	return srv.Start(ctx)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
