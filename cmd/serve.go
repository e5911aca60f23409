package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/hdiview/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API over HTTP",
	Long: `Starts an HTTP server. Every endpoint takes the dashboard parameters as a
query string; the prior scope is kept in the hdiview_world cookie.

  GET  /api/view         reconciled state, parameters, share link and panels
  GET  /api/chart.png    rendered chart
  GET  /api/export.csv   download table (world scope with countries)
  GET  /api/export.xlsx
  POST /api/scope/:scope switch to world|india and re-run the view
  GET  /api/catalog      selectable metrics and entities
  GET  /healthz, /metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		addr := c.ListenAddr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		if !debug {
			gin.SetMode(gin.ReleaseMode)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		eng, h, err := newEngine(ctx)
		if err != nil {
			return err
		}
		defer h.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving on %s (store: %s)\n", addr, c.Store)
		return server.New(eng, chartOptions(), logger).Run(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address (overrides config)")
}
