package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/hdiview/internal/catalog"
	cfgpkg "github.com/KaramelBytes/hdiview/internal/config"
	"github.com/KaramelBytes/hdiview/internal/dashboard"
	"github.com/KaramelBytes/hdiview/internal/logging"
	"github.com/KaramelBytes/hdiview/internal/render"
	"github.com/KaramelBytes/hdiview/internal/store"
	"github.com/KaramelBytes/hdiview/internal/utils"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Store flags (override config if set)
	flagDataDir string
	flagStore   string

	// Loaded configuration
	cfg    *cfgpkg.Global
	logger = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "hdiview",
	Short: "hdiview: compare development and education indicators over time",
	Long: `hdiview reconciles a URL-style parameter map into a complete dashboard view
of education and development indicators for countries or Indian states, then
renders it as a chart, a JSON document, or a downloadable table.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.hdiview/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory holding countries/states data files (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "data store backend: memory|sqlite (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("data-dir") && flagDataDir != "" {
		cfg.DataDir = utils.ExpandHome(flagDataDir)
	}
	if f.Changed("store") && flagStore != "" {
		cfg.Store = flagStore
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
	}
	logger = logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
}

// requireConfig returns the loaded config or loads it on demand.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

// openStore opens the configured data store.
func openStore(ctx context.Context) (store.Handle, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return store.Open(ctx, store.Source{Backend: c.Store, DataDir: c.DataDir, SQLitePath: c.SQLitePath}, logger)
}

// loadCatalog extends the built-in catalog with every entity the store knows.
func loadCatalog(ctx context.Context, l store.Lister) *catalog.Catalog {
	base := catalog.Default()
	countries, err := l.Entities(ctx, store.KindCountry)
	if err != nil {
		logger.Warn("list countries", "error", err)
	}
	states, err := l.Entities(ctx, store.KindState)
	if err != nil {
		logger.Warn("list states", "error", err)
	}
	return catalog.New(append(base.Countries, countries...), append(base.States, states...))
}

// newEngine wires store, catalog and logger into a dashboard engine. The
// caller closes the returned handle.
func newEngine(ctx context.Context) (*dashboard.Engine, store.Handle, error) {
	h, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	return dashboard.New(h, loadCatalog(ctx, h), logger), h, nil
}

func chartOptions() render.Options {
	if cfg == nil {
		return render.DefaultOptions()
	}
	return render.Options{Width: cfg.ChartWidth, Height: cfg.ChartHeight}
}

// fetchToFile downloads url into dest atomically.
func fetchToFile(ctx context.Context, url, dest string, timeout time.Duration) (int, error) {
	client := &http.Client{Timeout: timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return 0, fmt.Errorf("fetch: unexpected status %s: %s", resp.Status, string(b))
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read body: %w", err)
	}
	if err := utils.EnsureDir(filepath.Dir(dest)); err != nil {
		return 0, fmt.Errorf("ensure dir: %w", err)
	}
	if err := utils.SafeWriteFile(dest, b); err != nil {
		return 0, err
	}
	return len(b), nil
}
