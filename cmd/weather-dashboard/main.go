package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/chart"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

var (
	outputFile string
	verbose    bool
	interval   int
	watchMode  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "weather-dashboard",
		Short: "Fetch city weather and serve an HTML dashboard",
		Long: `Weather Dashboard fetches current weather for a roster of cities from
OpenWeatherMap, renders a table, threshold alerts and a temperature chart.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd)
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd)
		},
	}
	rootCmd.AddCommand(serveCmd)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	addRenderCmd(rootCmd)
	addListCmd(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the components built from configuration.
type app struct {
	cfg     *config.AppConfig
	service *weather.Service
	dash    *dashboard.Dashboard
}

func build() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	provider := providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey,
		providers.WithBaseURL(cfg.OpenWeatherBaseURL),
		providers.WithRetries(cfg.FetchRetries),
		providers.WithCircuitBreaker(cfg.CircuitBreaker),
	)

	// In-memory history with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)
	service := weather.NewService(memStore, provider)

	dash := dashboard.New(service, cfg.Roster, cfg.AlertMode, chart.NewRenderer())

	return &app{cfg: cfg, service: service, dash: dash}, nil
}

func serve(cmd *cobra.Command) error {
	a, err := build()
	if err != nil {
		return err
	}
	defer a.dash.Close()

	ln, err := net.Listen("tcp", ":"+a.cfg.Port)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", a.cfg.Port, err)
	}

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server, initial := start(ctx, a, ln)
	cmd.Println(fmt.Sprintf("Dashboard available at http://localhost:%s/", a.cfg.Port))

	sched := scheduler.New(a.cfg.RefreshInterval, 0, scheduler.RefreshFunc(func(ctx context.Context) {
		a.dash.Refresh(ctx)
	}))
	if err := sched.Start(); err != nil {
		_ = server.Shutdown()
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}

	// The first refresh shares ctx, so it is already winding down.
	select {
	case <-initial:
	case <-shutdownCtx.Done():
	}
	return nil
}

// start serves the dashboard on ln and runs the first refresh in the
// background, like a first page load. The returned channel is closed once
// that refresh has finished.
func start(ctx context.Context, a *app, ln net.Listener) (*fiber.App, <-chan struct{}) {
	server := httpapi.NewApp(a.dash, a.service)

	go func() {
		if err := server.Listener(ln); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		report := a.dash.Refresh(ctx)
		log.Printf("INFO: initial refresh settled %d/%d cities", report.Succeeded, report.Requested)
	}()

	return server, done
}

// addRenderCmd adds a 'render' subcommand writing the dashboard to a static HTML file.
func addRenderCmd(rootCmd *cobra.Command) {
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render the dashboard to a static HTML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build()
			if err != nil {
				return err
			}
			defer a.dash.Close()

			if err := renderOnce(cmd, a); err != nil {
				return err
			}
			if watchMode {
				runWatchMode(cmd, a)
			}
			return nil
		},
	}

	renderCmd.Flags().StringVarP(&outputFile, "output", "o", "dashboard.html", "Output HTML file path")
	renderCmd.Flags().IntVarP(&interval, "interval", "i", 300, "Update interval in seconds (minimum 30)")
	renderCmd.Flags().BoolVar(&watchMode, "watch", false, "Continuously update the dashboard HTML")

	rootCmd.AddCommand(renderCmd)
}

func renderOnce(cmd *cobra.Command, a *app) error {
	if verbose {
		cmd.Println(fmt.Sprintf("Fetching weather for %d cities...", len(a.cfg.Roster)))
	}

	report := a.dash.Refresh(cmd.Context())
	if verbose {
		for _, f := range report.Failures {
			cmd.PrintErrln(fmt.Sprintf("skipped %s: %s", f.City, f.Error))
		}
	}

	if err := dashboard.WriteHTML(outputFile, a.dash.View()); err != nil {
		return fmt.Errorf("failed to generate HTML: %w", err)
	}

	cmd.Println(fmt.Sprintf("Weather dashboard saved to %s (%d/%d cities)", outputFile, report.Succeeded, report.Requested))
	return nil
}

// runWatchMode continuously updates the dashboard HTML
func runWatchMode(cmd *cobra.Command, a *app) {
	if interval < 30 {
		interval = 30
	}

	cmd.Println(fmt.Sprintf("Watch mode activated. Updating every %d seconds. Press Ctrl+C to stop.", interval))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(time.Duration(interval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := renderOnce(cmd, a); err != nil {
				cmd.PrintErrln(fmt.Errorf("update failed: %w", err))
			}
		}
	}
}

// addListCmd adds a 'list' subcommand printing the table and alerts without generating HTML
func addListCmd(rootCmd *cobra.Command) {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List current weather and alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build()
			if err != nil {
				return err
			}
			defer a.dash.Close()

			a.dash.Refresh(cmd.Context())
			printView(cmd, a.dash.View())
			return nil
		},
	}

	rootCmd.AddCommand(listCmd)
}

func printView(cmd *cobra.Command, v dashboard.View) {
	if len(v.Rows) == 0 {
		cmd.Println("No weather data available.")
		return
	}

	cmd.Println("Current Weather:")
	for _, r := range v.Rows {
		cmd.Println(fmt.Sprintf("%-12s %-20s %8s (max %s, min %s)", r.City, r.Description, r.Temperature, r.TempMax, r.TempMin))
	}

	if len(v.Alerts) == 0 {
		cmd.Println("No weather alerts.")
		return
	}

	cmd.Println("Weather Alerts:")
	for _, al := range v.Alerts {
		cmd.Println("- " + al.Message)
	}
}
