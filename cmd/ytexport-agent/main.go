package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pevans/ytexport/agent"
	"github.com/pevans/ytexport/config"
	"github.com/pevans/ytexport/loader"
	"github.com/pevans/ytexport/logger"
	"github.com/pevans/ytexport/page"
	"github.com/pevans/ytexport/video"
	"go.uber.org/zap"
)

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration parses a duration from environment variable or returns default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvInt parses an int from environment variable or returns default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// pageFlags selects where the agent's rendered page comes from.
type pageFlags struct {
	chrome   string
	file     string
	captures string
	address  string
}

func main() {
	_ = godotenv.Load()

	// Zero and empty values fall back to the config file
	configPath := flag.String("config", getEnv("YTEXPORT_CONFIG", ""), "Path to config file (YTEXPORT_CONFIG)")
	addr := flag.String("addr", getEnv("YTEXPORT_AGENT_ADDR", ""), "Listen address (YTEXPORT_AGENT_ADDR)")
	chromeURL := flag.String("chrome", getEnv("YTEXPORT_CHROME_URL", ""), "DevTools URL of a running Chrome to attach to (YTEXPORT_CHROME_URL)")
	pageFile := flag.String("page", getEnv("YTEXPORT_PAGE", ""), "Captured HTML file to serve (YTEXPORT_PAGE)")
	capturesDir := flag.String("captures", getEnv("YTEXPORT_CAPTURES", ""), "Directory of captures replayed one per scroll (YTEXPORT_CAPTURES)")
	address := flag.String("url", getEnv("YTEXPORT_URL", ""), "Address of the captured page (YTEXPORT_URL)")
	storeDSN := flag.String("store", getEnv("YTEXPORT_STORE_DSN", ""), "Path to options database (YTEXPORT_STORE_DSN)")
	maxScrolls := flag.Int("max-scrolls", getEnvInt("YTEXPORT_MAX_SCROLLS", 0), "Maximum scroll iterations per extraction (YTEXPORT_MAX_SCROLLS)")
	settleDelay := flag.Duration("settle-delay", getEnvDuration("YTEXPORT_SETTLE_DELAY", 0), "Wait after each scroll (YTEXPORT_SETTLE_DELAY)")
	startupDelay := flag.Duration("startup-delay", getEnvDuration("YTEXPORT_STARTUP_DELAY", 0), "Wait before the initial scan (YTEXPORT_STARTUP_DELAY)")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	cfg, err := config.LoadConfigFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Agent.Addr = *addr
	}
	if *storeDSN != "" {
		cfg.Storage.DSN = *storeDSN
	}
	if *maxScrolls > 0 {
		cfg.Loader.MaxScrolls = *maxScrolls
	}
	if *settleDelay > 0 {
		cfg.Loader.SettleDelay = *settleDelay
	}
	if *startupDelay > 0 {
		cfg.Agent.StartupDelay = *startupDelay
	}
	if *debug {
		cfg.Logging.Level = "debug"
		cfg.Logging.Development = true
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p, closePage, err := openPage(ctx, pageFlags{
		chrome:   *chromeURL,
		file:     *pageFile,
		captures: *capturesDir,
		address:  *address,
	}, cfg.Site)
	if err != nil {
		log.Fatal("Failed to open page", zap.Error(err))
	}
	defer closePage()

	sc, err := cfg.NewScanner(log.Named("scanner"))
	if err != nil {
		log.Fatal("Failed to create scanner", zap.Error(err))
	}
	ld := loader.New(sc, cfg.LoadMoreConfig(), log.Named("loader"))
	a := agent.New(p, sc, ld, log.Named("agent"))

	router := agent.NewAPIServer(a, log.Named("api")).SetupRouter()

	if cfg.Storage.DSN != "" {
		store, err := config.NewStore(cfg.Storage.DSN)
		if err != nil {
			log.Fatal("Failed to open options store", zap.Error(err))
		}
		defer store.Close()
		store.SetDefaultOptions(cfg.Export.Options)
		config.NewAPIServer(store).Register(router.Group("/api/v1"))
	}

	server := &http.Server{
		Addr:    cfg.Agent.Addr,
		Handler: router,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting page agent", zap.String("addr", cfg.Agent.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Analyze the page once it has had a moment to render
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(cfg.Agent.StartupDelay):
		}
		if _, err := a.Prime(ctx); err != nil {
			log.Warn("Initial page analysis failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigChan:
		log.Info("Shutting down gracefully", zap.String("signal", sig.String()))
	case err := <-errChan:
		log.Error("Server error", zap.Error(err))
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Shutdown failed", zap.Error(err))
	}
}

// openPage builds the page named by the flags. Exactly one source must be
// given. Captured pages default to the site's home address.
func openPage(ctx context.Context, f pageFlags, site video.Site) (page.Page, func(), error) {
	sources := 0
	for _, s := range []string{f.chrome, f.file, f.captures} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return nil, nil, errors.New("exactly one of --chrome, --page or --captures is required")
	}

	address := f.address
	if address == "" {
		address = site.BaseURL + "/"
	}

	switch {
	case f.chrome != "":
		p, err := page.AttachChrome(ctx, f.chrome, site.Owns)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	case f.captures != "":
		p, err := page.LoadSequencePage(address, f.captures)
		if err != nil {
			return nil, nil, err
		}
		return p, func() {}, nil
	default:
		p, err := page.LoadStaticPage(address, f.file)
		if err != nil {
			return nil, nil, err
		}
		return p, func() {}, nil
	}
}
