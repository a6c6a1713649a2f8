package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pevans/ytexport/agent"
	"github.com/pevans/ytexport/config"
	"github.com/pevans/ytexport/control"
	"github.com/pevans/ytexport/loader"
	"github.com/pevans/ytexport/logger"
	"github.com/pevans/ytexport/page"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// agentURL overrides the agent address from the config file.
	agentURL string

	// pageFile runs an in-process agent over a captured page instead of
	// contacting a running agent.
	pageFile string

	// pageAddress is the address of the captured page.
	pageAddress string

	// debug enables debug logging for all commands.
	debug bool

	// Loaded in PersistentPreRunE
	cfg *config.FileConfig
	log *zap.Logger
)

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// newRootCommand creates the ytexport command tree.
func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "ytexport",
		Short:         "Export YouTube video listings to CSV",
		Long:          `Reads the videos shown on a YouTube page through a page agent and exports them as a CSV file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				_ = log.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", getEnv("YTEXPORT_CONFIG", ""), "config file (default is ~/.ytexport/config.yaml)")
	root.PersistentFlags().StringVar(&agentURL, "agent", getEnv("YTEXPORT_AGENT_URL", ""), "page agent URL")
	root.PersistentFlags().StringVar(&pageFile, "page", "", "captured HTML page to read in-process instead of using an agent")
	root.PersistentFlags().StringVar(&pageAddress, "url", "", "address of the captured page (with --page)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(newInfoCommand())
	root.AddCommand(newExtractCommand())
	root.AddCommand(newImportFeedCommand())
	root.AddCommand(newOptionsCommand())
	root.AddCommand(newHistoryCommand())

	return root
}

// Execute runs the root command.
func Execute() error {
	// Load .env file early so environment variables are available
	_ = godotenv.Load()

	return newRootCommand().ExecuteContext(context.Background())
}

// initConfig loads the config file and builds the logger.
func initConfig() error {
	var err error
	cfg, err = config.LoadConfigFile(cfgFile)
	if err != nil {
		return err
	}

	if agentURL != "" {
		cfg.Agent.URL = agentURL
	}
	if debug {
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "console"
		cfg.Logging.Development = true
	} else if cfg.Logging.Level == "info" {
		// Keep normal runs quiet on the terminal
		cfg.Logging.Level = "warn"
	}

	log, err = logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	return nil
}

// newSession connects a control session to a running agent, or to an
// in-process agent over --page.
func newSession() (*control.Session, error) {
	var t control.Transport

	if pageFile != "" {
		address := pageAddress
		if address == "" {
			address = cfg.Site.BaseURL + "/"
		}
		p, err := page.LoadStaticPage(address, pageFile)
		if err != nil {
			return nil, err
		}
		sc, err := cfg.NewScanner(log.Named("scanner"))
		if err != nil {
			return nil, err
		}
		ld := loader.New(sc, cfg.LoadMoreConfig(), log.Named("loader"))
		t = control.NewLocalTransport(agent.New(p, sc, ld, log.Named("agent")))
	} else {
		t = control.NewHTTPTransport(cfg.Agent.URL, cfg.Agent.Timeout)
	}

	return control.NewSession(t, cfg.ControlConfig(), log.Named("session")), nil
}

// openStore opens the options and history store, or returns nil when no
// store is configured.
func openStore() (*config.Store, error) {
	if cfg.Storage.DSN == "" {
		return nil, nil
	}
	store, err := config.NewStore(cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	store.SetDefaultOptions(cfg.Export.Options)
	return store, nil
}
