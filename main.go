/* main.go
 * The entry point of the tournament importer. Parses spreadsheet workbooks from the command line, serves the HTTP API
 * or runs the discord bot. Configuration is read from .env and the environment, see api/config
 * Usage: tournament-importer [--env FILE] parse|serve|bot|profiles
 * Authors: Zachary Bower
 */

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	"tournament-importer/api/api"
	"tournament-importer/api/config"
	"tournament-importer/bot"
	"tournament-importer/web"

	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// newApp builds the command line application
func newApp() *cli.App {
	return &cli.App{
		Name:  "tournament-importer",
		Usage: "import tennis tournament draws from spreadsheet workbooks",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "env", Usage: "`FILE` with environment variables, missing files are ignored",
				Value: cli.NewStringSlice(".env")},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error", EnvVars: []string{"LOG_LEVEL"}},
			&cli.StringFlag{Name: "log-format", Usage: "text or json", EnvVars: []string{"LOG_FORMAT"}},
		},
		Commands: []*cli.Command{
			parseCommand(),
			profilesCommand(),
			serveCommand(),
			botCommand(),
		},
	}
}

// loadConfig reads the configuration and applies the command line flags over it
func loadConfig(c *cli.Context) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(c.StringSlice("env")...)
	if err != nil {
		return config.Config{}, nil, err
	}
	// flags bound to an empty environment variable count as set, so empty values are ignored
	if v := c.String("log-level"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return config.Config{}, nil, fmt.Errorf("invalid log level: %w", err)
		}
	}
	if v := c.String("log-format"); v != "" {
		cfg.LogFormat = v
	}
	if v := c.String("profiles"); v != "" {
		cfg.ProfilesFile = v
	}
	if v := c.String("filter"); v != "" {
		cfg.SheetFilter = v
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}

	logger := cfg.Logger(c.App.ErrWriter)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func profilesFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "profiles",
		Usage:   "YAML `FILE` with additional or overriding organization profiles",
		EnvVars: []string{"PROFILES_FILE"},
	}
}

func parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "parse a workbook and print its tournament record as JSON",
		ArgsUsage: "<workbook.xlsx>",
		Flags: []cli.Flag{
			profilesFlag(),
			&cli.StringFlag{Name: "filter", Usage: "only parse the sheets whose name contains `TEXT`",
				EnvVars: []string{"SHEET_FILTER"}},
			&cli.BoolFlag{Name: "compact", Usage: "print the record on a single line"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("parse expects exactly one workbook, got %d arguments", c.NArg())
			}
			cfg, logger, err := loadConfig(c)
			if err != nil {
				return err
			}
			registry, err := api.LoadRegistry(cfg.ProfilesFile)
			if err != nil {
				return err
			}

			path := c.Args().First()
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read workbook: %w", err)
			}

			// no store and no cache: the record is only printed
			a := &api.API{Registry: registry, Logger: logger}
			result, err := a.ImportWorkbook(c.Context, path, data, cfg.SheetFilter)
			for _, d := range result.Diagnostics {
				fmt.Fprintln(c.App.ErrWriter, d)
			}
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(c.App.Writer)
			if !c.Bool("compact") {
				encoder.SetIndent("", "  ")
			}
			return encoder.Encode(result.Record)
		},
	}
}

func profilesCommand() *cli.Command {
	return &cli.Command{
		Name:      "profiles",
		Usage:     "list the organizations whose workbooks can be parsed",
		ArgsUsage: "[organization]",
		Flags:     []cli.Flag{profilesFlag()},
		Action: func(c *cli.Context) error {
			cfg, logger, err := loadConfig(c)
			if err != nil {
				return err
			}
			registry, err := api.LoadRegistry(cfg.ProfilesFile)
			if err != nil {
				return err
			}
			a := &api.API{Registry: registry, Logger: logger}

			profiles := a.Profiles()
			if c.NArg() > 0 {
				matches := make(map[string]bool)
				for _, org := range a.FindProfiles(c.Args().First()) {
					matches[org] = true
				}
				filtered := profiles[:0]
				for _, p := range profiles {
					if matches[p.Organization] {
						filtered = append(filtered, p)
					}
				}
				profiles = filtered
			}
			for _, p := range profiles {
				switch {
				case !p.Supported:
					fmt.Fprintf(c.App.Writer, "%s\t(not supported)\n", p.Organization)
				case p.ProviderID == "":
					fmt.Fprintf(c.App.Writer, "%s\t-\n", p.Organization)
				default:
					fmt.Fprintf(c.App.Writer, "%s\t%s\n", p.Organization, p.ProviderID)
				}
			}
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the HTTP API",
		Flags: []cli.Flag{
			profilesFlag(),
			&cli.StringFlag{Name: "addr", Usage: "listen `ADDRESS`", EnvVars: []string{"HTTP_ADDR"}},
		},
		Action: func(c *cli.Context) error {
			cfg, logger, err := loadConfig(c)
			if err != nil {
				return err
			}
			if v := c.String("addr"); v != "" {
				cfg.HTTPAddr = v
			}

			a, err := api.NewAPI(c.Context, cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize API: %w", err)
			}
			defer closeAPI(a, logger)

			if cfg.DiscordNotify {
				notifier, err := bot.NewChannelNotifier(cfg.DiscordToken, cfg.DiscordChannelID, cfg.NotifyInterval,
					cfg.NotifyBurst, a.Metrics, logger)
				if err != nil {
					return fmt.Errorf("failed to initialize discord notifier: %w", err)
				}
				a.Notifier = notifier
			}

			return web.Start(c.Context, web.Config{Addr: cfg.HTTPAddr, API: a, Logger: logger})
		},
	}
}

func botCommand() *cli.Command {
	return &cli.Command{
		Name:  "bot",
		Usage: "run the discord bot",
		Flags: []cli.Flag{profilesFlag()},
		Action: func(c *cli.Context) error {
			cfg, logger, err := loadConfig(c)
			if err != nil {
				return err
			}

			a, err := api.NewAPI(c.Context, cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize API: %w", err)
			}
			defer closeAPI(a, logger)

			b, err := bot.NewBot(cfg.DiscordToken, a)
			if err != nil {
				return err
			}
			b.Logger = logger
			if cfg.DiscordNotify {
				b.ChannelID = cfg.DiscordChannelID
			}
			return b.Run(c.Context, cfg.NotifyInterval, cfg.NotifyBurst)
		},
	}
}

func closeAPI(a *api.API, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Close(ctx); err != nil {
		logger.Warn("failed to close API", "error", err)
	}
}
