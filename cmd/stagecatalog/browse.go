package main

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rescp17/stageCatalog/api"
	"github.com/rescp17/stageCatalog/internal/config"
	"github.com/rescp17/stageCatalog/pkg/browser"
	"github.com/rescp17/stageCatalog/pkg/discovery"
	"github.com/rescp17/stageCatalog/pkg/ui"
)

func newBrowseCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(cmd, map[string]string{
				"api.url":           "url",
				"api.timeout":       "timeout",
				"fetch.timeout":     "fetch-timeout",
				"discovery.enabled": "discover",
				"log.file":          "log-file",
				"log.level":         "log-level",
			}); err != nil {
				return err
			}
			logFile, err := setupLogging(c.cfg.Log, true)
			if err != nil {
				return err
			}
			defer closeLog(logFile)

			return runBrowser(cmd.Context(), c.cfg)
		},
	}
	addStoreFlags(cmd)
	cmd.Flags().Duration("fetch-timeout", 0, "timeout for one catalog query")
	cmd.Flags().Bool("discover", false, "look for a catalog store on the local network first")
	cmd.Flags().String("log-file", "", "file to write logs to")
	cmd.Flags().String("log-level", "", "log level (debug, info, warn, error)")
	return cmd
}

// addStoreFlags registers the flags naming the remote catalog store.
func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("url", "", "base URL of the catalog store")
	cmd.Flags().Duration("timeout", 0, "HTTP timeout for catalog store requests")
}

func runBrowser(ctx context.Context, cfg config.Config) error {
	baseURL, source := resolveStore(ctx, cfg)
	slog.Info("Starting browser", "store", baseURL)

	client := api.NewClient(baseURL, cfg.API.Timeout)
	browserApp := browser.NewApp(client, browser.Options{FetchTimeout: cfg.Fetch.Timeout})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return browserApp.Run(ctx)
	})
	g.Go(func() error {
		defer cancel()
		p := tea.NewProgram(ui.InitialModel(browserApp, source), tea.WithAltScreen(), tea.WithContext(ctx))
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	return g.Wait()
}

// resolveStore picks the catalog store to talk to. With discovery enabled the
// first store announced on the LAN wins; otherwise, or when none answers,
// api.url is used.
func resolveStore(ctx context.Context, cfg config.Config) (baseURL, source string) {
	if !cfg.Discovery.Enabled {
		return cfg.API.URL, cfg.API.URL
	}
	svc, err := discovery.FindFirst(ctx, &discovery.MDNSAdapter{}, cfg.Discovery.Timeout)
	if err != nil {
		slog.Warn("Discovery failed, using configured store", "error", err, "url", cfg.API.URL)
		return cfg.API.URL, cfg.API.URL
	}
	slog.Info("Discovered catalog store", "name", svc.Name, "addr", svc.Addr, "port", svc.Port)
	return svc.URL(), svc.Name
}
