package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rescp17/stageCatalog/api"
	"github.com/rescp17/stageCatalog/internal/config"
	"github.com/rescp17/stageCatalog/pkg/discovery"
	"github.com/rescp17/stageCatalog/pkg/store"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a catalog store",
		Long: "serve runs the catalog store the browser talks to: events are kept in SQLite, " +
			"cover images are served from a directory and the store can announce itself over mDNS.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(cmd, map[string]string{
				"server.addr":     "addr",
				"server.db":       "db",
				"server.seed":     "seed",
				"server.covers":   "covers",
				"server.name":     "name",
				"server.announce": "announce",
				"log.level":       "log-level",
			}); err != nil {
				return err
			}
			if _, err := setupLogging(c.cfg.Log, false); err != nil {
				return err
			}
			return runServer(cmd.Context(), c.cfg.Server)
		},
	}
	cmd.Flags().String("addr", "", "address to listen on")
	cmd.Flags().String("db", "", "SQLite database file")
	cmd.Flags().String("seed", "", "JSON file ({\"events\": [...]}) to import on start")
	cmd.Flags().String("covers", "", "directory holding cover images")
	cmd.Flags().String("name", "", "instance name announced over mDNS")
	cmd.Flags().Bool("announce", false, "announce the store on the local network")
	cmd.Flags().String("log-level", "", "log level (debug, info, warn, error)")
	return cmd
}

func runServer(ctx context.Context, cfg config.ServerConfig) error {
	if cfg.DB != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DB), 0o755); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}
	}
	st, err := store.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Warn("failed to close catalog database", "error", err)
		}
	}()

	if cfg.Seed != "" {
		if err := seedStore(ctx, st, cfg.Seed); err != nil {
			return err
		}
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}
	port := ln.Addr().(*net.TCPAddr).Port

	srv := &http.Server{
		Handler:           api.NewAPI(st, cfg.Covers),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Catalog store listening", "addr", ln.Addr().String(), "db", cfg.DB)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("Shutting down catalog store")
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.Announce {
		g.Go(func() error {
			adapter := &discovery.MDNSAdapter{}
			return adapter.Announce(ctx, discovery.ServiceInfo{
				Name:   cfg.Name,
				Type:   discovery.DefaultServerType,
				Domain: discovery.DefaultDomain,
				Port:   port,
			})
		})
	}
	return g.Wait()
}

func seedStore(ctx context.Context, st *store.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	n, err := st.Seed(ctx, f)
	if err != nil {
		return fmt.Errorf("seed from %s: %w", path, err)
	}
	slog.Info("Seeded catalog", "file", path, "added", n)
	return nil
}
