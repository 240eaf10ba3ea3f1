package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rescp17/stageCatalog/api"
	"github.com/rescp17/stageCatalog/internal/app"
	catalogevents "github.com/rescp17/stageCatalog/internal/app_events/catalog"
	"github.com/rescp17/stageCatalog/internal/config"
	"github.com/rescp17/stageCatalog/internal/util"
	"github.com/rescp17/stageCatalog/pkg/catalog"
	"github.com/rescp17/stageCatalog/pkg/coordinator"
)

var (
	listHeader = []string{"ID", "TITLE", "DATE", "TIME", "COMPOSER", "TYPE", "COVER"}
	listWidths = []int{8, 24, 12, 5, 18, 6}
)

func newListCmd(c *cli) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the catalog and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(cmd, map[string]string{
				"api.url":       "url",
				"api.timeout":   "timeout",
				"fetch.timeout": "fetch-timeout",
				"log.level":     "log-level",
			}); err != nil {
				return err
			}
			if _, err := setupLogging(c.cfg.Log, false); err != nil {
				return err
			}
			filter, err := catalog.ParseFilter(kind)
			if err != nil {
				return err
			}
			events, err := fetchOnce(cmd.Context(), c.cfg, filter)
			if err != nil {
				return err
			}
			printEvents(cmd.OutOrStdout(), events)
			return nil
		},
	}
	addStoreFlags(cmd)
	cmd.Flags().StringVar(&kind, "type", "", "only list events of this type (opera or ballet)")
	cmd.Flags().Duration("fetch-timeout", 0, "timeout for the catalog query")
	cmd.Flags().String("log-level", "", "log level (debug, info, warn, error)")
	return cmd
}

// withStoreLoop runs a store loop for the duration of fn and hands fn a
// context carrying it.
func withStoreLoop(ctx context.Context, fn func(ctx context.Context, store *app.Store) error) error {
	store := app.NewStore(app.InitialState())
	ctx, err := app.WithStore(ctx, store)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return store.Run(ctx)
	})
	g.Go(func() error {
		defer cancel()
		return fn(ctx, store)
	})
	return g.Wait()
}

// fetchOnce loads the catalog through the fetch coordinator and returns the
// list once the first query for filter has resolved.
func fetchOnce(ctx context.Context, cfg config.Config, filter catalog.Filter) ([]catalog.Event, error) {
	client := api.NewClient(cfg.API.URL, cfg.API.Timeout)
	done := make(chan error, 1)

	var events []catalog.Event
	err := withStoreLoop(ctx, func(ctx context.Context, store *app.Store) error {
		coord := coordinator.New(client, coordinator.Options{
			Timeout: cfg.Fetch.Timeout,
			Hooks: coordinator.Hooks{
				Resolved: func(q coordinator.Query, outcome coordinator.Outcome, err error) {
					if outcome == coordinator.Discarded || q.Filter != filter {
						return
					}
					select {
					case done <- err:
					default:
					}
				},
			},
		})
		defer coord.Close()

		// Queued ahead of the coordinator's startup step, so its first
		// query is already scoped to filter.
		store.Dispatch(catalogevents.SetFilter{Value: filter})
		if err := coord.Start(ctx); err != nil {
			return err
		}

		select {
		case err := <-done:
			if err != nil {
				return fmt.Errorf("list %s events: %w", filter, err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
		events = store.State().Events
		return nil
	})
	return events, err
}

func printEvents(w io.Writer, events []catalog.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events.")
		return
	}
	fmt.Fprintln(w, util.FormatRow(listHeader, listWidths))
	for _, e := range events {
		fmt.Fprintln(w, util.FormatRow([]string{
			string(e.ID), e.Title, e.Date, e.Time, e.Composer, string(e.Type), e.Cover,
		}, listWidths))
	}
}

func newAddCmd(c *cli) *cobra.Command {
	var candidate catalog.Candidate
	var kind string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add one event to the catalog",
		Example: "  stagecatalog add --title Carmen --date \"July 12\" --time 19:30 " +
			"--cover carmen.jpg --composer Bizet --type opera",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(cmd, map[string]string{
				"api.url":     "url",
				"api.timeout": "timeout",
				"log.level":   "log-level",
			}); err != nil {
				return err
			}
			if _, err := setupLogging(c.cfg.Log, false); err != nil {
				return err
			}
			candidate.Type = catalog.Kind(kind)

			client := api.NewClient(c.cfg.API.URL, c.cfg.API.Timeout)
			submitter := coordinator.NewSubmitter(client, nil)

			var created catalog.Event
			err := withStoreLoop(cmd.Context(), func(ctx context.Context, _ *app.Store) error {
				var err error
				created, err = submitter.Submit(ctx, candidate)
				return err
			})
			if err != nil {
				var verr *catalog.ValidationError
				if errors.As(err, &verr) {
					for _, fe := range verr.Fields {
						fmt.Fprintf(cmd.ErrOrStderr(), "--%s: %s\n", fe.Field, fe.Message)
					}
					return errors.New("event not added")
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (id %s)\n", created.Title, created.ID)
			return nil
		},
	}
	addStoreFlags(cmd)
	cmd.Flags().StringVar(&candidate.Title, "title", "", "event title")
	cmd.Flags().StringVar(&candidate.Date, "date", "", "date, e.g. \"July 4\"")
	cmd.Flags().StringVar(&candidate.Time, "time", "", "start time, e.g. 19:00")
	cmd.Flags().StringVar(&candidate.Cover, "cover", "", "cover image file name")
	cmd.Flags().StringVar(&candidate.Composer, "composer", "", "composer")
	cmd.Flags().StringVar(&kind, "type", "", "opera or ballet")
	cmd.Flags().String("log-level", "", "log level (debug, info, warn, error)")
	return cmd
}
