package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rescp17/stageCatalog/internal/config"
)

// cli carries what every command shares: the viper instance flags are
// bound to and the configuration loaded from it.
type cli struct {
	v          *viper.Viper
	configPath string
	cfg        config.Config
}

// load binds the running command's flags onto their config keys and loads
// the layered configuration. Binding happens per command because viper keeps
// only one flag per key.
func (c *cli) load(cmd *cobra.Command, bindings map[string]string) error {
	for key, name := range bindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			return fmt.Errorf("internal error: command %s has no --%s flag", cmd.Name(), name)
		}
		if err := c.v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	cfg, err := config.Load(c.v, c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

func newRootCmd() *cobra.Command {
	c := &cli{v: config.New()}

	cmd := &cobra.Command{
		Use:   "stagecatalog",
		Short: "Browse and publish opera and ballet performances",
		Long: "stagecatalog browses a catalog of upcoming opera and ballet performances " +
			"in the terminal and can run the small catalog store it talks to.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/stagecatalog/config.toml)")

	cmd.AddCommand(
		newBrowseCmd(c),
		newServeCmd(c),
		newListCmd(c),
		newAddCmd(c),
	)
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd()); err != nil {
		stop()
		os.Exit(1)
	}
}
